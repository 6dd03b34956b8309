package services

import (
	"fmt"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/config"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/domain"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/solver"
)

const secondsPerDay = 24 * 3600

// buildInstance normalises client input into a numeric problem instance:
// node 0 is the depot, nodes 1..N are the orders in input order. Deliveries
// contribute +volume and pickups -volume; the depot has zero service time and
// the full miss penalty. Orders due on later days have their miss penalty
// aged down by the configured reducer per whole day.
func buildInstance(matrix [][]int, orders []domain.Order, riders []domain.Rider, cfg config.Config) *solver.Instance {
	n := len(orders) + 1

	ins := &solver.Instance{
		TimeMatrix:      matrix,
		PackageVolume:   make([]int, n),
		DeliveryTime:    make([]int, n),
		ServiceTime:     make([]int, n),
		Penalty:         make([]int, n),
		VehicleCapacity: make([]int, len(riders)),
		StartTime:       make([]int, len(riders)),
		Depot:           0,
	}

	ins.Penalty[0] = cfg.MissPenalty
	ins.DeliveryTime[0] = cfg.GlobalEndTime

	for i, o := range orders {
		ins.PackageVolume[i+1] = o.SignedVolume()
		ins.DeliveryTime[i+1] = o.ExpectedTime
		ins.ServiceTime[i+1] = o.ServiceTime
		ins.Penalty[i+1] = agedPenalty(o.ExpectedTime, cfg)
	}

	for i, r := range riders {
		ins.VehicleCapacity[i] = r.Capacity
		if r.StartTime > 0 {
			ins.StartTime[i] = r.StartTime
		} else {
			ins.StartTime[i] = cfg.GlobalStartTime
		}
	}

	return ins
}

// agedPenalty discounts the miss penalty by reducer^days for orders due whole
// days in the future, so far-out orders yield before today's work does.
func agedPenalty(expectedTime int, cfg config.Config) int {
	pen := cfg.MissPenalty
	for d := expectedTime / secondsPerDay; d > 0 && pen > 0; d-- {
		pen /= cfg.MissPenaltyReducer
	}
	return pen
}

// solverParams projects the configured constants into the solver's view.
func solverParams(cfg config.Config) solver.Params {
	return solver.Params{
		GlobalEndTime:     cfg.GlobalEndTime,
		MaxTripTime:       cfg.MaxTripTime,
		WaitAtWarehouse:   cfg.WaitTimeAtWarehouse,
		LatePenaltyPerSec: cfg.LateDeliveryPenaltyPerSec,
		MissPenalty:       cfg.MissPenalty,
	}
}

// orderIndex maps ids to node indices (depot = 0) and rejects duplicates.
func orderIndex(depot domain.Depot, orders []domain.Order) (map[string]int, error) {
	idx := make(map[string]int, len(orders)+1)
	idx[depot.ID] = 0
	for i, o := range orders {
		if _, dup := idx[o.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate order id %q", ErrInvalidInput, o.ID)
		}
		idx[o.ID] = i + 1
	}
	return idx, nil
}
