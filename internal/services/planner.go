package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/config"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/domain"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/platform/obs"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/ports"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/solver"
)

// Planner orchestrates one routing request: travel-time fetch, problem
// build, solve, assembly. It is stateless across requests; every call owns
// its instance and random source.
//
// Seed pins the rider permutation used by add-pickups. Leave it zero in
// production; tests set it for reproducible plans.
type Planner struct {
	Provider ports.TravelTimeProvider
	Cfg      config.Config
	Seed     int64
}

func (p *Planner) rng() *rand.Rand {
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// StartDay computes the initial multi-trip plan over all orders.
func (p *Planner) StartDay(ctx context.Context, in StartDayInput) (_ domain.Plan, err error) {
	defer obs.Time(ctx, "planner.StartDay")(&err)

	if _, err := orderIndex(in.Depot, in.Orders); err != nil {
		return domain.Plan{}, err
	}

	matrix, err := p.fetchMatrix(ctx, in.Depot, in.Orders)
	if err != nil {
		return domain.Plan{}, err
	}

	ins := buildInstance(matrix, in.Orders, in.Riders, p.Cfg)
	ins.LocalSearchMetaheuristic = solver.MetaheuristicGLS

	budget := in.Runtime
	if budget <= 0 {
		budget = p.Cfg.DefaultTimeLimit
	}

	tours, timings := solver.StartDay(ctx, ins, ins.Penalty, budget, solverParams(p.Cfg), p.rng())

	return assemblePlan(riderIDs(in.Riders), tours, timings, p.nodeID(in.Depot, in.Orders)), nil
}

// AddPickups works new pickups into a plan in progress: a bounded splice of
// each rider's current trip, then a full re-solve of the future trips.
func (p *Planner) AddPickups(ctx context.Context, in AddPickupsInput) (_ domain.Plan, err error) {
	defer obs.Time(ctx, "planner.AddPickups")(&err)

	orders := append(append([]domain.Order(nil), in.Orders...), in.NewOrders...)
	idx, err := orderIndex(in.Depot, orders)
	if err != nil {
		return domain.Plan{}, err
	}

	plan, err := parsePlan(in.Riders, idx)
	if err != nil {
		return domain.Plan{}, err
	}

	matrix, err := p.fetchMatrix(ctx, in.Depot, orders)
	if err != nil {
		return domain.Plan{}, err
	}

	ins := buildInstance(matrix, orders, stateRiders(in.Riders), p.Cfg)

	pickups := make([]int, len(in.NewOrders))
	for i := range in.NewOrders {
		pickups[i] = len(in.Orders) + 1 + i
	}

	budgets := solver.Budgets{
		Splice:   p.Cfg.TripSpliceTimeLimit,
		Upcoming: p.Cfg.UpcomingTimeLimit,
	}

	tours, timings := solver.AddPickups(ctx, ins, plan, pickups, in.CurrentTime, budgets, solverParams(p.Cfg), p.rng())

	out := assemblePlan(riderIDs(stateRiders(in.Riders)), tours, timings, p.nodeID(in.Depot, orders))
	markUpdatedCurrentTours(&out, in.Riders)
	return out, nil
}

// DeletePickup removes a not-yet-reached pickup from the plan. An unknown or
// already-visited order leaves the plan untouched.
func (p *Planner) DeletePickup(ctx context.Context, in DeletePickupInput) (_ domain.Plan, err error) {
	defer obs.Time(ctx, "planner.DeletePickup")(&err)

	idx, err := orderIndex(in.Depot, in.Orders)
	if err != nil {
		return domain.Plan{}, err
	}

	plan, err := parsePlan(in.Riders, idx)
	if err != nil {
		return domain.Plan{}, err
	}

	node, known := idx[in.DelOrderID]
	if !known || node == 0 {
		// Unknown order: echo the plan unchanged.
		out := assemblePlan(riderIDs(stateRiders(in.Riders)), plan.Tours, plan.Timings, p.nodeID(in.Depot, in.Orders))
		markUpdatedCurrentTours(&out, in.Riders)
		return out, nil
	}

	matrix, err := p.fetchMatrix(ctx, in.Depot, in.Orders)
	if err != nil {
		return domain.Plan{}, err
	}

	ins := buildInstance(matrix, in.Orders, stateRiders(in.Riders), p.Cfg)

	tours, timings, _ := solver.DeletePickup(
		ctx, ins, plan, node, in.CurrentTime,
		p.Cfg.UpcomingTimeLimit, solverParams(p.Cfg), p.rng(),
	)

	out := assemblePlan(riderIDs(stateRiders(in.Riders)), tours, timings, p.nodeID(in.Depot, in.Orders))
	markUpdatedCurrentTours(&out, in.Riders)
	return out, nil
}

// fetchMatrix resolves the travel-time matrix for depot plus orders, in
// problem-index order.
func (p *Planner) fetchMatrix(ctx context.Context, depot domain.Depot, orders []domain.Order) ([][]int, error) {
	points := make([]domain.Point, 0, len(orders)+1)
	points = append(points, depot.Point)
	for _, o := range orders {
		points = append(points, o.Point)
	}

	matrix, err := p.Provider.TravelTimes(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("fetch travel times: %w", err)
	}
	return matrix, nil
}

// nodeID maps problem indices back to client ids.
func (p *Planner) nodeID(depot domain.Depot, orders []domain.Order) func(int) string {
	return func(n int) string {
		if n == 0 {
			return depot.ID
		}
		return orders[n-1].ID
	}
}

func riderIDs(riders []domain.Rider) []string {
	out := make([]string, len(riders))
	for i, r := range riders {
		out[i] = r.ID
	}
	return out
}

func stateRiders(states []RiderState) []domain.Rider {
	out := make([]domain.Rider, len(states))
	for i, s := range states {
		out[i] = s.Rider
	}
	return out
}
