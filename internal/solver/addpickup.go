package solver

import (
	"context"
	"math/rand"
	"time"
)

// CurrentPlan is a plan in progress, expressed in instance node indices with
// absolute clock timings. Tours[v][0] is rider v's in-progress trip;
// TourLocation[v] is the index of the next not-yet-visited stop within it, or
// -1 when the rider is idle.
type CurrentPlan struct {
	Tours        [][][]int
	Timings      [][][]int
	TourLocation []int
}

// Budgets bound the two solve stages of a re-plan: the per-rider current-trip
// splice and the upcoming-tours re-solve.
type Budgets struct {
	Splice   time.Duration
	Upcoming time.Duration
}

// AddPickups inserts the new pickup nodes into a plan in progress. Riders are
// visited in a random permutation; each gets a bounded sub-problem over its
// remaining current-trip stops plus the still-unassigned pickups, seeded with
// its existing continuation. Whatever the splices could not place - leftover
// pickups and any delivery the sub-solves dropped - is re-planned as upcoming
// trips through StartDay. Returned tours and timings cover all riders:
// current trip first, then the re-planned future trips.
func AddPickups(ctx context.Context, ins *Instance, plan CurrentPlan, pickups []int, curTime int, budgets Budgets, p Params, rng *rand.Rand) (tours, timings [][][]int) {
	numV := len(plan.Tours)

	if len(pickups) == 0 {
		return plan.Tours, plan.Timings
	}

	// The day-0 delivery penalty is the ceiling of what one pickup is worth:
	// each insertion is priced just below an even share of it, so inserting
	// every pickup still costs less than missing one delivery.
	dayPenalty := ins.Penalty[pickups[0]]
	insertPenalty := (dayPenalty - 1) / len(pickups)

	pen := append([]int(nil), ins.Penalty...)

	// Orders already planned into future trips keep normal delivery weight;
	// so do the remaining current-trip orders.
	further := []int{}
	for v := 0; v < numV; v++ {
		for t := 1; t < len(plan.Tours[v]); t++ {
			for _, n := range plan.Tours[v][t] {
				if n != ins.Depot {
					further = append(further, n)
				}
			}
		}
		for _, n := range plan.Tours[v][0] {
			if n != ins.Depot {
				pen[n] = dayPenalty
			}
		}
	}
	for _, n := range pickups {
		pen[n] = insertPenalty
	}

	begin := make([]int, numV)
	for v := 0; v < numV; v++ {
		if plan.TourLocation[v] == -1 {
			begin[v] = curTime
		} else {
			tim := plan.Timings[v][0]
			begin[v] = tim[len(tim)-1] + p.WaitAtWarehouse
		}
	}

	currentTour := make([][]int, numV)
	currentTim := make([][]int, numV)
	for v := 0; v < numV; v++ {
		currentTour[v] = append([]int(nil), plan.Tours[v][0]...)
		currentTim[v] = append([]int(nil), plan.Timings[v][0]...)
	}

	remaining := append([]int(nil), pickups...)

	for cnt, v := range rng.Perm(numV) {
		if len(remaining) == 0 {
			break
		}

		startIdx := plan.TourLocation[v]
		startLoad := ins.VehicleCapacity[v]
		tripStart := curTime
		startClock := curTime

		var tourIdx []int
		var seed []int

		if startIdx == -1 {
			startIdx = 0
		} else {
			for i := startIdx; i < len(plan.Tours[v][0]); i++ {
				n := plan.Tours[v][0][i]
				if n == ins.Depot {
					continue
				}
				tourIdx = append(tourIdx, n)
				if i != startIdx {
					seed = append(seed, len(tourIdx)-1)
				}
				if vol := ins.PackageVolume[n]; vol > 0 {
					startLoad -= vol
				}
			}
			tripStart = plan.Timings[v][0][0]
			startClock = plan.Timings[v][0][startIdx]
		}

		tourIdx = append(tourIdx, ins.Depot)
		endIdx := len(tourIdx) - 1
		tourIdx = append(tourIdx, remaining...)

		sub := ins.Extract(tourIdx, []int{v}, []int{tripStart})
		for i, orig := range tourIdx {
			sub.Penalty[i] = pen[orig]
		}

		start := 0
		if startIdx == 0 {
			start = endIdx
		}

		// Bound how many new pickups this rider may absorb in one pass.
		share := ceilDiv(numV-cnt, len(remaining))
		sub.RouteLength = len(seed) + 1 + share + 2

		res := Solve(ctx, TripRequest{
			Ins:        sub,
			Starts:     []int{start},
			Ends:       []int{endIdx},
			StartLoad:  []int{startLoad},
			StartClock: []int{startClock},
			TripStart:  []int{tripStart},
			Initial:    [][]int{seed},
			Budget:     budgets.Splice,
		}, p, rng)

		begin[v] = res.ReturnTime[0] + p.WaitAtWarehouse

		// New current trip: the already-visited prefix plus the solved
		// continuation, both with their original timings where preserved.
		newTour := append([]int(nil), plan.Tours[v][0][:startIdx]...)
		newTim := append([]int(nil), plan.Timings[v][0][:startIdx]...)
		if res.Feasible {
			for i, n := range res.Routes[0] {
				newTour = append(newTour, tourIdx[n])
				newTim = append(newTim, res.Times[0][i])
			}
		}
		currentTour[v] = newTour
		currentTim[v] = newTim

		remaining = remaining[:0]
		for _, n := range res.Dropped {
			orig := tourIdx[n]
			if orig == ins.Depot {
				continue
			}
			if ins.PackageVolume[orig] > 0 {
				further = append(further, orig)
			} else {
				remaining = append(remaining, orig)
			}
		}
	}

	// Pickups no rider could take ride along with the future work at full
	// delivery weight.
	further = append(further, remaining...)

	points := append([]int{ins.Depot}, further...)
	upIns := ins.Extract(points, allVehicles(numV), begin)
	flat := make([]int, len(points))
	for i := range flat {
		flat[i] = p.MissPenalty
	}
	upTours, upTims := StartDay(ctx, upIns, flat, budgets.Upcoming, p, rng)

	tours = make([][][]int, numV)
	timings = make([][][]int, numV)
	for v := 0; v < numV; v++ {
		if keepCurrentTrip(currentTour[v], plan.TourLocation[v], ins.Depot) {
			tours[v] = append(tours[v], currentTour[v])
			timings[v] = append(timings[v], currentTim[v])
		}
		for t := range upTours[v] {
			trip := make([]int, len(upTours[v][t]))
			for i, n := range upTours[v][t] {
				trip[i] = points[n]
			}
			tours[v] = append(tours[v], trip)
			timings[v] = append(timings[v], append([]int(nil), upTims[v][t]...))
		}
	}

	return tours, timings
}

// keepCurrentTrip rejects empty current trips and the degenerate
// depot-to-depot loop an idle rider is left with when it received no pickup.
func keepCurrentTrip(trip []int, tourLocation, depot int) bool {
	if len(trip) == 0 {
		return false
	}
	if tourLocation != -1 {
		return true
	}
	for _, n := range trip {
		if n != depot {
			return true
		}
	}
	return false
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
