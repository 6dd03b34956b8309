package solver

import (
	"context"
	"math/rand"
	"time"
)

// NoChangedRider is returned by DeletePickup when no rider's current trip was
// rewritten.
const NoChangedRider = -1

// DeletePickup removes the given pickup node from the plan.
//
// If the pickup sits in some rider's current trip beyond its tour location it
// is spliced out in place: the time saved by skipping it is subtracted from
// every later stop of that trip and from every stop of that rider's future
// trips, and the rider index is returned. If the pickup only exists in future
// trips, all future work is re-planned through StartDay with the pickup
// removed. If the pickup is unknown or already visited the plan is returned
// unchanged.
func DeletePickup(ctx context.Context, ins *Instance, plan CurrentPlan, pickup, curTime int, budget time.Duration, p Params, rng *rand.Rand) (tours, timings [][][]int, changedRider int) {
	numV := len(plan.Tours)

	for v := 0; v < numV; v++ {
		cur := plan.Tours[v][0]
		for idx := plan.TourLocation[v] + 1; idx < len(cur)-1; idx++ {
			if cur[idx] != pickup {
				continue
			}

			prev, next := cur[idx-1], cur[idx+1]
			saved := ins.TimeMatrix[prev][pickup] +
				ins.TimeMatrix[pickup][next] +
				ins.ServiceTime[pickup] -
				ins.TimeMatrix[prev][next]

			tours = cloneTrips(plan.Tours)
			timings = cloneTrips(plan.Timings)

			tours[v][0] = removeAt(tours[v][0], idx)
			timings[v][0] = removeAt(timings[v][0], idx)
			for j := idx; j < len(timings[v][0]); j++ {
				timings[v][0][j] -= saved
			}
			for t := 1; t < len(timings[v]); t++ {
				for j := range timings[v][t] {
					timings[v][t][j] -= saved
				}
			}

			return tours, timings, v
		}
	}

	// Not removable in place. Re-plan the future trips without the pickup,
	// unless it is unknown or already behind some rider.
	inFuture := false
	for v := 0; v < numV && !inFuture; v++ {
		for t := 1; t < len(plan.Tours[v]) && !inFuture; t++ {
			for _, n := range plan.Tours[v][t] {
				if n == pickup {
					inFuture = true
					break
				}
			}
		}
	}
	if !inFuture {
		return plan.Tours, plan.Timings, NoChangedRider
	}

	var points []int
	start := make([]int, numV)
	for v := 0; v < numV; v++ {
		for t := 1; t < len(plan.Tours[v]); t++ {
			for _, n := range plan.Tours[v][t] {
				if n != ins.Depot && n != pickup {
					points = append(points, n)
				}
			}
		}
		if cur := plan.Timings[v][0]; len(cur) > 0 {
			start[v] = cur[len(cur)-1] + p.WaitAtWarehouse
		} else {
			start[v] = curTime
		}
	}

	all := append([]int{ins.Depot}, points...)
	upIns := ins.Extract(all, allVehicles(numV), start)
	pen := make([]int, len(all))
	for i := range pen {
		pen[i] = p.MissPenalty
	}
	upTours, upTims := StartDay(ctx, upIns, pen, budget, p, rng)

	tours = make([][][]int, numV)
	timings = make([][][]int, numV)
	for v := 0; v < numV; v++ {
		if len(plan.Tours[v][0]) > 0 {
			tours[v] = append(tours[v], append([]int(nil), plan.Tours[v][0]...))
			timings[v] = append(timings[v], append([]int(nil), plan.Timings[v][0]...))
		}
		for t := range upTours[v] {
			trip := make([]int, len(upTours[v][t]))
			for i, n := range upTours[v][t] {
				trip[i] = all[n]
			}
			tours[v] = append(tours[v], trip)
			timings[v] = append(timings[v], append([]int(nil), upTims[v][t]...))
		}
	}

	return tours, timings, NoChangedRider
}

func cloneTrips(src [][][]int) [][][]int {
	out := make([][][]int, len(src))
	for v := range src {
		out[v] = make([][]int, len(src[v]))
		for t := range src[v] {
			out[v][t] = append([]int(nil), src[v][t]...)
		}
	}
	return out
}
