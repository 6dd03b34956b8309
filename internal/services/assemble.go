package services

import (
	"fmt"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/domain"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/solver"
)

// parsePlan converts the submitted rider states into the solver's view:
// node indices instead of ids and absolute clocks instead of per-stop
// offsets. Riders with no trips get one empty current trip and tour location
// -1 (idle). Timings are reconstructed by prefix-summing each rider's
// flattened stops, so the first stop of the first trip must carry the
// absolute trip start.
func parsePlan(riders []RiderState, idx map[string]int) (solver.CurrentPlan, error) {
	plan := solver.CurrentPlan{
		Tours:        make([][][]int, len(riders)),
		Timings:      make([][][]int, len(riders)),
		TourLocation: make([]int, len(riders)),
	}

	for v, r := range riders {
		if len(r.Tours) == 0 {
			plan.Tours[v] = [][]int{{}}
			plan.Timings[v] = [][]int{{}}
			plan.TourLocation[v] = -1
			if r.HeadingTo != "" {
				return solver.CurrentPlan{}, fmt.Errorf(
					"%w: rider %q is heading to %q but has no tours",
					ErrInvalidInput, r.Rider.ID, r.HeadingTo,
				)
			}
			continue
		}

		clock := 0
		for _, tour := range r.Tours {
			nodes := make([]int, len(tour))
			times := make([]int, len(tour))
			for i, stop := range tour {
				node, ok := idx[stop.OrderID]
				if !ok {
					return solver.CurrentPlan{}, fmt.Errorf(
						"%w: tour stop %q of rider %q is not a known order",
						ErrInvalidInput, stop.OrderID, r.Rider.ID,
					)
				}
				clock += stop.Timing
				nodes[i] = node
				times[i] = clock
			}
			plan.Tours[v] = append(plan.Tours[v], nodes)
			plan.Timings[v] = append(plan.Timings[v], times)
		}

		plan.TourLocation[v] = -1
		if r.HeadingTo != "" {
			node, ok := idx[r.HeadingTo]
			if !ok {
				return solver.CurrentPlan{}, fmt.Errorf(
					"%w: rider %q is heading to unknown order %q",
					ErrInvalidInput, r.Rider.ID, r.HeadingTo,
				)
			}
			found := false
			for i, n := range plan.Tours[v][0] {
				if n == node {
					plan.TourLocation[v] = i
					found = true
					break
				}
			}
			if !found {
				return solver.CurrentPlan{}, fmt.Errorf(
					"%w: rider %q is heading to %q which is not on its current tour",
					ErrInvalidInput, r.Rider.ID, r.HeadingTo,
				)
			}
		}

		if plan.TourLocation[v] == -1 && len(plan.Tours[v][0]) > 0 {
			// Trips submitted but nothing left to visit: the current trip is
			// fully behind the rider.
			plan.TourLocation[v] = len(plan.Tours[v][0]) - 1
		}
	}

	return plan, nil
}

// assemblePlan projects solver output back onto the wire: node indices become
// order (or depot) ids and absolute clocks become offsets from the previous
// stop, the first stop of each rider's first trip carrying the absolute trip
// start.
func assemblePlan(riderIDs []string, tours, timings [][][]int, nodeID func(int) string) domain.Plan {
	plan := domain.Plan{Riders: make([]domain.RiderPlan, len(riderIDs))}

	for v, id := range riderIDs {
		rp := domain.RiderPlan{RiderID: id, Tours: [][]domain.TourStop{}}
		clock := 0
		for t := range tours[v] {
			tour := make([]domain.TourStop, len(tours[v][t]))
			for i, n := range tours[v][t] {
				abs := timings[v][t][i]
				tour[i] = domain.TourStop{OrderID: nodeID(n), Timing: abs - clock}
				clock = abs
			}
			rp.Tours = append(rp.Tours, tour)
		}
		plan.Riders[v] = rp
	}

	return plan
}

// sameStopIDs reports whether two trips visit the same stop-id sequence.
func sameStopIDs(a, b []domain.TourStop) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].OrderID != b[i].OrderID {
			return false
		}
	}
	return true
}

// markUpdatedCurrentTours flags every rider whose first trip's stop-id
// sequence differs from the one it submitted.
func markUpdatedCurrentTours(plan *domain.Plan, riders []RiderState) {
	for v := range plan.Riders {
		var submitted, produced []domain.TourStop
		if len(riders[v].Tours) > 0 {
			submitted = riders[v].Tours[0]
		}
		if len(plan.Riders[v].Tours) > 0 {
			produced = plan.Riders[v].Tours[0]
		}
		plan.Riders[v].UpdatedCurrentTour = !sameStopIDs(submitted, produced)
	}
}
