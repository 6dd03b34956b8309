package services

import (
	"errors"
	"testing"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/domain"
)

func twoTripState() ([]RiderState, map[string]int) {
	depot := domain.Depot{ID: "w"}
	orders := []domain.Order{{ID: "a"}, {ID: "b"}}
	idx, _ := orderIndex(depot, orders)

	riders := []RiderState{{
		Rider: domain.Rider{ID: "r1", Capacity: 10},
		Tours: [][]domain.TourStop{
			{{OrderID: "w", Timing: 32400}, {OrderID: "a", Timing: 600}, {OrderID: "w", Timing: 600}},
			{{OrderID: "w", Timing: 300}, {OrderID: "b", Timing: 600}, {OrderID: "w", Timing: 600}},
		},
		HeadingTo: "a",
	}}
	return riders, idx
}

func TestParsePlanReconstructsAbsoluteClocks(t *testing.T) {
	riders, idx := twoTripState()

	plan, err := parsePlan(riders, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantTours := [][]int{{0, 1, 0}, {0, 2, 0}}
	wantTimes := [][]int{{32400, 33000, 33600}, {33900, 34500, 35100}}
	for ti := range wantTours {
		for i := range wantTours[ti] {
			if plan.Tours[0][ti][i] != wantTours[ti][i] {
				t.Fatalf("tours %v, want %v", plan.Tours[0], wantTours)
			}
			if plan.Timings[0][ti][i] != wantTimes[ti][i] {
				t.Fatalf("timings %v, want %v", plan.Timings[0], wantTimes)
			}
		}
	}
	if plan.TourLocation[0] != 1 {
		t.Fatalf("tour location %d, want 1", plan.TourLocation[0])
	}
}

func TestParsePlanIdleRider(t *testing.T) {
	idx := map[string]int{"w": 0}

	plan, err := parsePlan([]RiderState{{Rider: domain.Rider{ID: "r1"}}}, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.TourLocation[0] != -1 {
		t.Fatalf("tour location %d, want -1", plan.TourLocation[0])
	}
	if len(plan.Tours[0]) != 1 || len(plan.Tours[0][0]) != 0 {
		t.Fatalf("tours %v, want one empty trip", plan.Tours[0])
	}

	_, err = parsePlan([]RiderState{{Rider: domain.Rider{ID: "r1"}, HeadingTo: "a"}}, idx)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err=%v, want rejection of headingTo without tours", err)
	}
}

func TestParsePlanRejectsUnknownStops(t *testing.T) {
	idx := map[string]int{"w": 0}

	_, err := parsePlan([]RiderState{{
		Rider: domain.Rider{ID: "r1"},
		Tours: [][]domain.TourStop{{{OrderID: "ghost", Timing: 32400}}},
	}}, idx)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err=%v, want ErrInvalidInput for an unknown stop", err)
	}
}

func TestAssemblePlanRoundTrip(t *testing.T) {
	riders, idx := twoTripState()

	plan, err := parsePlan(riders, idx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nodeID := func(n int) string {
		for id, i := range idx {
			if i == n {
				return id
			}
		}
		return ""
	}
	out := assemblePlan([]string{"r1"}, plan.Tours, plan.Timings, nodeID)

	if len(out.Riders) != 1 || len(out.Riders[0].Tours) != 2 {
		t.Fatalf("assembled plan %+v", out)
	}
	for ti, tour := range riders[0].Tours {
		for i, stop := range tour {
			got := out.Riders[0].Tours[ti][i]
			if got != stop {
				t.Fatalf("stop %d/%d = %+v, want %+v", ti, i, got, stop)
			}
		}
	}
}

func TestMarkUpdatedCurrentTours(t *testing.T) {
	riders, _ := twoTripState()

	same := domain.Plan{Riders: []domain.RiderPlan{{
		RiderID: "r1",
		Tours: [][]domain.TourStop{
			{{OrderID: "w", Timing: 32400}, {OrderID: "a", Timing: 600}, {OrderID: "w", Timing: 600}},
		},
	}}}
	markUpdatedCurrentTours(&same, riders)
	if same.Riders[0].UpdatedCurrentTour {
		t.Fatal("unchanged current trip flagged as updated")
	}

	changed := domain.Plan{Riders: []domain.RiderPlan{{
		RiderID: "r1",
		Tours: [][]domain.TourStop{
			{{OrderID: "w", Timing: 32400}, {OrderID: "b", Timing: 600}, {OrderID: "w", Timing: 600}},
		},
	}}}
	markUpdatedCurrentTours(&changed, riders)
	if !changed.Riders[0].UpdatedCurrentTour {
		t.Fatal("rewritten current trip not flagged")
	}
}
