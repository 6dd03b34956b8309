package solver

import (
	"context"
	"testing"
	"time"
)

func TestDeletePickupSplicesCurrentTrip(t *testing.T) {
	matrix := uniformMatrix(5, 600)
	matrix[1][2], matrix[2][1] = 300, 300
	matrix[2][3], matrix[3][2] = 300, 300
	matrix[1][3], matrix[3][1] = 400, 400

	ins := testInstance(matrix, []int{10, -6, 10, 10}, []int{40}, 9*3600)
	ins.ServiceTime[2] = 120

	// Current trip visits 1, the pickup 2, then 3; a later trip serves 4.
	plan := CurrentPlan{
		Tours: [][][]int{{{0, 1, 2, 3, 0}, {0, 4, 0}}},
		Timings: [][][]int{{
			{32400, 33000, 33300, 33720, 34320},
			{34320, 34920, 35520},
		}},
		TourLocation: []int{1},
	}

	tours, timings, changed := DeletePickup(context.Background(), ins, plan, 2, 33100, time.Second, testParams(), testRNG())

	if changed != 0 {
		t.Fatalf("changed rider %d, want 0", changed)
	}

	// saved = 300 + 300 + 120 - 400
	const saved = 320

	wantTrip := []int{0, 1, 3, 0}
	wantTimes := []int{32400, 33000, 33720 - saved, 34320 - saved}
	for i := range wantTrip {
		if tours[0][0][i] != wantTrip[i] {
			t.Fatalf("trip %v, want %v", tours[0][0], wantTrip)
		}
		if timings[0][0][i] != wantTimes[i] {
			t.Fatalf("timings %v, want %v", timings[0][0], wantTimes)
		}
	}

	// Future trips shift forward by the same saving.
	for i, orig := range plan.Timings[0][1] {
		if timings[0][1][i] != orig-saved {
			t.Fatalf("future timings %v, want all shifted by %d", timings[0][1], saved)
		}
	}

	// The input plan must stay untouched.
	if plan.Tours[0][0][2] != 2 || plan.Timings[0][1][0] != 34320 {
		t.Fatal("input plan mutated in place")
	}
}

func TestDeletePickupVisitedOrUnknownLeavesPlanAlone(t *testing.T) {
	ins := testInstance(uniformMatrix(4, 600), []int{10, -6, 10}, []int{40}, 9*3600)

	plan := CurrentPlan{
		Tours:        [][][]int{{{0, 1, 2, 0}}},
		Timings:      [][][]int{{{32400, 33000, 33600, 34200}}},
		TourLocation: []int{3}, // pickup 2 is already behind the rider
	}

	tours, timings, changed := DeletePickup(context.Background(), ins, plan, 2, 33700, time.Second, testParams(), testRNG())

	if changed != NoChangedRider {
		t.Fatalf("changed rider %d, want none", changed)
	}
	for i, n := range plan.Tours[0][0] {
		if tours[0][0][i] != n || timings[0][0][i] != plan.Timings[0][0][i] {
			t.Fatalf("plan changed: %v %v", tours, timings)
		}
	}
}

func TestDeletePickupFromFutureTripReplans(t *testing.T) {
	ins := testInstance(uniformMatrix(4, 600), []int{10, -6, 10}, []int{40}, 9*3600)

	plan := CurrentPlan{
		Tours: [][][]int{{{0, 1, 0}, {0, 2, 3, 0}}},
		Timings: [][][]int{{
			{32400, 33000, 33600},
			{33600, 34200, 34800, 35400},
		}},
		TourLocation: []int{1},
	}

	tours, timings, changed := DeletePickup(context.Background(), ins, plan, 2, 32700, time.Second, testParams(), testRNG())

	if changed != NoChangedRider {
		t.Fatalf("changed rider %d, want none for a future-trip delete", changed)
	}
	if planned := plannedNodes(ins, tours); planned[2] || !planned[3] {
		t.Fatalf("planned nodes after delete: %v", tours)
	}
	// The current trip survives as trips[0].
	for i, n := range plan.Tours[0][0] {
		if tours[0][0][i] != n {
			t.Fatalf("current trip rewritten: %v", tours[0][0])
		}
	}
	if len(tours[0]) < 2 {
		t.Fatalf("future delivery 3 lost: %v", tours)
	}
	if start := timings[0][1][0]; start < 33600 {
		t.Fatalf("re-planned trip starts at %d before the current trip returns", start)
	}
}
