package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/adapters/distance"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/domain"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/ports"
)

func testPlanner(matrix [][]int) *Planner {
	return &Planner{
		Provider: &distance.MockTravelTimeProvider{Matrix: matrix},
		Cfg:      testConfig(),
		Seed:     1,
	}
}

func singleDeliveryInput() StartDayInput {
	return StartDayInput{
		Depot: domain.Depot{ID: "depot"},
		Orders: []domain.Order{
			{ID: "o1", Kind: domain.Delivery, ExpectedTime: 36000, Volume: 5},
		},
		Riders:  []domain.Rider{{ID: "r1", Capacity: 10, StartTime: 32400}},
		Runtime: 100 * time.Millisecond,
	}
}

func TestPlannerStartDaySingleDelivery(t *testing.T) {
	p := testPlanner([][]int{{0, 600}, {600, 0}})

	plan, err := p.StartDay(context.Background(), singleDeliveryInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Riders) != 1 || len(plan.Riders[0].Tours) != 1 {
		t.Fatalf("plan %+v, want one rider with one trip", plan)
	}
	want := []domain.TourStop{
		{OrderID: "depot", Timing: 32400},
		{OrderID: "o1", Timing: 600},
		{OrderID: "depot", Timing: 600},
	}
	got := plan.Riders[0].Tours[0]
	if len(got) != len(want) {
		t.Fatalf("trip %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trip %+v, want %+v", got, want)
		}
	}
}

func TestPlannerAddPickupsRoundTripsUnchangedPlan(t *testing.T) {
	p := testPlanner([][]int{{0, 600}, {600, 0}})

	in := AddPickupsInput{
		Depot:  domain.Depot{ID: "depot"},
		Orders: []domain.Order{{ID: "o1", Kind: domain.Delivery, ExpectedTime: 36000, Volume: 5}},
		Riders: []RiderState{{
			Rider: domain.Rider{ID: "r1", Capacity: 10, StartTime: 32400},
			Tours: [][]domain.TourStop{{
				{OrderID: "depot", Timing: 32400},
				{OrderID: "o1", Timing: 600},
				{OrderID: "depot", Timing: 600},
			}},
			HeadingTo: "o1",
		}},
		CurrentTime: 32700,
	}

	plan, err := p.AddPickups(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Riders[0].UpdatedCurrentTour {
		t.Fatal("empty pickup set flagged the current trip as updated")
	}
	got := plan.Riders[0].Tours
	if len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("tours %+v, want the submitted plan echoed", got)
	}
	for i, stop := range in.Riders[0].Tours[0] {
		if got[0][i] != stop {
			t.Fatalf("tours %+v, want the submitted plan echoed", got)
		}
	}
}

func TestPlannerAddPickupsInsertsIntoCurrentTrip(t *testing.T) {
	p := testPlanner(uniform3x3(600))

	in := AddPickupsInput{
		Depot:     domain.Depot{ID: "depot"},
		Orders:    []domain.Order{{ID: "d1", Kind: domain.Delivery, ExpectedTime: 36000, Volume: 10}},
		NewOrders: []domain.Order{{ID: "p1", Kind: domain.Pickup, ExpectedTime: 40000, Volume: 8}},
		Riders: []RiderState{{
			Rider: domain.Rider{ID: "r1", Capacity: 20, StartTime: 32400},
			Tours: [][]domain.TourStop{{
				{OrderID: "depot", Timing: 32400},
				{OrderID: "d1", Timing: 600},
				{OrderID: "depot", Timing: 600},
			}},
			HeadingTo: "d1",
		}},
		CurrentTime: 32700,
	}

	plan, err := p.AddPickups(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !plan.Riders[0].UpdatedCurrentTour {
		t.Fatal("inserted pickup did not flag the current trip as updated")
	}
	ids := []string{}
	for _, stop := range plan.Riders[0].Tours[0] {
		ids = append(ids, stop.OrderID)
	}
	want := []string{"depot", "d1", "p1", "depot"}
	if len(ids) != len(want) {
		t.Fatalf("current trip %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("current trip %v, want %v", ids, want)
		}
	}
}

func TestPlannerDeleteUnknownOrderEchoesPlan(t *testing.T) {
	p := testPlanner([][]int{{0, 600}, {600, 0}})

	in := DeletePickupInput{
		Depot:  domain.Depot{ID: "depot"},
		Orders: []domain.Order{{ID: "o1", Kind: domain.Delivery, ExpectedTime: 36000, Volume: 5}},
		Riders: []RiderState{{
			Rider: domain.Rider{ID: "r1", Capacity: 10, StartTime: 32400},
			Tours: [][]domain.TourStop{{
				{OrderID: "depot", Timing: 32400},
				{OrderID: "o1", Timing: 600},
				{OrderID: "depot", Timing: 600},
			}},
			HeadingTo: "o1",
		}},
		DelOrderID:  "ghost",
		CurrentTime: 32700,
	}

	plan, err := p.DeletePickup(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Riders[0].UpdatedCurrentTour {
		t.Fatal("unknown delete flagged the current trip as updated")
	}
	for i, stop := range in.Riders[0].Tours[0] {
		if plan.Riders[0].Tours[0][i] != stop {
			t.Fatalf("tours %+v, want the submitted plan echoed", plan.Riders[0].Tours)
		}
	}
}

func TestPlannerSurfacesUpstreamFailure(t *testing.T) {
	p := &Planner{
		Provider: &distance.MockTravelTimeProvider{Err: ports.ErrUpstream},
		Cfg:      testConfig(),
		Seed:     1,
	}

	_, err := p.StartDay(context.Background(), singleDeliveryInput())
	if !errors.Is(err, ports.ErrUpstream) {
		t.Fatalf("err=%v, want ErrUpstream surfaced", err)
	}
}

func TestPlannerRejectsDuplicateOrderIDs(t *testing.T) {
	p := testPlanner(uniform3x3(600))

	in := singleDeliveryInput()
	in.Orders = append(in.Orders, in.Orders[0])

	_, err := p.StartDay(context.Background(), in)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err=%v, want ErrInvalidInput", err)
	}
}

func uniform3x3(d int) [][]int {
	return [][]int{{0, d, d}, {d, 0, d}, {d, d, 0}}
}
