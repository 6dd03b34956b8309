package domain

// TourStop is one stop of a trip on the wire: the order (or depot) id and the
// arrival offset in seconds from the previous stop. The first stop of a
// rider's first trip carries the absolute trip start instead, so
// prefix-summing a rider's flattened stops reconstructs absolute clocks.
type TourStop struct {
	OrderID string
	Timing  int
}

// RiderPlan is the ordered list of trips assigned to one rider. Tours[0] is
// the in-progress (or first) trip; each trip begins and ends at the depot.
type RiderPlan struct {
	RiderID            string
	Tours              [][]TourStop
	UpdatedCurrentTour bool
}

// Plan is the full fleet assignment returned to the client. The service holds
// no state between calls; the client owns the plan and passes it back on
// updates.
type Plan struct {
	Riders []RiderPlan
}
