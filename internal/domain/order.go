package domain

// OrderKind distinguishes outward deliveries from inward pickups.
type OrderKind string

const (
	Delivery OrderKind = "delivery"
	Pickup   OrderKind = "pickup"
)

// Order is a single consignment to be delivered to or picked up from a
// customer location. All times are integer seconds; ExpectedTime is measured
// from midnight of the planning day and may run past 24h for future days.
type Order struct {
	ID           string
	Kind         OrderKind
	Point        Point
	ExpectedTime int
	Volume       int
	ServiceTime  int
}

// SignedVolume is the change in consumed bag volume when the order is
// served: positive for deliveries, negative for pickups.
func (o Order) SignedVolume() int {
	if o.Kind == Pickup {
		return -o.Volume
	}
	return o.Volume
}

// Depot is the single warehouse all trips start and end at.
type Depot struct {
	ID    string
	Point Point
}
