package dto

// Wire shapes for the three planning endpoints. All times are integer
// seconds: absolute values are seconds since midnight, per-stop timings are
// offsets from the previous stop (the first stop of a rider's first trip
// carries the absolute trip start).

type Point struct {
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
}

type Package struct {
	Volume int `json:"volume" validate:"gte=0"`
}

type Vehicle struct {
	Capacity int `json:"capacity" validate:"gte=0"`
}

type Order struct {
	ID           string  `json:"id" validate:"required"`
	OrderType    string  `json:"orderType" validate:"required,oneof=delivery pickup"`
	Point        Point   `json:"point"`
	ExpectedTime int     `json:"expectedTime" validate:"gte=0"`
	Package      Package `json:"package"`
	ServiceTime  int     `json:"serviceTime" validate:"gte=0"`
}

type Depot struct {
	ID    string `json:"id" validate:"required"`
	Point Point  `json:"point"`
}

type TourStop struct {
	OrderID string `json:"orderId" validate:"required"`
	Timing  int    `json:"timing" validate:"gte=0"`
}

type Rider struct {
	ID        string  `json:"id" validate:"required"`
	Vehicle   Vehicle `json:"vehicle"`
	StartTime int     `json:"startTime" validate:"gte=0"`

	// Plan-in-progress state, only meaningful on the update endpoints.
	Tours     [][]TourStop `json:"tours,omitempty" validate:"dive,dive"`
	HeadingTo string       `json:"headingTo,omitempty"`
}

type StartDayRequest struct {
	Depot  Depot   `json:"depot"`
	Orders []Order `json:"orders" validate:"min=1,dive"`
	Riders []Rider `json:"riders" validate:"min=1,dive"`

	// Solve budget in seconds; zero means the configured default.
	Runtime int `json:"runtime" validate:"gte=0"`
}

type AddOrderRequest struct {
	Depot  Depot   `json:"depot"`
	Orders []Order `json:"orders" validate:"dive"`

	// Either a batch of pickups or a single one; exactly as the client
	// prefers. At least one of the two must be present.
	NewOrders []Order `json:"newOrders,omitempty" validate:"required_without=NewOrder,dive"`
	NewOrder  *Order  `json:"newOrder,omitempty"`

	Riders      []Rider `json:"riders" validate:"min=1,dive"`
	CurrentTime int     `json:"currentTime" validate:"gte=0"`
}

type DelOrderRequest struct {
	Depot       Depot   `json:"depot"`
	Orders      []Order `json:"orders" validate:"min=1,dive"`
	Riders      []Rider `json:"riders" validate:"min=1,dive"`
	DelOrderID  string  `json:"delOrderId" validate:"required"`
	CurrentTime int     `json:"currentTime" validate:"gte=0"`
}

type RiderTours struct {
	ID    string       `json:"id"`
	Tours [][]TourStop `json:"tours"`
}

type StartDayResponse struct {
	Riders []RiderTours `json:"riders"`
}

type RiderUpdate struct {
	ID                 string       `json:"id"`
	Tours              [][]TourStop `json:"tours"`
	UpdatedCurrentTour bool         `json:"updatedCurrentTour"`
}

type UpdateResponse struct {
	Riders []RiderUpdate `json:"riders"`
}
