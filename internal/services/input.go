package services

import (
	"errors"
	"time"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/domain"
)

// ErrInvalidInput marks request-level problems detected after JSON decoding:
// duplicate ids, references to unknown orders, a headingTo stop that is not
// on the rider's current trip. Handlers map it to a 400-class response.
var ErrInvalidInput = errors.New("invalid input")

// StartDayInput is the normalised start-day request: plan every order across
// the fleet from scratch.
type StartDayInput struct {
	Depot   domain.Depot
	Orders  []domain.Order
	Riders  []domain.Rider
	Runtime time.Duration
}

// RiderState is one rider of a plan-in-progress: its submitted trips and the
// id of the stop it is currently heading to (empty when idle).
type RiderState struct {
	Rider     domain.Rider
	Tours     [][]domain.TourStop
	HeadingTo string
}

// AddPickupsInput asks for one or more new pickups to be worked into a plan
// already in progress.
type AddPickupsInput struct {
	Depot       domain.Depot
	Orders      []domain.Order
	NewOrders   []domain.Order
	Riders      []RiderState
	CurrentTime int
}

// DeletePickupInput asks for a not-yet-reached pickup to be removed from a
// plan in progress.
type DeletePickupInput struct {
	Depot       domain.Depot
	Orders      []domain.Order
	Riders      []RiderState
	DelOrderID  string
	CurrentTime int
}
