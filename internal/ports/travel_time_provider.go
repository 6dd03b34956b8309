package ports

import (
	"context"
	"errors"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/domain"
)

// ErrUpstream marks a failure of the external travel-time provider (timeout,
// non-200, malformed matrix). Handlers translate it into a 502-class
// response; the request fails atomically.
var ErrUpstream = errors.New("travel time provider unavailable")

// Contract for retrieving the pairwise travel-time matrix for a point set.
type TravelTimeProvider interface {
	// TravelTimes returns an NxN matrix of integer travel times in seconds
	// for the given points. The diagonal is zero.
	TravelTimes(ctx context.Context, points []domain.Point) ([][]int, error)
}
