package distance

import (
	"context"
	"fmt"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/domain"
)

// MockTravelTimeProvider serves a fixed matrix, for tests and local runs
// without an OSRM backend.
type MockTravelTimeProvider struct {
	Matrix [][]int
	Err    error
}

func (p *MockTravelTimeProvider) TravelTimes(ctx context.Context, points []domain.Point) ([][]int, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	if len(points) != len(p.Matrix) {
		return nil, fmt.Errorf("mock matrix is %dx%d; got %d points", len(p.Matrix), len(p.Matrix), len(points))
	}
	return p.Matrix, nil
}
