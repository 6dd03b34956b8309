package distance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/adapters/cache"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/domain"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/platform/obs"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/ports"
)

// OSRMTravelTimeProvider implements TravelTimeProvider against an OSRM
// routing backend.
//
// It coordinates:
//   - Persistent travel-time caching per coordinate pair
//   - External table calls with retry/backoff
//
// The provider is safe for concurrent use.
type OSRMTravelTimeProvider struct {
	session *http.Client
	baseURL string
	profile string
	cache   *cache.SQLTravelTimeCache
}

func NewOSRMTravelTimeProvider(
	baseURL string,
	travelTimeCache *cache.SQLTravelTimeCache,
) (*OSRMTravelTimeProvider, error) {
	if baseURL == "" {
		return nil, errors.New("OSRM base URL is empty")
	}

	provider := &OSRMTravelTimeProvider{
		session: &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving",
		cache:   travelTimeCache,
	}

	return provider, nil
}

// TravelTimes returns the pairwise duration matrix for the given points,
// serving the whole matrix from cache when every pair is known and falling
// back to one OSRM table call otherwise.
func (o *OSRMTravelTimeProvider) TravelTimes(
	ctx context.Context,
	points []domain.Point,
) (_ [][]int, err error) {
	defer obs.Time(ctx, "osrm.TravelTimes")(&err)

	if len(points) == 0 {
		return nil, errors.New("travel times: no points given")
	}

	keys := make([]string, len(points))
	for i, p := range points {
		keys[i] = coordKey(p)
	}

	if matrix, ok := o.fromCache(ctx, keys); ok {
		return matrix, nil
	}

	matrix, err := o.fetchTable(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrUpstream, err)
	}

	o.storeRows(ctx, keys, matrix)

	return matrix, nil
}

// fromCache assembles the matrix from cached pairs; it reports false as soon
// as any pair is missing.
func (o *OSRMTravelTimeProvider) fromCache(ctx context.Context, keys []string) ([][]int, bool) {
	if o.cache == nil {
		return nil, false
	}

	matrix := make([][]int, len(keys))
	for i, origin := range keys {
		hits, err := o.cache.GetMany(ctx, origin, keys)
		if err != nil {
			log.Printf("travel time cache read failed: %v", err)
			return nil, false
		}

		matrix[i] = make([]int, len(keys))
		for j, dest := range keys {
			if i == j {
				continue
			}
			seconds, ok := hits[dest]
			if !ok {
				return nil, false
			}
			matrix[i][j] = seconds
		}
	}

	return matrix, true
}

func (o *OSRMTravelTimeProvider) storeRows(ctx context.Context, keys []string, matrix [][]int) {
	if o.cache == nil {
		return
	}

	for i, origin := range keys {
		row := make(map[string]int, len(keys))
		for j, dest := range keys {
			if i == j {
				continue
			}
			row[dest] = matrix[i][j]
		}
		if err := o.cache.PutMany(ctx, origin, row); err != nil {
			log.Printf("travel time cache write failed: %v", err)
			return
		}
	}
}
