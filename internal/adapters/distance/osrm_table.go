package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/domain"
)

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Durations [][]*float64 `json:"durations"`
}

// coordKey renders a point as OSRM's lon,lat literal. The same string keys
// the travel-time cache, so cache hits survive re-ordered requests.
func coordKey(p domain.Point) string {
	return strconv.FormatFloat(p.Longitude, 'f', -1, 64) +
		"," +
		strconv.FormatFloat(p.Latitude, 'f', -1, 64)
}

// fetchTable retrieves the full pairwise duration matrix for the given points
// from the OSRM table endpoint.
func (o *OSRMTravelTimeProvider) fetchTable(
	ctx context.Context,
	points []domain.Point,
) ([][]int, error) {
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = coordKey(p)
	}

	endpoint := fmt.Sprintf(
		"%s/table/v1/%s/%s?annotations=duration",
		o.baseURL, o.profile, strings.Join(coords, ";"),
	)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("table request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode table response: %w", err)
	}

	if tr.Code != "Ok" {
		return nil, fmt.Errorf("table response code %q: %s", tr.Code, tr.Message)
	}

	if len(tr.Durations) != len(points) {
		return nil, fmt.Errorf(
			"expected %d duration rows; got %d",
			len(points), len(tr.Durations),
		)
	}

	out := make([][]int, len(points))
	for i, row := range tr.Durations {
		if len(row) != len(points) {
			return nil, fmt.Errorf(
				"duration row %d has %d cells; expected %d",
				i, len(row), len(points),
			)
		}

		out[i] = make([]int, len(points))
		for j, cell := range row {
			if cell == nil {
				return nil, fmt.Errorf("no route between point %d and point %d", i, j)
			}
			// OSRM returns float seconds; round to whole seconds for the
			// time dimension.
			out[i][j] = int(math.Round(*cell))
		}
	}

	return out, nil
}
