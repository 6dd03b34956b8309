package solver

import (
	"math/rand"
	"testing"
	"time"
)

func testParams() Params {
	return Params{
		GlobalEndTime:     21 * 3600,
		MaxTripTime:       5*3600 + 30*60,
		WaitAtWarehouse:   0,
		LatePenaltyPerSec: 10,
		MissPenalty:       2_000_000,
	}
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

const testBudget = 100 * time.Millisecond

// uniformMatrix returns an n-by-n matrix with d on every off-diagonal cell.
func uniformMatrix(n, d int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
		for j := range m[i] {
			if i != j {
				m[i][j] = d
			}
		}
	}
	return m
}

// testInstance builds an instance with depot 0, the given signed volumes for
// nodes 1..n-1, full miss penalty everywhere and no due-time pressure.
func testInstance(matrix [][]int, volumes []int, capacities []int, startTime int) *Instance {
	n := len(matrix)
	ins := &Instance{
		TimeMatrix:      matrix,
		PackageVolume:   make([]int, n),
		DeliveryTime:    make([]int, n),
		ServiceTime:     make([]int, n),
		Penalty:         make([]int, n),
		VehicleCapacity: capacities,
		StartTime:       make([]int, len(capacities)),
		Depot:           0,
	}
	for i := 0; i < n; i++ {
		ins.DeliveryTime[i] = 21 * 3600
		ins.Penalty[i] = 2_000_000
	}
	for i, v := range volumes {
		ins.PackageVolume[i+1] = v
	}
	for v := range ins.StartTime {
		ins.StartTime[v] = startTime
	}
	return ins
}

// checkPlanInvariants verifies the structural guarantees every produced plan
// must satisfy: depot-to-depot trips, consistent timings, the trip-end bound,
// inter-trip spacing, a feasible load profile and no duplicated order.
func checkPlanInvariants(t *testing.T, ins *Instance, p Params, tours, timings [][][]int) {
	t.Helper()

	seen := map[int]bool{}
	for v := range tours {
		if len(tours[v]) != len(timings[v]) {
			t.Fatalf("rider %d: %d tours but %d timing rows", v, len(tours[v]), len(timings[v]))
		}
		prevEnd := -1 << 40
		for ti, trip := range tours[v] {
			tim := timings[v][ti]
			if len(trip) < 2 || trip[0] != ins.Depot || trip[len(trip)-1] != ins.Depot {
				t.Fatalf("rider %d trip %d = %v does not run depot to depot", v, ti, trip)
			}
			if len(tim) != len(trip) {
				t.Fatalf("rider %d trip %d: %d stops but %d timings", v, ti, len(trip), len(tim))
			}
			if tim[0] < prevEnd+p.WaitAtWarehouse {
				t.Fatalf("rider %d trip %d starts at %d before %d+wait", v, ti, tim[0], prevEnd)
			}

			for k := 0; k+1 < len(trip); k++ {
				want := tim[k] + ins.TimeMatrix[trip[k]][trip[k+1]] + ins.ServiceTime[trip[k]]
				if tim[k+1] != want {
					t.Fatalf("rider %d trip %d stop %d: timing %d, want %d", v, ti, k+1, tim[k+1], want)
				}
			}

			bound := tim[0] + p.MaxTripTime
			if p.GlobalEndTime < bound {
				bound = p.GlobalEndTime
			}
			if end := tim[len(tim)-1]; end > bound {
				t.Fatalf("rider %d trip %d ends at %d past bound %d", v, ti, end, bound)
			}

			prefix, minP, maxP := 0, 0, 0
			for k := 0; k+1 < len(trip); k++ {
				prefix += ins.PackageVolume[trip[k]]
				if prefix < minP {
					minP = prefix
				}
				if prefix > maxP {
					maxP = prefix
				}
			}
			if -minP > ins.VehicleCapacity[v]-maxP {
				t.Fatalf("rider %d trip %d = %v cannot fit capacity %d", v, ti, trip, ins.VehicleCapacity[v])
			}

			for _, n := range trip {
				if n == ins.Depot {
					continue
				}
				if seen[n] {
					t.Fatalf("node %d appears twice in the plan", n)
				}
				seen[n] = true
			}

			prevEnd = tim[len(tim)-1]
		}
	}
}

// plannedNodes flattens every non-depot node of a plan.
func plannedNodes(ins *Instance, tours [][][]int) map[int]bool {
	out := map[int]bool{}
	for v := range tours {
		for _, trip := range tours[v] {
			for _, n := range trip {
				if n != ins.Depot {
					out[n] = true
				}
			}
		}
	}
	return out
}
