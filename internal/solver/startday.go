package solver

import (
	"context"
	"math/rand"
	"time"
)

// StartDay plans the whole day as a fixed-point peel: solve one round over
// the residual instance, record non-empty trips, advance each vehicle's start
// to its depot-return plus the warehouse wait, shrink the instance to the
// unvisited nodes and repeat. The loop stops when the solve fails, the
// residual holds only the depot, or a round produces no non-empty trip.
//
// dropPenalty is the per-node drop cost for the first round; visited nodes
// are zeroed out between rounds. Returned tours and timings are indexed by
// vehicle, then trip, then stop, with node indices of the original instance
// and absolute clock times.
func StartDay(ctx context.Context, ins *Instance, dropPenalty []int, budget time.Duration, p Params, rng *rand.Rand) (tours, timings [][][]int) {
	numV := ins.NumVehicles()
	tours = make([][][]int, numV)
	timings = make([][][]int, numV)
	for v := range tours {
		tours[v] = [][]int{}
		timings[v] = [][]int{}
	}

	if ins.NumLocations() == 0 {
		return tours, timings
	}

	// Spread the budget uniformly over the expected number of rounds.
	roundBudget := budget / time.Duration(expectedRounds(ins))
	if rem := budget % time.Duration(expectedRounds(ins)); rem > 0 {
		roundBudget++
	}

	cur := ins
	pen := append([]int(nil), dropPenalty...)
	toOrig := make([]int, cur.NumLocations())
	for i := range toOrig {
		toOrig[i] = i
	}
	startTime := append([]int(nil), cur.StartTime...)

	for {
		round := *cur
		round.Penalty = pen
		round.StartTime = startTime

		depots := make([]int, numV)
		for v := range depots {
			depots[v] = round.Depot
		}
		free := make([]int, numV)
		for v := range free {
			free[v] = -1
		}

		res := Solve(ctx, TripRequest{
			Ins:        &round,
			Starts:     depots,
			Ends:       depots,
			StartLoad:  free,
			StartClock: startTime,
			TripStart:  startTime,
			Budget:     roundBudget,
		}, p, rng)

		if !res.Feasible {
			return tours, timings
		}

		visited := make([]bool, round.NumLocations())
		for v := range res.Routes {
			for _, n := range res.Routes[v] {
				visited[n] = true
			}
		}

		canContinue := false
		for v := range res.Routes {
			if len(res.Routes[v]) > 2 {
				canContinue = true
				trip := make([]int, len(res.Routes[v]))
				for i, n := range res.Routes[v] {
					trip[i] = toOrig[n]
				}
				tours[v] = append(tours[v], trip)
				timings[v] = append(timings[v], append([]int(nil), res.Times[v]...))
			}

			next := res.ReturnTime[v] + p.WaitAtWarehouse
			if next > p.GlobalEndTime {
				next = p.GlobalEndTime
			}
			startTime[v] = next
		}

		// Residual: the depot plus every node still carrying a penalty.
		take := []int{round.Depot}
		nextToOrig := []int{toOrig[round.Depot]}
		nextPen := []int{0}
		for n := 0; n < round.NumLocations(); n++ {
			if n == round.Depot || visited[n] || pen[n] <= 0 {
				continue
			}
			take = append(take, n)
			nextToOrig = append(nextToOrig, toOrig[n])
			nextPen = append(nextPen, pen[n])
		}

		if len(take) == 1 || !canContinue {
			return tours, timings
		}

		cur = round.Extract(take, allVehicles(numV), startTime)
		pen = nextPen
		toOrig = nextToOrig
	}
}

// expectedRounds estimates how many depot loops the fleet needs to move all
// outward volume: ceil(total delivery volume / fleet capacity), at least 1.
func expectedRounds(ins *Instance) int {
	volume, capacity := 0, 0
	for _, v := range ins.PackageVolume {
		if v > 0 {
			volume += v
		}
	}
	for _, c := range ins.VehicleCapacity {
		capacity += c
	}
	if capacity <= 0 || volume <= 0 {
		return 1
	}
	rounds := (volume + capacity - 1) / capacity
	if rounds < 1 {
		rounds = 1
	}
	return rounds
}
