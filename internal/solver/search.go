package solver

import (
	"context"
	"math/rand"
	"time"
)

// MetaheuristicGLS enables guided local search arc penalties during the
// improvement phase. Any other value runs plain descent, which stops at the
// first local optimum.
const MetaheuristicGLS = "GUIDED_LOCAL_SEARCH"

// glsPenalties hold per-arc feature penalties for guided local search.
type glsPenalties struct {
	pen    map[[2]int]int
	lambda int
}

func newGLSPenalties(ins *Instance) *glsPenalties {
	total, arcs := 0, 0
	for i := range ins.TimeMatrix {
		for j := range ins.TimeMatrix[i] {
			if i != j {
				total += ins.TimeMatrix[i][j]
				arcs++
			}
		}
	}
	lambda := 1
	if arcs > 0 && total/arcs > 10 {
		lambda = total / arcs / 10
	}
	return &glsPenalties{pen: make(map[[2]int]int), lambda: lambda}
}

// augmented returns the GLS-augmented cost of a solution: true cost plus
// lambda times the accumulated penalty of every used arc.
func (g *glsPenalties) augmented(sol *solution, penalty []int) int {
	cost := sol.cost(penalty)
	if g == nil {
		return cost
	}
	for _, route := range sol.routes {
		for k := 0; k+1 < len(route); k++ {
			if p, ok := g.pen[[2]int{route[k], route[k+1]}]; ok {
				cost += g.lambda * p
			}
		}
	}
	return cost
}

// penalizeWorst bumps the penalty of the arcs with maximal utility
// cost/(1+penalty), diversifying the search away from the current local
// optimum.
func (g *glsPenalties) penalizeWorst(sol *solution, ins *Instance) {
	bestUtil := -1
	var worst [][2]int
	for _, route := range sol.routes {
		for k := 0; k+1 < len(route); k++ {
			arc := [2]int{route[k], route[k+1]}
			util := ins.TimeMatrix[arc[0]][arc[1]] / (1 + g.pen[arc])
			if util > bestUtil {
				bestUtil = util
				worst = worst[:0]
			}
			if util == bestUtil {
				worst = append(worst, arc)
			}
		}
	}
	for _, arc := range worst {
		g.pen[arc]++
	}
}

// improve runs local search over the constructed solution until the deadline.
// Moves: re-insert a dropped node, relocate, swap, intra-route 2-opt and
// drop. Acceptance uses the (possibly GLS-augmented) cost; the best solution
// by true cost is kept and written back into sol.
func improve(ctx context.Context, req *TripRequest, sol *solution, p Params, rng *rand.Rand, deadline time.Time) {
	if !time.Now().Before(deadline) {
		return
	}

	var gls *glsPenalties
	if req.Ins.LocalSearchMetaheuristic == MetaheuristicGLS {
		gls = newGLSPenalties(req.Ins)
	}

	penalty := req.Ins.Penalty
	best := sol.clone()
	bestCost := best.cost(penalty)

	for time.Now().Before(deadline) && ctx.Err() == nil {
		if !descentStep(req, sol, p, rng, gls, penalty) {
			// Local optimum under the augmented cost.
			if c := sol.cost(penalty); c < bestCost {
				best = sol.clone()
				bestCost = c
			}
			if gls == nil {
				break
			}
			gls.penalizeWorst(sol, req.Ins)
			continue
		}
		if c := sol.cost(penalty); c < bestCost {
			best = sol.clone()
			bestCost = c
		}
	}

	*sol = *best
}

// descentStep applies the first improving move it finds and reports whether
// any move improved the augmented cost.
func descentStep(req *TripRequest, sol *solution, p Params, rng *rand.Rand, gls *glsPenalties, penalty []int) bool {
	cur := gls.augmented(sol, penalty)

	if tryReinsert(req, sol, p, gls, penalty, cur) {
		return true
	}
	if tryRelocate(req, sol, p, rng, gls, penalty, cur) {
		return true
	}
	if trySwap(req, sol, p, rng, gls, penalty, cur) {
		return true
	}
	if tryTwoOpt(req, sol, p, rng, gls, penalty, cur) {
		return true
	}
	return tryDrop(req, sol, p, gls, penalty, cur)
}

// tryReinsert moves one dropped node back onto its best feasible position.
func tryReinsert(req *TripRequest, sol *solution, p Params, gls *glsPenalties, penalty []int, cur int) bool {
	for n := range sol.dropped {
		for v := range sol.routes {
			route := sol.routes[v]
			for pos := 1; pos < len(route); pos++ {
				cand := insertAt(route, pos, n)
				ev, ok := req.evalRoute(v, cand, p)
				if !ok {
					continue
				}
				if applyIfBetter(req, sol, v, cand, ev, n, false, gls, penalty, cur) {
					return true
				}
			}
		}
	}
	return false
}

// tryRelocate moves one visited node to a different position, possibly on a
// different vehicle.
func tryRelocate(req *TripRequest, sol *solution, p Params, rng *rand.Rand, gls *glsPenalties, penalty []int, cur int) bool {
	order := rng.Perm(len(sol.routes))
	for _, v := range order {
		route := sol.routes[v]
		for i := 1; i+1 < len(route); i++ {
			n := route[i]
			removed := removeAt(route, i)
			evFrom, okFrom := req.evalRoute(v, removed, p)
			if !okFrom {
				continue
			}
			for w := range sol.routes {
				target := removed
				if w != v {
					target = sol.routes[w]
				}
				for pos := 1; pos < len(target); pos++ {
					if w == v && pos == i {
						continue
					}
					cand := insertAt(target, pos, n)
					evTo, okTo := req.evalRoute(w, cand, p)
					if !okTo {
						continue
					}

					next := sol.clone()
					if w == v {
						next.routes[v] = cand
						next.evals[v] = evTo
					} else {
						next.routes[v] = removed
						next.evals[v] = evFrom
						next.routes[w] = cand
						next.evals[w] = evTo
					}
					if gls.augmented(next, penalty) < cur {
						*sol = *next
						return true
					}
				}
			}
		}
	}
	return false
}

// trySwap exchanges two visited nodes between positions.
func trySwap(req *TripRequest, sol *solution, p Params, rng *rand.Rand, gls *glsPenalties, penalty []int, cur int) bool {
	order := rng.Perm(len(sol.routes))
	for _, v := range order {
		for _, w := range order {
			if w < v {
				continue
			}
			rv, rw := sol.routes[v], sol.routes[w]
			for i := 1; i+1 < len(rv); i++ {
				jStart := 1
				if v == w {
					jStart = i + 1
				}
				for j := jStart; j+1 < len(rw); j++ {
					next := sol.clone()
					if v == w {
						next.routes[v][i], next.routes[v][j] = next.routes[v][j], next.routes[v][i]
					} else {
						next.routes[v][i], next.routes[w][j] = next.routes[w][j], next.routes[v][i]
					}
					evV, okV := req.evalRoute(v, next.routes[v], p)
					if !okV {
						continue
					}
					next.evals[v] = evV
					if v != w {
						evW, okW := req.evalRoute(w, next.routes[w], p)
						if !okW {
							continue
						}
						next.evals[w] = evW
					}
					if gls.augmented(next, penalty) < cur {
						*sol = *next
						return true
					}
				}
			}
		}
	}
	return false
}

// tryTwoOpt reverses a segment within a single route.
func tryTwoOpt(req *TripRequest, sol *solution, p Params, rng *rand.Rand, gls *glsPenalties, penalty []int, cur int) bool {
	order := rng.Perm(len(sol.routes))
	for _, v := range order {
		route := sol.routes[v]
		for i := 1; i+1 < len(route); i++ {
			for j := i + 1; j+1 < len(route); j++ {
				cand := append([]int(nil), route...)
				for a, b := i, j; a < b; a, b = a+1, b-1 {
					cand[a], cand[b] = cand[b], cand[a]
				}
				ev, ok := req.evalRoute(v, cand, p)
				if !ok {
					continue
				}
				next := sol.clone()
				next.routes[v] = cand
				next.evals[v] = ev
				if gls.augmented(next, penalty) < cur {
					*sol = *next
					return true
				}
			}
		}
	}
	return false
}

// tryDrop removes a visited node, trading its drop penalty against the
// travel and lateness it costs. Only worthwhile for tiny penalties.
func tryDrop(req *TripRequest, sol *solution, p Params, gls *glsPenalties, penalty []int, cur int) bool {
	for v := range sol.routes {
		route := sol.routes[v]
		for i := 1; i+1 < len(route); i++ {
			cand := removeAt(route, i)
			ev, ok := req.evalRoute(v, cand, p)
			if !ok {
				continue
			}
			if applyIfBetter(req, sol, v, cand, ev, route[i], true, gls, penalty, cur) {
				return true
			}
		}
	}
	return false
}

func applyIfBetter(req *TripRequest, sol *solution, v int, cand []int, ev routeEval, n int, drop bool, gls *glsPenalties, penalty []int, cur int) bool {
	next := sol.clone()
	next.routes[v] = cand
	next.evals[v] = ev
	if drop {
		next.dropped[n] = true
	} else {
		delete(next.dropped, n)
	}
	if gls.augmented(next, penalty) < cur {
		*sol = *next
		return true
	}
	return false
}

func removeAt(route []int, i int) []int {
	out := make([]int, 0, len(route)-1)
	out = append(out, route[:i]...)
	out = append(out, route[i+1:]...)
	return out
}
