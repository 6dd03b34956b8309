package solver

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"
)

// TripRequest describes one bounded constrained solve. Starts, Ends,
// StartLoad, StartClock and TripStart are per-vehicle; node indices refer to
// req.Ins.
//
// StartLoad is the consumed-volume value fixed at the start node; a value of
// -1 leaves it free in [0, capacity] (the vehicle departs with only what it
// needs). StartClock is the clock fixed at the start node. TripStart is the
// clock the trip originally left the depot: the trip must end by
// min(GlobalEndTime, TripStart+MaxTripTime).
type TripRequest struct {
	Ins        *Instance
	Starts     []int
	Ends       []int
	StartLoad  []int
	StartClock []int
	TripStart  []int

	// Initial optionally seeds the search with per-vehicle node sequences
	// (excluding start and end nodes).
	Initial [][]int

	Budget time.Duration
}

// TripResult is the outcome of a single solve. Routes include the start and
// end nodes; Times carries the absolute clock at every stop. Dropped lists
// the nodes left unvisited (start and end nodes excluded). When Feasible is
// false no assignment exists: every route is empty, every non-end node is
// dropped and ReturnTime echoes StartClock.
type TripResult struct {
	Routes     [][]int
	Times      [][]int
	Dropped    []int
	ReturnTime []int
	Feasible   bool
}

// routeEval is the cost breakdown of a single evaluated route.
type routeEval struct {
	times  []int
	travel int
	late   int
}

// endCap returns the hard clock bound for vehicle v.
func (req *TripRequest) endCap(v int, p Params) int {
	b := req.TripStart[v] + p.MaxTripTime
	if p.GlobalEndTime < b {
		b = p.GlobalEndTime
	}
	return b
}

// evalRoute simulates a route and reports its cost, or ok=false when it
// violates the capacity, clock or stop-count constraints. The route must
// begin with the vehicle's start node and finish with its end node.
func (req *TripRequest) evalRoute(v int, route []int, p Params) (routeEval, bool) {
	ins := req.Ins
	ev := routeEval{times: make([]int, len(route))}

	if req.Ins.RouteLength > 0 && len(route)-1 > req.Ins.RouteLength {
		return ev, false
	}

	vcap := ins.VehicleCapacity[v]
	bound := req.endCap(v, p)

	t := req.StartClock[v]
	if t > bound {
		return ev, false
	}
	ev.times[0] = t

	// Consumed volume along the route. A fixed start load is tracked
	// directly; a free start reduces to keeping the running prefix range
	// within the capacity window.
	fixed := req.StartLoad[v] >= 0
	load := 0
	if fixed {
		load = req.StartLoad[v]
		if load > vcap {
			return ev, false
		}
	}
	for k := 0; k+1 < len(route); k++ {
		from, to := route[k], route[k+1]

		if fixed {
			load += ins.PackageVolume[from]
			if load < 0 || load > vcap {
				return ev, false
			}
		}

		transit := ins.TimeMatrix[from][to] + ins.ServiceTime[from]
		t += transit
		if t > bound {
			return ev, false
		}
		ev.travel += transit
		ev.times[k+1] = t
	}

	if !fixed {
		prefix, minPrefix, maxPrefix := 0, 0, 0
		for k := 0; k+1 < len(route); k++ {
			prefix += ins.PackageVolume[route[k]]
			if prefix < minPrefix {
				minPrefix = prefix
			}
			if prefix > maxPrefix {
				maxPrefix = prefix
			}
		}
		// Need some initial load c0 in [0,cap] with c0+prefix in [0,cap]
		// at every stop.
		lo := 0
		if -minPrefix > lo {
			lo = -minPrefix
		}
		if lo > vcap-maxPrefix {
			return ev, false
		}
	}

	// Soft lateness applies to every stop except the final end node.
	for k := 0; k+1 < len(route); k++ {
		if d := ev.times[k] - ins.DeliveryTime[route[k]]; d > 0 {
			ev.late += d * p.LatePenaltyPerSec
		}
	}

	return ev, true
}

func (ev routeEval) cost() int { return ev.travel + ev.late }

// solution is the solver's working state: per-vehicle routes plus the
// dropped-node set.
type solution struct {
	routes  [][]int
	evals   []routeEval
	dropped map[int]bool
}

func (s *solution) clone() *solution {
	out := &solution{
		routes:  make([][]int, len(s.routes)),
		evals:   make([]routeEval, len(s.evals)),
		dropped: make(map[int]bool, len(s.dropped)),
	}
	for v := range s.routes {
		out.routes[v] = append([]int(nil), s.routes[v]...)
		out.evals[v] = routeEval{
			times:  append([]int(nil), s.evals[v].times...),
			travel: s.evals[v].travel,
			late:   s.evals[v].late,
		}
	}
	for n := range s.dropped {
		out.dropped[n] = true
	}
	return out
}

func (s *solution) cost(pen []int) int {
	total := 0
	for v := range s.routes {
		total += s.evals[v].cost()
	}
	for n := range s.dropped {
		total += pen[n]
	}
	return total
}

// Solve runs the bounded constrained solve: cheapest-insertion construction
// seeded from req.Initial when present, then local search until the budget
// expires. Guided local search arc penalties are enabled when the instance
// asks for them. The best assignment found is returned; when not even the
// bare start-to-end routes are feasible the result is marked infeasible.
func Solve(ctx context.Context, req TripRequest, p Params, rng *rand.Rand) TripResult {
	ins := req.Ins
	numV := len(req.Starts)

	special := make(map[int]bool, 2*numV)
	for v := 0; v < numV; v++ {
		special[req.Starts[v]] = true
		special[req.Ends[v]] = true
	}

	sol := &solution{
		routes:  make([][]int, numV),
		evals:   make([]routeEval, numV),
		dropped: make(map[int]bool),
	}

	for v := 0; v < numV; v++ {
		route := []int{req.Starts[v], req.Ends[v]}
		ev, ok := req.evalRoute(v, route, p)
		if !ok {
			return infeasibleResult(&req)
		}
		sol.routes[v] = route
		sol.evals[v] = ev
	}

	for n := 0; n < ins.NumLocations(); n++ {
		if !special[n] {
			sol.dropped[n] = true
		}
	}

	deadline := time.Now().Add(req.Budget)

	seedInitial(&req, sol, p)
	constructCheapest(ctx, &req, sol, p, deadline)
	improve(ctx, &req, sol, p, rng, deadline)

	return extractResult(&req, sol)
}

// seedInitial installs the caller-provided routes, skipping any seed node
// whose insertion is infeasible (it stays dropped and may be re-inserted
// later).
func seedInitial(req *TripRequest, sol *solution, p Params) {
	for v := 0; v < len(req.Starts) && v < len(req.Initial); v++ {
		for _, n := range req.Initial[v] {
			if !sol.dropped[n] {
				continue
			}
			route := sol.routes[v]
			cand := make([]int, 0, len(route)+1)
			cand = append(cand, route[:len(route)-1]...)
			cand = append(cand, n, route[len(route)-1])
			if ev, ok := req.evalRoute(v, cand, p); ok {
				sol.routes[v] = cand
				sol.evals[v] = ev
				delete(sol.dropped, n)
			}
		}
	}
}

// constructCheapest repeatedly inserts the globally cheapest feasible
// (node, vehicle, position) triple, pricing each insertion by its travel and
// lateness delta. Nodes with no feasible slot stay dropped.
func constructCheapest(ctx context.Context, req *TripRequest, sol *solution, p Params, deadline time.Time) {
	for {
		if ctx.Err() != nil {
			return
		}

		bestDelta := math.MaxInt
		bestNode, bestVehicle := -1, -1
		var bestRoute []int
		var bestEval routeEval

		nodes := make([]int, 0, len(sol.dropped))
		for n := range sol.dropped {
			nodes = append(nodes, n)
		}
		sort.Ints(nodes)

		for _, n := range nodes {
			for v := range sol.routes {
				route := sol.routes[v]
				before := sol.evals[v].cost()
				for pos := 1; pos < len(route); pos++ {
					cand := insertAt(route, pos, n)
					ev, ok := req.evalRoute(v, cand, p)
					if !ok {
						continue
					}
					if delta := ev.cost() - before; delta < bestDelta {
						bestDelta = delta
						bestNode, bestVehicle = n, v
						bestRoute, bestEval = cand, ev
					}
				}
			}
		}

		if bestNode < 0 {
			return
		}

		sol.routes[bestVehicle] = bestRoute
		sol.evals[bestVehicle] = bestEval
		delete(sol.dropped, bestNode)

		if time.Now().After(deadline) {
			return
		}
	}
}

func insertAt(route []int, pos, n int) []int {
	out := make([]int, 0, len(route)+1)
	out = append(out, route[:pos]...)
	out = append(out, n)
	out = append(out, route[pos:]...)
	return out
}

func infeasibleResult(req *TripRequest) TripResult {
	numV := len(req.Starts)
	res := TripResult{
		Routes:     make([][]int, numV),
		Times:      make([][]int, numV),
		ReturnTime: append([]int(nil), req.StartClock...),
	}

	ends := make(map[int]bool, numV)
	for _, e := range req.Ends {
		ends[e] = true
	}
	for n := 0; n < req.Ins.NumLocations(); n++ {
		if !ends[n] {
			res.Dropped = append(res.Dropped, n)
		}
	}
	return res
}

func extractResult(req *TripRequest, sol *solution) TripResult {
	numV := len(req.Starts)
	res := TripResult{
		Routes:     make([][]int, numV),
		Times:      make([][]int, numV),
		ReturnTime: make([]int, numV),
		Feasible:   true,
	}

	for v := 0; v < numV; v++ {
		res.Routes[v] = append([]int(nil), sol.routes[v]...)
		res.Times[v] = append([]int(nil), sol.evals[v].times...)
		res.ReturnTime[v] = sol.evals[v].times[len(sol.evals[v].times)-1]
	}

	for n := range sol.dropped {
		res.Dropped = append(res.Dropped, n)
	}
	sort.Ints(res.Dropped)

	return res
}
