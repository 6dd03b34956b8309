package solver

// Instance is a fully numeric routing problem. Index 0 is the depot; indices
// 1..N-1 are orders. PackageVolume is signed: deliveries carry +volume,
// pickups -volume. All times are integer seconds on the same clock as
// StartTime.
//
// RouteLength and LocalSearchMetaheuristic are the optional search extras:
// RouteLength caps the stops per route, LocalSearchMetaheuristic turns on
// guided local search during improvement.
type Instance struct {
	TimeMatrix      [][]int
	PackageVolume   []int
	DeliveryTime    []int
	ServiceTime     []int
	Penalty         []int
	VehicleCapacity []int
	StartTime       []int
	Depot           int

	RouteLength              int
	LocalSearchMetaheuristic string
}

// Params are the clock and penalty constants a solve runs under. They are
// derived from the service configuration once per request.
type Params struct {
	GlobalEndTime     int
	MaxTripTime       int
	WaitAtWarehouse   int
	LatePenaltyPerSec int
	MissPenalty       int
}

func (in *Instance) NumLocations() int { return len(in.TimeMatrix) }

func (in *Instance) NumVehicles() int { return len(in.VehicleCapacity) }

// Extract projects a sub-problem over the given points and vehicles. Index i
// of the result corresponds to points[i] of the receiver; the time matrix and
// every per-node vector shrink accordingly. startTime is the per-vehicle
// clock for the projected instance. The receiver is not modified.
func (in *Instance) Extract(points, vehicles, startTime []int) *Instance {
	out := &Instance{
		TimeMatrix:      make([][]int, len(points)),
		PackageVolume:   make([]int, len(points)),
		DeliveryTime:    make([]int, len(points)),
		ServiceTime:     make([]int, len(points)),
		Penalty:         make([]int, len(points)),
		VehicleCapacity: make([]int, len(vehicles)),
		StartTime:       append([]int(nil), startTime...),
		Depot:           in.Depot,
	}

	for i, src := range points {
		row := make([]int, len(points))
		for j, dst := range points {
			row[j] = in.TimeMatrix[src][dst]
		}
		out.TimeMatrix[i] = row
		out.PackageVolume[i] = in.PackageVolume[src]
		out.DeliveryTime[i] = in.DeliveryTime[src]
		out.ServiceTime[i] = in.ServiceTime[src]
		out.Penalty[i] = in.Penalty[src]
	}

	for i, v := range vehicles {
		out.VehicleCapacity[i] = in.VehicleCapacity[v]
	}

	return out
}

// allVehicles returns 0..V-1.
func allVehicles(v int) []int {
	out := make([]int, v)
	for i := range out {
		out[i] = i
	}
	return out
}
