package domain

// Rider is one delivery agent with a fixed-capacity vehicle.
type Rider struct {
	ID        string
	Capacity  int
	StartTime int
}
