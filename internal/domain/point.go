package domain

// Immutable geographic coordinates (longitude, latitude).
type Point struct {
	Longitude float64
	Latitude  float64
}
