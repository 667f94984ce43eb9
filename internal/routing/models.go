// Package routing computes commute routes and annotates them with air
// quality exposure along the path.
package routing

import "errors"

// Routing errors.
var (
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrNoRoute             = errors.New("no route found")
	ErrProviderUnavailable = errors.New("routing provider unavailable")
)

// Mode represents a travel mode.
type Mode string

const (
	ModeWalk    Mode = "WALK"
	ModeBicycle Mode = "BICYCLE"
	ModeDrive   Mode = "DRIVE"
	ModeTransit Mode = "TRANSIT"
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// RouteRequest describes a commute route computation.
type RouteRequest struct {
	Origin      Point
	Destination Point
	Mode        Mode
}

// Route is one computed route alternative.
type Route struct {
	// DistanceMeters is the total route distance.
	DistanceMeters int

	// DurationSeconds is the estimated travel time.
	DurationSeconds int

	// EncodedPolyline is the route geometry in Google polyline encoding.
	EncodedPolyline string
}

// ExposureSummary describes air quality exposure along a route.
type ExposureSummary struct {
	// AverageAQI over the sampled path points.
	AverageAQI float64

	// PeakAQI is the worst sampled reading.
	PeakAQI float64

	// SampleCount is the number of path points sampled.
	SampleCount int

	// SampledPolyline is the downsampled path the exposure readings were
	// taken along, in Google polyline encoding. Lets clients draw the
	// exposure overlay without re-deriving the sampling.
	SampledPolyline string

	// Score is the 0-100 exposure risk for the commute activity profile.
	Score int

	// Level classifies Score (safe/caution/unhealthy/dangerous).
	Level string
}

// RoutePlan is a route plus its exposure annotation. Exposure is nil when
// air quality data was unavailable for the whole path.
type RoutePlan struct {
	Route    Route
	Exposure *ExposureSummary
}
