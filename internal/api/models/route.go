package models

// RouteComputeRequest is the request body for computing commute routes.
type RouteComputeRequest struct {
	Origin      *Point `json:"origin" validate:"required"`
	Destination *Point `json:"destination" validate:"required"`
	Mode        Mode   `json:"mode,omitempty"`
}

// ExposureSummary summarizes air quality exposure along a route.
type ExposureSummary struct {
	AverageAQI      float64   `json:"averageAqi"`
	PeakAQI         float64   `json:"peakAqi"`
	SampleCount     int       `json:"sampleCount"`
	SampledPolyline string    `json:"sampledPolyline,omitempty"`
	Score           int       `json:"score"`
	Level           RiskLevel `json:"level"`
}

// RouteOption represents a single route alternative.
type RouteOption struct {
	ID              string           `json:"id"`
	Mode            Mode             `json:"mode"`
	DistanceMeters  int              `json:"distanceMeters"`
	DurationSeconds int              `json:"durationSeconds"`
	Polyline        string           `json:"polyline,omitempty"`
	Exposure        *ExposureSummary `json:"exposure,omitempty"`
}

// RouteComputeResponse is the response for route computation.
type RouteComputeResponse struct {
	GeneratedAt Timestamp     `json:"generatedAt"`
	Routes      []RouteOption `json:"routes"`
}
