package models

// GeoLocation is the response for the geolocation endpoint.
type GeoLocation struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	City   string  `json:"city,omitempty"`
	Source string  `json:"source"`
}
