// Package airquality provides current air quality conditions and hourly
// forecasts with caching on top of an external provider.
package airquality

import (
	"errors"
	"time"
)

// Provider errors.
var (
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
	ErrNoData              = errors.New("no air quality data for location")
)

// PollutantReading is one pollutant concentration within a conditions report.
type PollutantReading struct {
	// Code is the lowercase pollutant code (e.g. "pm25", "o3").
	Code string

	// DisplayName is the human label from the provider.
	DisplayName string

	// Value is the measured concentration.
	Value float64

	// Units is the concentration unit string (e.g. "µg/m³", "ppb").
	Units string
}

// Conditions is a point-in-time air quality report for a location.
type Conditions struct {
	// AQI is the universal AQI value.
	AQI float64

	// Category is the provider's verbal category for the AQI.
	Category string

	// DominantPollutant is the pollutant contributing most to the AQI.
	DominantPollutant string

	// Pollutants holds per-pollutant concentrations, in provider order.
	Pollutants []PollutantReading

	// Lat/Lon is the queried location.
	Lat float64
	Lon float64

	// FetchedAt is when this report was retrieved.
	FetchedAt time.Time

	// Provider identifies the data source.
	Provider string
}

// ForecastSlot is one hourly forecast entry.
type ForecastSlot struct {
	// Time is the slot timestamp.
	Time time.Time

	// AQI is the forecast universal AQI for the slot.
	AQI float64
}

// Forecast is an hourly AQI forecast for a location.
type Forecast struct {
	Lat       float64
	Lon       float64
	Slots     []ForecastSlot
	FetchedAt time.Time

	// Simulated is true when the slots come from the random-walk simulator
	// rather than provider forecast data.
	Simulated bool
}
