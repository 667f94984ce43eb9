// Package worker provides background cache warming for AirLens.
package worker

import (
	"time"
)

// RefreshTarget represents a geographic region to refresh.
type RefreshTarget struct {
	// Name is the human-readable name of the target.
	Name string

	// Points are the lat/lon coordinates to refresh.
	// Typically the centers of dense urban districts.
	Points []Point

	// Priority determines refresh order (lower = higher priority).
	Priority int
}

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// RefreshConfig holds configuration for the cache refresh job.
type RefreshConfig struct {
	// Targets are the geographic regions to refresh.
	// If empty, uses DefaultRefreshTargets.
	Targets []RefreshTarget

	// Concurrency is the number of concurrent refresh operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each refresh operation.
	// Default: 30 seconds
	Timeout time.Duration

	// RefreshConditions enables current-conditions cache warming.
	// Default: true
	RefreshConditions bool

	// RefreshForecast enables forecast cache warming.
	// Default: true
	RefreshForecast bool

	// ForecastHours is the forecast horizon to warm (default: 12).
	ForecastHours int
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Targets:           DefaultRefreshTargets(),
		Concurrency:       3,
		Timeout:           30 * time.Second,
		RefreshConditions: true,
		RefreshForecast:   true,
		ForecastHours:     12,
	}
}

// DefaultRefreshTargets returns the default refresh targets for Taiwan.
// Focuses on the dense western metropolitan corridor where most map
// interactions originate.
func DefaultRefreshTargets() []RefreshTarget {
	return []RefreshTarget{
		{
			Name:     "Taipei",
			Priority: 1,
			Points: []Point{
				{Lat: 25.0330, Lon: 121.5654}, // Xinyi
				{Lat: 25.0478, Lon: 121.5170}, // Taipei Main Station
				{Lat: 25.0261, Lon: 121.5435}, // Daan Forest Park
				{Lat: 25.0721, Lon: 121.5248}, // Shilin
			},
		},
		{
			Name:     "New Taipei",
			Priority: 1,
			Points: []Point{
				{Lat: 25.0124, Lon: 121.4628}, // Banqiao
				{Lat: 25.0615, Lon: 121.4426}, // Sanchong
				{Lat: 24.9931, Lon: 121.4521}, // Zhonghe
			},
		},
		{
			Name:     "Taoyuan",
			Priority: 2,
			Points: []Point{
				{Lat: 24.9936, Lon: 121.3010}, // Taoyuan District
				{Lat: 25.0800, Lon: 121.2342}, // Taoyuan Airport
			},
		},
		{
			Name:     "Hsinchu",
			Priority: 2,
			Points: []Point{
				{Lat: 24.8138, Lon: 120.9675}, // Hsinchu City
				{Lat: 24.7736, Lon: 121.0222}, // Science Park
			},
		},
		{
			Name:     "Taichung",
			Priority: 1,
			Points: []Point{
				{Lat: 24.1477, Lon: 120.6736}, // Central District
				{Lat: 24.1651, Lon: 120.6465}, // Fengjia
			},
		},
		{
			Name:     "Tainan",
			Priority: 2,
			Points: []Point{
				{Lat: 22.9999, Lon: 120.2269}, // West Central District
			},
		},
		{
			Name:     "Kaohsiung",
			Priority: 1,
			Points: []Point{
				{Lat: 22.6273, Lon: 120.3014}, // Qianjin
				{Lat: 22.6120, Lon: 120.3040}, // Yancheng
				{Lat: 22.7338, Lon: 120.3346}, // Nanzih industrial area
			},
		},
		{
			Name:     "Keelung",
			Priority: 3,
			Points: []Point{
				{Lat: 25.1276, Lon: 121.7392}, // Keelung City
			},
		},
		{
			Name:     "Hualien",
			Priority: 3,
			Points: []Point{
				{Lat: 23.9769, Lon: 121.6044}, // Hualien City
			},
		},
	}
}

// AllPoints returns all points from all targets, ordered by priority.
func (c RefreshConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints returns the total number of points to refresh.
func (c RefreshConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
