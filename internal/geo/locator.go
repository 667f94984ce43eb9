// Package geo resolves a caller's location through a fallback chain:
// client-supplied coordinates, then IP-based lookup, then a configured
// default.
package geo

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Lookup errors.
var (
	ErrLookupFailed = errors.New("ip location lookup failed")
)

// Source identifies how a location was resolved.
type Source string

const (
	SourceClient  Source = "client"
	SourceIP      Source = "ip"
	SourceDefault Source = "default"
)

// Location is a resolved position with its provenance.
type Location struct {
	Lat    float64
	Lon    float64
	City   string
	Source Source
}

// IPProvider defines the interface for IP-based location providers.
type IPProvider interface {
	// Locate resolves an IP address to a location.
	Locate(ctx context.Context, ip string) (*Location, error)

	// Name returns the provider name for logging.
	Name() string
}

// LocatorConfig holds configuration for the locator.
type LocatorConfig struct {
	// IPProvider resolves locations from IP addresses. Optional.
	IPProvider IPProvider

	// Default is the fallback location when no other source resolves.
	// Defaults to central Taipei.
	Default Location

	// Logger for locator operations.
	Logger zerolog.Logger
}

// Locator resolves locations with sequential fallback. Each step either
// resolves or falls through; there is no retry beyond what the provider's
// own HTTP client does.
type Locator struct {
	ipProvider IPProvider
	fallback   Location
	logger     zerolog.Logger
}

// NewLocator creates a new locator.
func NewLocator(cfg LocatorConfig) *Locator {
	fallback := cfg.Default
	if fallback.Lat == 0 && fallback.Lon == 0 {
		fallback = Location{Lat: 25.0330, Lon: 121.5654, City: "Taipei"}
	}
	fallback.Source = SourceDefault

	return &Locator{
		ipProvider: cfg.IPProvider,
		fallback:   fallback,
		logger:     cfg.Logger,
	}
}

// Resolve returns the best available location. Client coordinates win when
// supplied; otherwise the caller's IP is looked up; otherwise the default.
func (l *Locator) Resolve(ctx context.Context, clientLat, clientLon *float64, ip string) Location {
	if clientLat != nil && clientLon != nil {
		return Location{Lat: *clientLat, Lon: *clientLon, Source: SourceClient}
	}

	if l.ipProvider != nil && ip != "" {
		loc, err := l.ipProvider.Locate(ctx, ip)
		if err == nil {
			loc.Source = SourceIP
			return *loc
		}
		l.logger.Debug().Err(err).Str("ip", ip).Msg("ip lookup failed, using default location")
	}

	return l.fallback
}
