package airquality

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Provider defines the interface for air quality data providers.
type Provider interface {
	// CurrentConditions fetches the current conditions for a location.
	CurrentConditions(ctx context.Context, lat, lon float64) (*Conditions, error)

	// HourlyForecast fetches an hourly AQI forecast for a location.
	// Providers without forecast support return ErrNoData.
	HourlyForecast(ctx context.Context, lat, lon float64, hours int) (*Forecast, error)

	// Name returns the provider name for logging.
	Name() string
}

// MetricsRecorder receives cache and provider call outcomes. Optional;
// satisfied by middleware.ProviderMetrics.
type MetricsRecorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// ServiceConfig holds configuration for the air quality service.
type ServiceConfig struct {
	// Provider is the air quality data provider.
	Provider Provider

	// Simulator generates forecasts when the provider has none. Optional.
	Simulator *Simulator

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache conditions per grid cell (default: 10 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.01 ~ 1.1km).
	// Points within the same grid cell share cached data.
	CacheGridSize float64

	// StaleIfErrorTTL allows serving stale data on provider errors (default: 30 minutes).
	StaleIfErrorTTL time.Duration

	// Metrics records cache and provider call outcomes. Optional.
	Metrics MetricsRecorder
}

// Service provides air quality data with grid-cell caching.
type Service struct {
	provider        Provider
	simulator       *Simulator
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	metrics         MetricsRecorder

	mu           sync.RWMutex
	conditions   map[string]*cachedConditions
	forecasts    map[string]*cachedForecast
	lastCleanup  time.Time
	cleanupEvery time.Duration
}

type cachedConditions struct {
	conditions *Conditions
	expiresAt  time.Time
}

type cachedForecast struct {
	forecast  *Forecast
	expiresAt time.Time
}

// NewService creates a new air quality service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.01 // ~1.1km at equator
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		simulator:       cfg.Simulator,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		staleIfErrorTTL: staleIfErrorTTL,
		metrics:         cfg.Metrics,
		conditions:      make(map[string]*cachedConditions),
		forecasts:       make(map[string]*cachedForecast),
		cleanupEvery:    5 * time.Minute,
	}
}

// GetConditions returns current conditions for a location, using a cached
// report for the same grid cell when available.
func (s *Service) GetConditions(ctx context.Context, lat, lon float64) (*Conditions, error) {
	key := s.gridKey(lat, lon)

	s.mu.RLock()
	if cached, ok := s.conditions[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().Str("cell", key).Msg("conditions cache hit")
		s.recordCacheHit("conditions")
		return cached.conditions, nil
	}
	s.mu.RUnlock()
	s.recordCacheMiss("conditions")

	start := time.Now()
	conditions, err := s.provider.CurrentConditions(ctx, lat, lon)
	s.recordRequest("conditions", time.Since(start), err)
	if err != nil {
		// Serve stale data within the error grace window.
		s.mu.RLock()
		cached, ok := s.conditions[key]
		s.mu.RUnlock()
		if ok && time.Now().Before(cached.conditions.FetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Err(err).
				Time("fetched_at", cached.conditions.FetchedAt).
				Msg("serving stale air quality data due to provider error")
			return cached.conditions, nil
		}
		s.logger.Error().Err(err).Msg("failed to fetch air quality conditions")
		return nil, fmt.Errorf("fetch conditions: %w", ErrProviderUnavailable)
	}

	s.mu.Lock()
	s.conditions[key] = &cachedConditions{
		conditions: conditions,
		expiresAt:  time.Now().Add(s.cacheTTL),
	}
	s.cleanupLocked()
	s.mu.Unlock()

	s.logger.Info().
		Str("cell", key).
		Float64("aqi", conditions.AQI).
		Str("dominant", conditions.DominantPollutant).
		Msg("air quality conditions refreshed")

	return conditions, nil
}

// GetForecast returns an hourly AQI forecast for a location. When the
// provider carries no forecast data and a simulator is configured, a
// simulated forecast anchored to current conditions is returned instead.
func (s *Service) GetForecast(ctx context.Context, lat, lon float64, hours int) (*Forecast, error) {
	if hours <= 0 {
		hours = 12
	}

	key := fmt.Sprintf("%s|%d", s.gridKey(lat, lon), hours)

	s.mu.RLock()
	if cached, ok := s.forecasts[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.recordCacheHit("forecast")
		return cached.forecast, nil
	}
	s.mu.RUnlock()
	s.recordCacheMiss("forecast")

	start := time.Now()
	forecast, err := s.provider.HourlyForecast(ctx, lat, lon, hours)
	s.recordRequest("forecast", time.Since(start), err)
	if err != nil {
		if s.simulator == nil {
			return nil, fmt.Errorf("fetch forecast: %w", err)
		}

		conditions, condErr := s.GetConditions(ctx, lat, lon)
		if condErr != nil {
			return nil, fmt.Errorf("fetch forecast: %w", err)
		}

		forecast = s.simulator.Forecast(lat, lon, conditions.AQI, hours)
		s.logger.Debug().
			Float64("anchor_aqi", conditions.AQI).
			Int("hours", hours).
			Msg("simulated forecast from current conditions")
	}

	s.mu.Lock()
	s.forecasts[key] = &cachedForecast{
		forecast:  forecast,
		expiresAt: time.Now().Add(s.cacheTTL),
	}
	s.cleanupLocked()
	s.mu.Unlock()

	return forecast, nil
}

// Refresh warms the conditions cache for a location, bypassing any cached
// entry. Used by the background refresh worker.
func (s *Service) Refresh(ctx context.Context, lat, lon float64) error {
	start := time.Now()
	conditions, err := s.provider.CurrentConditions(ctx, lat, lon)
	s.recordRequest("conditions", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("refresh conditions: %w", err)
	}

	key := s.gridKey(lat, lon)
	s.mu.Lock()
	s.conditions[key] = &cachedConditions{
		conditions: conditions,
		expiresAt:  time.Now().Add(s.cacheTTL),
	}
	s.mu.Unlock()
	return nil
}

// InvalidateCache clears all cached conditions and forecasts.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conditions = make(map[string]*cachedConditions)
	s.forecasts = make(map[string]*cachedForecast)
}

func (s *Service) recordCacheHit(operation string) {
	if s.metrics != nil {
		s.metrics.RecordCacheHit(s.provider.Name(), operation)
	}
}

func (s *Service) recordCacheMiss(operation string) {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.provider.Name(), operation)
	}
}

func (s *Service) recordRequest(operation string, duration time.Duration, err error) {
	if s.metrics != nil {
		s.metrics.RecordRequest(s.provider.Name(), operation, duration, err)
	}
}

// gridKey snaps a coordinate to its cache grid cell.
func (s *Service) gridKey(lat, lon float64) string {
	cellLat := math.Floor(lat/s.cacheGridSize) * s.cacheGridSize
	cellLon := math.Floor(lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("%.4f:%.4f", cellLat, cellLon)
}

// cleanupLocked drops expired entries. Caller holds the write lock.
func (s *Service) cleanupLocked() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupEvery {
		return
	}
	s.lastCleanup = now

	for key, cached := range s.conditions {
		if now.After(cached.conditions.FetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.conditions, key)
		}
	}
	for key, cached := range s.forecasts {
		if now.After(cached.expiresAt) {
			delete(s.forecasts, key)
		}
	}
}
