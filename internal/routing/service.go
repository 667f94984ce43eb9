package routing

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airlens/airlens/internal/airquality"
	"github.com/airlens/airlens/internal/decision"
	"github.com/airlens/airlens/pkg/polyline"
)

// MetricsRecorder receives cache and provider call outcomes. Optional;
// satisfied by middleware.ProviderMetrics.
type MetricsRecorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// Provider defines the interface for route computation providers.
type Provider interface {
	// ComputeRoutes returns route alternatives for a request.
	ComputeRoutes(ctx context.Context, req RouteRequest) ([]Route, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the route computation provider.
	Provider Provider

	// AirQuality supplies conditions for exposure annotation. Optional;
	// when nil, routes are returned without exposure summaries.
	AirQuality *airquality.Service

	// Engine scores exposure for the commute activity profile. Optional.
	Engine *decision.Engine

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache computed routes (default: 5 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.005).
	// Origin/destination pairs within the same cells share cached routes.
	CacheGridSize float64

	// ExposureSampleMeters is the path sampling interval for exposure
	// annotation (default: 500m).
	ExposureSampleMeters float64

	// MaxExposureSamples caps how many path points are sampled per route
	// (default: 8). Each sample costs one conditions lookup.
	MaxExposureSamples int

	// Metrics records cache and provider call outcomes. Optional.
	Metrics MetricsRecorder
}

// Service computes commute routes with exposure annotation and caching.
type Service struct {
	provider             Provider
	airQuality           *airquality.Service
	engine               *decision.Engine
	logger               zerolog.Logger
	cacheTTL             time.Duration
	cacheGridSize        float64
	exposureSampleMeters float64
	maxExposureSamples   int
	metrics              MetricsRecorder

	mu    sync.RWMutex
	cache map[string]*cachedPlans
}

type cachedPlans struct {
	plans     []RoutePlan
	expiresAt time.Time
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.005
	}

	sampleMeters := cfg.ExposureSampleMeters
	if sampleMeters == 0 {
		sampleMeters = 500
	}

	maxSamples := cfg.MaxExposureSamples
	if maxSamples == 0 {
		maxSamples = 8
	}

	return &Service{
		provider:             cfg.Provider,
		airQuality:           cfg.AirQuality,
		engine:               cfg.Engine,
		logger:               cfg.Logger,
		cacheTTL:             cacheTTL,
		cacheGridSize:        cacheGridSize,
		exposureSampleMeters: sampleMeters,
		maxExposureSamples:   maxSamples,
		metrics:              cfg.Metrics,
		cache:                make(map[string]*cachedPlans),
	}
}

// ComputeRoutes returns route plans for a commute request, annotated with
// air quality exposure when conditions data is available.
func (s *Service) ComputeRoutes(ctx context.Context, req RouteRequest) ([]RoutePlan, error) {
	if err := validatePoint(req.Origin); err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}
	if err := validatePoint(req.Destination); err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	if req.Mode == "" {
		req.Mode = ModeWalk
	}

	key := s.cacheKey(req)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().Str("cache_key", key).Msg("route cache hit")
		if s.metrics != nil {
			s.metrics.RecordCacheHit(s.provider.Name(), "routes")
		}
		return cached.plans, nil
	}
	s.mu.RUnlock()
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.provider.Name(), "routes")
	}

	start := time.Now()
	routes, err := s.provider.ComputeRoutes(ctx, req)
	if s.metrics != nil {
		s.metrics.RecordRequest(s.provider.Name(), "routes", time.Since(start), err)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("provider", s.provider.Name()).Msg("route computation failed")
		return nil, fmt.Errorf("compute routes: %w", err)
	}
	if len(routes) == 0 {
		return nil, ErrNoRoute
	}

	plans := make([]RoutePlan, 0, len(routes))
	for _, route := range routes {
		plans = append(plans, RoutePlan{
			Route:    route,
			Exposure: s.annotateExposure(ctx, route),
		})
	}

	s.mu.Lock()
	s.cache[key] = &cachedPlans{plans: plans, expiresAt: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	s.logger.Info().
		Int("routes", len(plans)).
		Str("mode", string(req.Mode)).
		Msg("routes computed")

	return plans, nil
}

// annotateExposure samples the route geometry against current air quality.
// Returns nil when no conditions could be fetched for any sample point.
func (s *Service) annotateExposure(ctx context.Context, route Route) *ExposureSummary {
	if s.airQuality == nil {
		return nil
	}

	path := polyline.Decode(route.EncodedPolyline)
	if len(path) == 0 {
		return nil
	}

	samples := polyline.SampleEvery(path, s.exposureSampleMeters)
	samples = polyline.Downsample(samples, s.maxExposureSamples)

	var (
		sum   float64
		peak  float64
		count int
	)
	for _, p := range samples {
		conditions, err := s.airQuality.GetConditions(ctx, p.Lat, p.Lng)
		if err != nil {
			continue
		}
		sum += conditions.AQI
		if conditions.AQI > peak {
			peak = conditions.AQI
		}
		count++
	}
	if count == 0 {
		return nil
	}

	summary := &ExposureSummary{
		AverageAQI:      sum / float64(count),
		PeakAQI:         peak,
		SampleCount:     count,
		SampledPolyline: polyline.Encode(samples),
	}

	if s.engine != nil {
		activity, ok := decision.FindActivity(s.engine.Catalog(), "commute")
		if !ok {
			// Exposure still wants a score when the catalog was customized
			// without a commute profile.
			activity = decision.ActivityTemplate{
				ID:              "commute",
				Name:            "通勤",
				BaseRiskFactor:  0.5,
				DurationMinutes: route.DurationSeconds / 60,
				Intensity:       decision.IntensityMedium,
			}
		}
		score := s.engine.Score(summary.AverageAQI, activity, nil)
		summary.Score = score.Score
		summary.Level = string(score.Level)
	}

	return summary
}

// cacheKey snaps origin and destination to grid cells plus the mode.
func (s *Service) cacheKey(req RouteRequest) string {
	snap := func(v float64) float64 {
		return math.Floor(v/s.cacheGridSize) * s.cacheGridSize
	}
	return fmt.Sprintf("%.4f:%.4f|%.4f:%.4f|%s",
		snap(req.Origin.Lat), snap(req.Origin.Lon),
		snap(req.Destination.Lat), snap(req.Destination.Lon),
		req.Mode)
}

func validatePoint(p Point) error {
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
