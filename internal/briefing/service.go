package briefing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MetricsRecorder receives cache and generator call outcomes. Optional;
// satisfied by middleware.ProviderMetrics.
type MetricsRecorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// Generator defines the interface for narrative text generators.
type Generator interface {
	// Generate produces narrative text for a prompt.
	Generate(ctx context.Context, prompt string) (text, model string, err error)

	// Name returns the generator name for logging.
	Name() string
}

// ServiceConfig holds configuration for the briefing service.
type ServiceConfig struct {
	// Generator is the narrative text generator.
	Generator Generator

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache briefings (default: 15 minutes).
	// Narratives change as slowly as the underlying conditions do.
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.05).
	CacheGridSize float64

	// AQIBucketSize groups nearby AQI readings into one cache entry
	// (default: 10). A reading of 82 and 88 get the same briefing.
	AQIBucketSize float64

	// Metrics records cache and generator call outcomes. Optional.
	Metrics MetricsRecorder
}

// Service generates briefings with caching keyed by location cell and AQI
// bucket, so repeated map interactions do not re-invoke the generator.
type Service struct {
	generator     Generator
	logger        zerolog.Logger
	cacheTTL      time.Duration
	cacheGridSize float64
	aqiBucketSize float64
	metrics       MetricsRecorder

	mu    sync.RWMutex
	cache map[string]*cachedBriefing
}

type cachedBriefing struct {
	briefing  *Briefing
	expiresAt time.Time
}

// NewService creates a new briefing service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.05
	}

	aqiBucketSize := cfg.AQIBucketSize
	if aqiBucketSize == 0 {
		aqiBucketSize = 10
	}

	return &Service{
		generator:     cfg.Generator,
		logger:        cfg.Logger,
		cacheTTL:      cacheTTL,
		cacheGridSize: cacheGridSize,
		aqiBucketSize: aqiBucketSize,
		metrics:       cfg.Metrics,
		cache:         make(map[string]*cachedBriefing),
	}
}

// Generate returns a narrative briefing for the request, serving a cached
// briefing for the same location cell and AQI bucket when available.
func (s *Service) Generate(ctx context.Context, req Request) (*Briefing, error) {
	key := s.cacheKey(req)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		if s.metrics != nil {
			s.metrics.RecordCacheHit(s.generator.Name(), "generate")
		}
		out := *cached.briefing
		out.Cached = true
		return &out, nil
	}
	s.mu.RUnlock()
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.generator.Name(), "generate")
	}

	start := time.Now()
	text, model, err := s.generator.Generate(ctx, buildPrompt(req))
	if s.metrics != nil {
		s.metrics.RecordRequest(s.generator.Name(), "generate", time.Since(start), err)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("generator", s.generator.Name()).Msg("briefing generation failed")
		return nil, fmt.Errorf("generate briefing: %w", ErrGeneratorUnavailable)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyBriefing
	}

	briefing := &Briefing{
		ID:          "brf_" + uuid.New().String()[:22],
		Text:        text,
		Model:       model,
		GeneratedAt: time.Now(),
	}

	s.mu.Lock()
	s.cache[key] = &cachedBriefing{briefing: briefing, expiresAt: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	s.logger.Info().
		Str("briefing_id", briefing.ID).
		Str("model", model).
		Int("chars", len(text)).
		Msg("briefing generated")

	return briefing, nil
}

// InvalidateCache clears all cached briefings.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedBriefing)
}

// cacheKey buckets the request by grid cell and AQI band.
func (s *Service) cacheKey(req Request) string {
	cellLat := math.Floor(req.Lat/s.cacheGridSize) * s.cacheGridSize
	cellLon := math.Floor(req.Lon/s.cacheGridSize) * s.cacheGridSize
	bucket := math.Floor(req.AQI / s.aqiBucketSize)
	locale := req.Locale
	if locale == "" {
		locale = "zh-TW"
	}
	return fmt.Sprintf("%.2f:%.2f|%.0f|%s", cellLat, cellLon, bucket, locale)
}

// buildPrompt assembles the generator prompt from the request.
func buildPrompt(req Request) string {
	var b strings.Builder

	locale := req.Locale
	if locale == "" {
		locale = "zh-TW"
	}

	fmt.Fprintf(&b, "You are an air quality advisor. Write a short briefing (3-4 sentences) in locale %s.\n", locale)
	if req.LocationName != "" {
		fmt.Fprintf(&b, "Location: %s\n", req.LocationName)
	}
	fmt.Fprintf(&b, "Current AQI: %.0f\n", req.AQI)
	if req.DominantPollutant != "" {
		fmt.Fprintf(&b, "Dominant pollutant: %s\n", req.DominantPollutant)
	}

	if len(req.Highlights) > 0 {
		b.WriteString("Activity assessments:\n")
		for _, h := range req.Highlights {
			fmt.Fprintf(&b, "- %s: level=%s score=%d advice=%s\n", h.Name, h.Level, h.Score, h.Recommendation)
		}
	}

	b.WriteString("Summarize conditions, call out the riskiest activities, and end with one practical tip. Plain prose, no markdown.")
	return b.String()
}
