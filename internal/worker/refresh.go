package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/airlens/airlens/internal/airquality"
)

// RefreshJob warms the air quality caches for the configured targets so
// interactive requests hit warm grid cells.
type RefreshJob struct {
	config RefreshConfig
	logger zerolog.Logger

	airQualityService *airquality.Service

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRefreshes     int64
	SuccessfulRefresh  int64
	FailedRefreshes    int64
	ConditionsRefresh  int64
	ForecastRefresh    int64
	SimulatedForecasts int64

	// Timings
	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config            RefreshConfig
	Logger            zerolog.Logger
	AirQualityService *airquality.Service
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	config := cfg.Config
	if len(config.Targets) == 0 {
		config = DefaultRefreshConfig()
	}
	if config.ForecastHours == 0 {
		config.ForecastHours = 12
	}

	return &RefreshJob{
		config:            config,
		logger:            cfg.Logger,
		airQualityService: cfg.AirQualityService,
		metrics:           &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh operation.
type RefreshResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalPoints int
	Successful  int
	Failed      int
	Errors      []RefreshError
}

// RefreshError represents an error during refresh.
type RefreshError struct {
	Operation string
	Point     Point
	Error     string
}

// Run executes the refresh job for all configured targets.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{
		StartTime:   startTime,
		TotalPoints: j.config.TotalPoints(),
	}

	j.logger.Info().
		Int("total_points", result.TotalPoints).
		Int("concurrency", j.config.Concurrency).
		Msg("starting cache refresh job")

	points := j.config.AllPoints()

	pointsChan := make(chan Point, len(points))
	resultsChan := make(chan pointResult, len(points))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, pointsChan, resultsChan)
		}()
	}

	for _, p := range points {
		pointsChan <- p
	}
	close(pointsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for pr := range resultsChan {
		if pr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Errors = append(result.Errors, pr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("cache refresh job completed")

	return result
}

type pointResult struct {
	point   Point
	success bool
	errors  []RefreshError
}

func (j *RefreshJob) refreshWorker(ctx context.Context, points <-chan Point, results chan<- pointResult) {
	for point := range points {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.refreshPoint(ctx, point)
		}
	}
}

func (j *RefreshJob) refreshPoint(ctx context.Context, point Point) pointResult {
	result := pointResult{
		point:   point,
		success: true,
	}

	pointCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if j.config.RefreshConditions && j.airQualityService != nil {
		if err := j.airQualityService.Refresh(pointCtx, point.Lat, point.Lon); err != nil {
			result.errors = append(result.errors, RefreshError{
				Operation: "conditions",
				Point:     point,
				Error:     err.Error(),
			})
			result.success = false
		} else {
			atomic.AddInt64(&j.metrics.ConditionsRefresh, 1)
		}
	}

	if j.config.RefreshForecast && j.airQualityService != nil {
		fc, err := j.airQualityService.GetForecast(pointCtx, point.Lat, point.Lon, j.config.ForecastHours)
		if err != nil {
			result.errors = append(result.errors, RefreshError{
				Operation: "forecast",
				Point:     point,
				Error:     err.Error(),
			})
			// A failed forecast warm is tolerable: requests fall back to
			// the simulator anyway.
		} else {
			atomic.AddInt64(&j.metrics.ForecastRefresh, 1)
			if fc.Simulated {
				atomic.AddInt64(&j.metrics.SimulatedForecasts, 1)
			}
		}
	}

	return result
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:      j.metrics.TotalRefreshes,
		SuccessfulRefresh:   j.metrics.SuccessfulRefresh,
		FailedRefreshes:     j.metrics.FailedRefreshes,
		ConditionsRefresh:   atomic.LoadInt64(&j.metrics.ConditionsRefresh),
		ForecastRefresh:     atomic.LoadInt64(&j.metrics.ForecastRefresh),
		SimulatedForecasts:  atomic.LoadInt64(&j.metrics.SimulatedForecasts),
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_refreshes":       m.TotalRefreshes,
		"successful_refreshes":  m.SuccessfulRefresh,
		"failed_refreshes":      m.FailedRefreshes,
		"conditions_refreshes":  m.ConditionsRefresh,
		"forecast_refreshes":    m.ForecastRefresh,
		"simulated_forecasts":   m.SimulatedForecasts,
		"last_refresh_at":       m.LastRefreshAt,
		"last_refresh_duration": m.LastRefreshDuration.String(),
		"total_duration":        m.TotalDuration.String(),
	}
}
