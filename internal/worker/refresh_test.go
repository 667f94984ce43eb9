package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlens/airlens/internal/airquality"
	"github.com/airlens/airlens/internal/worker"
)

type countingProvider struct {
	calls int64
	fail  bool
}

func (p *countingProvider) CurrentConditions(_ context.Context, lat, lon float64) (*airquality.Conditions, error) {
	atomic.AddInt64(&p.calls, 1)
	if p.fail {
		return nil, errors.New("provider down")
	}
	return &airquality.Conditions{
		AQI:       70,
		Lat:       lat,
		Lon:       lon,
		FetchedAt: time.Now(),
		Provider:  "counting",
	}, nil
}

func (p *countingProvider) HourlyForecast(context.Context, float64, float64, int) (*airquality.Forecast, error) {
	return nil, airquality.ErrNoData
}

func (p *countingProvider) Name() string { return "counting" }

func newTestService(provider airquality.Provider) *airquality.Service {
	return airquality.NewService(airquality.ServiceConfig{
		Provider:  provider,
		Simulator: airquality.NewSimulator(airquality.SimulatorConfig{}),
		Logger:    zerolog.Nop(),
	})
}

func TestDefaultRefreshConfig(t *testing.T) {
	cfg := worker.DefaultRefreshConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.RefreshConditions)
	assert.True(t, cfg.RefreshForecast)
	assert.Equal(t, 12, cfg.ForecastHours)
	assert.NotEmpty(t, cfg.Targets)
}

func TestDefaultRefreshTargets(t *testing.T) {
	targets := worker.DefaultRefreshTargets()

	// Should cover multiple metropolitan areas
	assert.GreaterOrEqual(t, len(targets), 5)

	var taipei *worker.RefreshTarget
	for i := range targets {
		if targets[i].Name == "Taipei" {
			taipei = &targets[i]
			break
		}
	}
	require.NotNil(t, taipei, "Taipei should be in targets")
	assert.Equal(t, 1, taipei.Priority)
	assert.GreaterOrEqual(t, len(taipei.Points), 2)
}

func TestRefreshConfig_AllPoints(t *testing.T) {
	cfg := worker.RefreshConfig{
		Targets: []worker.RefreshTarget{
			{
				Name:   "City A",
				Points: []worker.Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}},
			},
			{
				Name:   "City B",
				Points: []worker.Point{{Lat: 3, Lon: 3}},
			},
		},
	}

	points := cfg.AllPoints()
	assert.Len(t, points, 3)
	assert.Equal(t, 3, cfg.TotalPoints())
}

func TestRefreshConfig_TotalPoints(t *testing.T) {
	cfg := worker.DefaultRefreshConfig()
	total := cfg.TotalPoints()

	assert.Greater(t, total, 10)
}

func TestRefreshJob_Run_WarmsEveryPoint(t *testing.T) {
	provider := &countingProvider{}
	service := newTestService(provider)

	cfg := worker.RefreshConfig{
		Targets: []worker.RefreshTarget{
			{
				Name: "Test",
				Points: []worker.Point{
					{Lat: 25.03, Lon: 121.56},
					{Lat: 24.15, Lon: 120.67},
				},
			},
		},
		Concurrency:       2,
		Timeout:           5 * time.Second,
		RefreshConditions: true,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:            cfg,
		Logger:            zerolog.Nop(),
		AirQualityService: service,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 2, result.TotalPoints)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, int64(2), atomic.LoadInt64(&provider.calls))
}

func TestRefreshJob_Run_ForecastFallsBackToSimulator(t *testing.T) {
	provider := &countingProvider{}
	service := newTestService(provider)

	cfg := worker.RefreshConfig{
		Targets: []worker.RefreshTarget{
			{
				Name:   "Test",
				Points: []worker.Point{{Lat: 25.03, Lon: 121.56}},
			},
		},
		Concurrency:       1,
		Timeout:           5 * time.Second,
		RefreshConditions: true,
		RefreshForecast:   true,
		ForecastHours:     6,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:            cfg,
		Logger:            zerolog.Nop(),
		AirQualityService: service,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 1, result.Successful)

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.ForecastRefresh)
	assert.Equal(t, int64(1), metrics.SimulatedForecasts)
}

func TestRefreshJob_Run_ProviderFailure(t *testing.T) {
	provider := &countingProvider{fail: true}
	service := newTestService(provider)

	cfg := worker.RefreshConfig{
		Targets: []worker.RefreshTarget{
			{
				Name:   "Test",
				Points: []worker.Point{{Lat: 25.03, Lon: 121.56}},
			},
		},
		Concurrency:       1,
		Timeout:           5 * time.Second,
		RefreshConditions: true,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:            cfg,
		Logger:            zerolog.Nop(),
		AirQualityService: service,
	})

	result := job.Run(context.Background())

	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "conditions", result.Errors[0].Operation)
}

func TestRefreshJob_Run_NoServices(t *testing.T) {
	cfg := worker.RefreshConfig{
		Targets: []worker.RefreshTarget{
			{
				Name:   "Test",
				Points: []worker.Point{{Lat: 25.03, Lon: 121.56}},
			},
		},
		Concurrency:       1,
		Timeout:           1 * time.Second,
		RefreshConditions: true,
		RefreshForecast:   true,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config: cfg,
		Logger: zerolog.Nop(),
	})

	result := job.Run(context.Background())

	// Should complete without panicking
	assert.NotNil(t, result)
	assert.Equal(t, 1, result.TotalPoints)
	assert.Greater(t, result.Duration, time.Duration(0))
}

func TestRefreshJob_GetMetrics(t *testing.T) {
	provider := &countingProvider{}
	service := newTestService(provider)

	cfg := worker.RefreshConfig{
		Targets: []worker.RefreshTarget{
			{
				Name:   "Test",
				Points: []worker.Point{{Lat: 25.03, Lon: 121.56}},
			},
		},
		Concurrency:       1,
		Timeout:           5 * time.Second,
		RefreshConditions: true,
	}

	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:            cfg,
		Logger:            zerolog.Nop(),
		AirQualityService: service,
	})

	job.Run(context.Background())

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRefreshes)
	assert.Equal(t, int64(1), metrics.SuccessfulRefresh)
	assert.Equal(t, int64(1), metrics.ConditionsRefresh)
	assert.False(t, metrics.LastRefreshAt.IsZero())

	snapshot := job.MetricsSnapshot()
	assert.Equal(t, int64(1), snapshot["total_refreshes"])
}
