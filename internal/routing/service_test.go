package routing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlens/airlens/internal/airquality"
	"github.com/airlens/airlens/internal/decision"
	"github.com/airlens/airlens/internal/routing"
	"github.com/airlens/airlens/pkg/polyline"
)

type fakeRouteProvider struct {
	routes []routing.Route
	err    error
	calls  int
}

func (f *fakeRouteProvider) ComputeRoutes(_ context.Context, _ routing.RouteRequest) ([]routing.Route, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.routes, nil
}

func (f *fakeRouteProvider) Name() string { return "fake" }

type fakeAQProvider struct {
	aqi float64
}

func (f *fakeAQProvider) CurrentConditions(_ context.Context, lat, lon float64) (*airquality.Conditions, error) {
	return &airquality.Conditions{AQI: f.aqi, Lat: lat, Lon: lon}, nil
}

func (f *fakeAQProvider) HourlyForecast(context.Context, float64, float64, int) (*airquality.Forecast, error) {
	return nil, airquality.ErrNoData
}

func (f *fakeAQProvider) Name() string { return "fake-aq" }

func testRoute() routing.Route {
	// Short path through central Taipei.
	path := []polyline.LatLng{
		{Lat: 25.0330, Lng: 121.5654},
		{Lat: 25.0400, Lng: 121.5500},
		{Lat: 25.0478, Lng: 121.5170},
	}
	return routing.Route{
		DistanceMeters:  5200,
		DurationSeconds: 1500,
		EncodedPolyline: polyline.Encode(path),
	}
}

func testRequest() routing.RouteRequest {
	return routing.RouteRequest{
		Origin:      routing.Point{Lat: 25.0330, Lon: 121.5654},
		Destination: routing.Point{Lat: 25.0478, Lon: 121.5170},
		Mode:        routing.ModeBicycle,
	}
}

func TestService_ComputeRoutes_AnnotatesExposure(t *testing.T) {
	aq := airquality.NewService(airquality.ServiceConfig{
		Provider: &fakeAQProvider{aqi: 150},
		Logger:   zerolog.Nop(),
	})
	svc := routing.NewService(routing.ServiceConfig{
		Provider:   &fakeRouteProvider{routes: []routing.Route{testRoute()}},
		AirQuality: aq,
		Engine:     decision.NewEngine(decision.Config{}),
		Logger:     zerolog.Nop(),
	})

	plans, err := svc.ComputeRoutes(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, plans, 1)

	exposure := plans[0].Exposure
	require.NotNil(t, exposure)
	assert.InDelta(t, 150, exposure.AverageAQI, 1e-9)
	assert.InDelta(t, 150, exposure.PeakAQI, 1e-9)
	assert.Greater(t, exposure.SampleCount, 0)
	assert.Greater(t, exposure.Score, 0)
	assert.NotEmpty(t, exposure.Level)

	// The sampled path is returned so clients can draw the exposure overlay.
	require.NotEmpty(t, exposure.SampledPolyline)
	sampled := polyline.Decode(exposure.SampledPolyline)
	require.NotEmpty(t, sampled)
	for _, p := range sampled {
		assert.InDelta(t, 25.04, p.Lat, 0.05)
		assert.InDelta(t, 121.54, p.Lng, 0.05)
	}
}

func TestService_ComputeRoutes_NoAirQualityService(t *testing.T) {
	svc := routing.NewService(routing.ServiceConfig{
		Provider: &fakeRouteProvider{routes: []routing.Route{testRoute()}},
		Logger:   zerolog.Nop(),
	})

	plans, err := svc.ComputeRoutes(context.Background(), testRequest())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Nil(t, plans[0].Exposure)
}

func TestService_ComputeRoutes_CachesResults(t *testing.T) {
	provider := &fakeRouteProvider{routes: []routing.Route{testRoute()}}
	svc := routing.NewService(routing.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	_, err := svc.ComputeRoutes(context.Background(), testRequest())
	require.NoError(t, err)
	_, err = svc.ComputeRoutes(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
}

func TestService_ComputeRoutes_InvalidCoordinates(t *testing.T) {
	svc := routing.NewService(routing.ServiceConfig{
		Provider: &fakeRouteProvider{},
		Logger:   zerolog.Nop(),
	})

	req := testRequest()
	req.Origin.Lat = 95
	_, err := svc.ComputeRoutes(context.Background(), req)
	assert.ErrorIs(t, err, routing.ErrInvalidCoordinates)
}

func TestService_ComputeRoutes_ProviderError(t *testing.T) {
	svc := routing.NewService(routing.ServiceConfig{
		Provider: &fakeRouteProvider{err: errors.New("upstream down")},
		Logger:   zerolog.Nop(),
	})

	_, err := svc.ComputeRoutes(context.Background(), testRequest())
	require.Error(t, err)
}

func TestService_ComputeRoutes_NoRoutes(t *testing.T) {
	svc := routing.NewService(routing.ServiceConfig{
		Provider: &fakeRouteProvider{routes: nil},
		Logger:   zerolog.Nop(),
	})

	_, err := svc.ComputeRoutes(context.Background(), testRequest())
	assert.ErrorIs(t, err, routing.ErrNoRoute)
}

// recordingMetrics is a MetricsRecorder capturing call counts.
type recordingMetrics struct {
	hits     int
	misses   int
	requests int
	lastErr  error
}

func (m *recordingMetrics) RecordRequest(_, _ string, _ time.Duration, err error) {
	m.requests++
	m.lastErr = err
}

func (m *recordingMetrics) RecordCacheHit(_, _ string)  { m.hits++ }
func (m *recordingMetrics) RecordCacheMiss(_, _ string) { m.misses++ }

func TestService_ComputeRoutes_RecordsMetrics(t *testing.T) {
	metrics := &recordingMetrics{}
	svc := routing.NewService(routing.ServiceConfig{
		Provider: &fakeRouteProvider{routes: []routing.Route{testRoute()}},
		Logger:   zerolog.Nop(),
		Metrics:  metrics,
	})

	_, err := svc.ComputeRoutes(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 1, metrics.requests)
	assert.NoError(t, metrics.lastErr)

	_, err = svc.ComputeRoutes(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.requests)
}

func TestService_ComputeRoutes_RecordsProviderError(t *testing.T) {
	metrics := &recordingMetrics{}
	svc := routing.NewService(routing.ServiceConfig{
		Provider: &fakeRouteProvider{err: errors.New("upstream down")},
		Logger:   zerolog.Nop(),
		Metrics:  metrics,
	})

	_, err := svc.ComputeRoutes(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, 1, metrics.requests)
	assert.Error(t, metrics.lastErr)
}
