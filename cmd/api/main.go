// Package main provides the entrypoint for the AirLens API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/airlens/airlens/internal/airquality"
	aqgoogle "github.com/airlens/airlens/internal/airquality/google"
	"github.com/airlens/airlens/internal/api"
	"github.com/airlens/airlens/internal/api/handler"
	"github.com/airlens/airlens/internal/api/middleware"
	"github.com/airlens/airlens/internal/briefing"
	"github.com/airlens/airlens/internal/briefing/gemini"
	"github.com/airlens/airlens/internal/decision"
	"github.com/airlens/airlens/internal/geo"
	"github.com/airlens/airlens/internal/geo/ipapi"
	"github.com/airlens/airlens/internal/provider/resilience"
	"github.com/airlens/airlens/internal/routing"
	routesgoogle "github.com/airlens/airlens/internal/routing/google"
	"github.com/airlens/airlens/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airlens-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirLens API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	sampleRatio := 0.0
	if v := os.Getenv("OTEL_TRACE_SAMPLE_RATIO"); v != "" {
		ratio, parseErr := strconv.ParseFloat(v, 64)
		if parseErr != nil {
			log.Warn().Str("value", v).Msg("invalid OTEL_TRACE_SAMPLE_RATIO, sampling everything")
		} else {
			sampleRatio = ratio
		}
	}

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:      serviceName,
		ServiceVersion:   Version,
		Environment:      env,
		OTLPEndpoint:     otlpEndpoint,
		Enabled:          telemetryEnabled,
		TraceSampleRatio: sampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Provider metrics shared by the caching services
	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Decision engine. RISK_SCORING=legacy selects the older blend
	// weights with the good-range cap.
	scoring := decision.DefaultScoringConfig()
	if os.Getenv("RISK_SCORING") == "legacy" {
		scoring = decision.LegacyScoringConfig()
		log.Info().Msg("using legacy risk scoring")
	}
	engine := decision.NewEngine(decision.Config{Scoring: scoring})
	log.Info().Msg("decision engine initialized")

	// Google Air Quality provider
	mapsAPIKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if mapsAPIKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - air quality and routing providers will fail")
	}

	aqHTTPClient := newProviderClient(aqgoogle.ProviderName)
	aqProvider := aqgoogle.NewClient(aqgoogle.ClientConfig{
		APIKey:     mapsAPIKey,
		HTTPClient: aqHTTPClient,
	})

	airQualityService := airquality.NewService(airquality.ServiceConfig{
		Provider:  aqProvider,
		Simulator: airquality.NewSimulator(airquality.SimulatorConfig{}),
		Logger:    log,
		Metrics:   providerMetrics,
	})
	log.Info().Msg("air quality service initialized")

	// Google Routes provider
	routesHTTPClient := newProviderClient(routesgoogle.ProviderName)
	routesProvider := routesgoogle.NewClient(routesgoogle.ClientConfig{
		APIKey:     mapsAPIKey,
		HTTPClient: routesHTTPClient,
	})

	routingService := routing.NewService(routing.ServiceConfig{
		Provider:   routesProvider,
		AirQuality: airQualityService,
		Engine:     engine,
		Logger:     log,
		Metrics:    providerMetrics,
	})
	log.Info().Msg("routing service initialized")

	// Gemini briefing generator
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set - briefing endpoint will fail")
	}

	geminiHTTPClient := newProviderClient(gemini.ProviderName)
	generator := gemini.NewClient(gemini.ClientConfig{
		APIKey:     geminiAPIKey,
		HTTPClient: geminiHTTPClient,
	})

	briefingService := briefing.NewService(briefing.ServiceConfig{
		Generator: generator,
		Logger:    log,
		Metrics:   providerMetrics,
	})
	log.Info().Msg("briefing service initialized")

	// IP geolocation with Taipei fallback
	ipHTTPClient := newProviderClient(ipapi.ProviderName)
	locator := geo.NewLocator(geo.LocatorConfig{
		IPProvider: ipapi.NewClient(ipapi.ClientConfig{HTTPClient: ipHTTPClient}),
		Logger:     log,
	})
	log.Info().Msg("geo locator initialized")

	// Readiness reports circuit breaker state per provider
	probes := make([]handler.ReadinessProbe, 0, resilience.GlobalRegistry.ProviderCount())
	for _, name := range resilience.GlobalRegistry.GetProviderNames() {
		probes = append(probes, handler.ReadinessProbe{
			Name: name,
			Check: func(providerName string) func(context.Context) error {
				return func(context.Context) error {
					health := resilience.GlobalRegistry.GetHealth(providerName)
					if health != nil && health.IsUnhealthy() {
						return fmt.Errorf("circuit open: %s", health.LastError)
					}
					return nil
				}
			}(name),
		})
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           metrics,
		Engine:            engine,
		AirQualityService: airQualityService,
		RoutingService:    routingService,
		BriefingService:   briefingService,
		Locator:           locator,
		ReadinessProbes:   probes,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// newProviderClient builds a resilient HTTP client that reports health
// through the global registry, and registers it there.
func newProviderClient(name string) *resilience.Client {
	cfg := resilience.DefaultClientConfig(name)
	cfg.Registry = resilience.GlobalRegistry
	client := resilience.NewClient(cfg)
	resilience.GlobalRegistry.Register(name, client)
	return client
}
