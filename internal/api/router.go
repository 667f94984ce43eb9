// Package api provides the HTTP API for AirLens.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/airlens/airlens/internal/airquality"
	"github.com/airlens/airlens/internal/api/handler"
	"github.com/airlens/airlens/internal/api/middleware"
	"github.com/airlens/airlens/internal/briefing"
	"github.com/airlens/airlens/internal/decision"
	"github.com/airlens/airlens/internal/geo"
	"github.com/airlens/airlens/internal/routing"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version           string
	BuildTime         string
	Logger            zerolog.Logger
	ServiceName       string
	Metrics           *middleware.Metrics
	Engine            *decision.Engine
	AirQualityService *airquality.Service
	RoutingService    *routing.Service
	BriefingService   *briefing.Service
	Locator           *geo.Locator
	ReadinessProbes   []handler.ReadinessProbe
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airlens-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.RequireJSON)          // Reject non-JSON bodies
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.ReadinessProbes...)
	decisionHandler := handler.NewDecisionHandler(cfg.Engine, cfg.AirQualityService)
	airQualityHandler := handler.NewAirQualityHandler(cfg.AirQualityService)
	routeHandler := handler.NewRouteHandler(cfg.RoutingService)
	briefingHandler := handler.NewBriefingHandler(cfg.BriefingService, cfg.AirQualityService, cfg.Engine, cfg.Locator)
	geoHandler := handler.NewGeoHandler(cfg.Locator)
	metadataHandler := handler.NewMetadataHandler()

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)   // 30 req/min
	generativeRateLimit := middleware.RateLimitByIP(middleware.GenerativeRateLimit) // 10 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)     // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (no rate limit, probed by infrastructure)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Metadata endpoints
		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/enums", metadataHandler.GetEnums)
		})

		// Decision endpoints
		r.With(expensiveRateLimit).Post("/decisions:evaluate", decisionHandler.Evaluate)
		r.With(standardRateLimit).Get("/decisions/activities", decisionHandler.ListActivities)

		// Air quality endpoints
		r.Route("/air-quality", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/current", airQualityHandler.GetCurrent)
			r.Get("/forecast", airQualityHandler.GetForecast)
		})

		// Routing endpoint - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/routes:compute", routeHandler.ComputeRoutes)

		// Briefing endpoint - LLM-backed, strictest rate limiting
		r.With(generativeRateLimit).Post("/briefings:generate", briefingHandler.Generate)

		// Geolocation endpoint
		r.With(standardRateLimit).Get("/geo/locate", geoHandler.Locate)
	})

	return r
}
