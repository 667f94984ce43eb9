// Package main provides the entrypoint for the AirLens cache refresh worker.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/airlens/airlens/internal/airquality"
	aqgoogle "github.com/airlens/airlens/internal/airquality/google"
	"github.com/airlens/airlens/internal/provider/resilience"
	"github.com/airlens/airlens/internal/worker"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "airlens-worker").
		Str("version", Version).
		Logger()

	log.Info().Msg("starting AirLens worker")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8081"
	}

	mapsAPIKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if mapsAPIKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set - refresh cycles will fail")
	}

	aqClientCfg := resilience.DefaultClientConfig(aqgoogle.ProviderName)
	aqClientCfg.Registry = resilience.GlobalRegistry
	aqHTTPClient := resilience.NewClient(aqClientCfg)
	resilience.GlobalRegistry.Register(aqgoogle.ProviderName, aqHTTPClient)
	aqProvider := aqgoogle.NewClient(aqgoogle.ClientConfig{
		APIKey:     mapsAPIKey,
		HTTPClient: aqHTTPClient,
	})

	airQualityService := airquality.NewService(airquality.ServiceConfig{
		Provider:  aqProvider,
		Simulator: airquality.NewSimulator(airquality.SimulatorConfig{}),
		Logger:    log,
	})

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:            worker.DefaultRefreshConfig(),
		Logger:            log,
		AirQualityService: airQualityService,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Health endpoint exposing refresh metrics.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "OK",
			"time":    time.Now().UTC().Format(time.RFC3339),
			"metrics": refreshJob.MetricsSnapshot(),
		})
	})

	healthServer := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", healthServer.Addr).Msg("health endpoint listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	// Prefer Pub/Sub triggered refreshes when a subscription is configured;
	// otherwise refresh on a fixed interval.
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			log.Info().
				Str("project", projectID).
				Str("subscription", subscription).
				Msg("receiving refresh messages")

			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub receive stopped")
			}
		}()
	} else {
		interval := 15 * time.Minute
		if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				interval = d
			} else {
				log.Warn().Str("value", v).Msg("invalid REFRESH_INTERVAL, using default")
			}
		}

		go func() {
			log.Info().Dur("interval", interval).Msg("running on refresh ticker")

			// Warm caches immediately on startup.
			result := refreshJob.Run(ctx)
			log.Info().
				Int("successful", result.Successful).
				Int("failed", result.Failed).
				Msg("initial refresh complete")

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					result := refreshJob.Run(ctx)
					log.Info().
						Int("successful", result.Successful).
						Int("failed", result.Failed).
						Msg("scheduled refresh complete")
				}
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
