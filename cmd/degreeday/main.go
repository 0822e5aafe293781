// Command degreeday serves the upload/download API for degree-day
// generation estimates.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/degree-day-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/degree-day-etl/internal/adapter/kafka"
	"github.com/couchcryptid/degree-day-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/degree-day-etl/internal/config"
	"github.com/couchcryptid/degree-day-etl/internal/observability"
	"github.com/couchcryptid/degree-day-etl/internal/pipeline"
	"github.com/couchcryptid/degree-day-etl/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	opts := []pipeline.Option{pipeline.WithWorkers(cfg.Workers)}

	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		opts = append(opts, pipeline.WithGeocoder(mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)))
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, pipeline.WithPublisher(writer))
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(logger, metrics, opts...)
	results := store.New(func(held bool) {
		if held {
			metrics.ResultHeld.Set(1)
		} else {
			metrics.ResultHeld.Set(0)
		}
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, results, p, httpadapter.Options{
		MaxUploadBytes:    cfg.MaxUploadBytes,
		MaxExtractedBytes: cfg.MaxExtractedBytes,
		StationDir:        cfg.StationDir,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()
	p.SetReady(true)

	<-ctx.Done()
	logger.Info("shutting down")
	p.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
