package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/couchcryptid/disaster-event-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/disaster-event-etl/internal/adapter/kafka"
	"github.com/couchcryptid/disaster-event-etl/internal/adapter/nominatim"
	"github.com/couchcryptid/disaster-event-etl/internal/config"
	"github.com/couchcryptid/disaster-event-etl/internal/domain"
	"github.com/couchcryptid/disaster-event-etl/internal/observability"
	"github.com/couchcryptid/disaster-event-etl/internal/pipeline"
	"github.com/couchcryptid/disaster-event-etl/internal/scrape"
	"github.com/couchcryptid/disaster-event-etl/internal/store"
)

func main() {
	// Local development convenience; absent .env files are fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	fileStore, err := store.New(cfg.DataDir, logger)
	if err != nil {
		logger.Error("failed to open data dir", "error", err)
		os.Exit(1)
	}

	client := scrape.NewClient(cfg.FetchTimeout, cfg.FetchRetries, cfg.RequestDelay, logger)
	sources := []pipeline.Source{
		scrape.NewRSOESource(client, cfg.RSOEBaseURL, cfg.MaxPages, logger),
		scrape.NewReliefWebSource(client, cfg.ReliefWebURL, logger),
		scrape.NewEMSCSource(client, cfg.EMSCURL, logger),
	}

	// Geocoding enrichment (feature-flagged via GEOCODE_ENABLED).
	var geocoder domain.Geocoder
	if cfg.GeocodeEnabled {
		nominatimClient := nominatim.NewClient(cfg.GeocodeURL, cfg.GeocodeTimeout, logger, metrics)
		geocoder = nominatim.NewCachedGeocoder(nominatimClient, cfg.GeocodeCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("nominatim geocoding enabled", "cache_size", cfg.GeocodeCacheSize, "timeout", cfg.GeocodeTimeout)
	} else {
		logger.Info("geocoding disabled")
	}

	// Risk-alert publishing (feature-flagged via KAFKA_ENABLED).
	var publisher pipeline.AlertPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg.BrokerList(), cfg.KafkaAlertTopic, logger)
		publisher = writer
		logger.Info("kafka risk alerts enabled", "topic", cfg.KafkaAlertTopic)
	} else {
		logger.Info("kafka risk alerts disabled")
	}

	opts := pipeline.Options{
		MaxEventsPerRun:      cfg.MaxEventsPerRun,
		DuplicateStreakLimit: cfg.DuplicateStreakLimit,
		CurrentWindow:        time.Duration(cfg.CurrentWindowDays) * 24 * time.Hour,
		StatsRadius:          cfg.StatsRadius,
		RiskRadius:           cfg.RiskRadius,
		BackupKeep:           cfg.BackupKeep,
	}
	runner := pipeline.New(sources, fileStore, publisher, geocoder, opts, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunOnce {
		if err := runner.Run(ctx); err != nil {
			logger.Error("pipeline run failed", "error", err)
			os.Exit(1)
		}
		closeWriter(writer, logger)
		return
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, cfg.DataDir, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the pipeline loop.
	go func() {
		if err := runner.RunLoop(ctx, cfg.RunInterval); err != nil {
			logger.Error("pipeline loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	closeWriter(writer, logger)

	logger.Info("shutdown complete")
}

func closeWriter(writer *kafkaadapter.Writer, logger *slog.Logger) {
	if writer == nil {
		return
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
}
