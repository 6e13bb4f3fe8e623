package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	httpadapter "github.com/couchcryptid/co2-zone-map/internal/adapter/http"
	"github.com/couchcryptid/co2-zone-map/internal/adapter/geocache"
	kafkaadapter "github.com/couchcryptid/co2-zone-map/internal/adapter/kafka"
	"github.com/couchcryptid/co2-zone-map/internal/adapter/mapbox"
	"github.com/couchcryptid/co2-zone-map/internal/adapter/nominatim"
	"github.com/couchcryptid/co2-zone-map/internal/catalog"
	"github.com/couchcryptid/co2-zone-map/internal/config"
	"github.com/couchcryptid/co2-zone-map/internal/domain"
	"github.com/couchcryptid/co2-zone-map/internal/mapview"
	"github.com/couchcryptid/co2-zone-map/internal/observability"
	"github.com/couchcryptid/co2-zone-map/internal/panel"
	"github.com/couchcryptid/co2-zone-map/internal/pipeline"
	"github.com/couchcryptid/co2-zone-map/internal/search"
	"github.com/couchcryptid/co2-zone-map/internal/selection"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// feedBufferSize bounds selection events waiting for the Kafka writer.
const feedBufferSize = 1024

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	shutdownTracing, err := observability.InitTracing(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	cities, err := catalog.LoadFile(cfg.CitiesCSV)
	if err != nil {
		logger.Error("failed to load city catalogue", "path", cfg.CitiesCSV, "error", err)
		os.Exit(1)
	}
	logger.Info("city catalogue loaded", "cities", cities.Len())

	renderer, err := panel.NewRenderer()
	if err != nil {
		logger.Error("failed to parse panel templates", "error", err)
		os.Exit(1)
	}

	geocoder := geocache.NewCachedGeocoder(newGeocoder(cfg, metrics, logger), cfg.GeocoderCacheSize, metrics)
	logger.Info("geocoder configured",
		"provider", cfg.GeocoderProvider,
		"cache_size", cfg.GeocoderCacheSize,
		"timeout", cfg.GeocoderTimeout,
	)

	state := selection.New()
	view := mapview.NewModel()
	panels := panel.NewService(renderer, state, metrics, logger)

	checks := readinessChecks{}
	opts := search.Options{
		Geocoder:  geocoder,
		Random:    domain.NewRandomSource(cfg.RandomSeed),
		Location:  cfg.DisplayLocation,
		Selection: state,
		Map:       view,
		Popups:    renderer,
		Metrics:   metrics,
		Logger:    logger,
	}

	var (
		feed   *pipeline.Feed
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		feed = pipeline.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval, feedBufferSize)
		opts.Sink = feed
		checks = append(checks, feed)
		logger.Info("selection feed enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("selection feed disabled")
	}

	controller := search.NewController(opts)
	checks = append(checks, controller)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Search:  controller,
		Panels:  panels,
		Map:     view,
		Cities:  cities,
		TileURL: cfg.TileURL,
	}, checks, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start selection feed.
	var feedDone sync.WaitGroup
	if feed != nil {
		feedDone.Add(1)
		go func() {
			defer feedDone.Done()
			if err := feed.Run(ctx); err != nil {
				logger.Error("selection feed error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	feedDone.Wait()
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	observability.ShutdownTracing(context.Background(), shutdownTracing, logger)

	logger.Info("shutdown complete")
}

func newGeocoder(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.Geocoder {
	if cfg.GeocoderProvider == config.ProviderMapbox {
		return mapbox.NewClient(cfg.MapboxToken, cfg.GeocoderTimeout, metrics, logger)
	}
	return nominatim.NewClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.GeocoderTimeout, metrics, logger)
}

// readinessChecks is ready when every member is.
type readinessChecks []sharedobs.ReadinessChecker

func (c readinessChecks) CheckReadiness(ctx context.Context) error {
	for _, check := range c {
		if err := check.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
