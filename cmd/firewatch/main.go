package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	firmsadapter "github.com/patagoniaverde/firewatch/internal/adapter/firms"
	httpadapter "github.com/patagoniaverde/firewatch/internal/adapter/http"
	kafkaadapter "github.com/patagoniaverde/firewatch/internal/adapter/kafka"
	"github.com/patagoniaverde/firewatch/internal/adapter/maps"
	"github.com/patagoniaverde/firewatch/internal/app"
	"github.com/patagoniaverde/firewatch/internal/cache"
	"github.com/patagoniaverde/firewatch/internal/config"
	"github.com/patagoniaverde/firewatch/internal/domain"
	"github.com/patagoniaverde/firewatch/internal/filter"
	"github.com/patagoniaverde/firewatch/internal/ingest"
	"github.com/patagoniaverde/firewatch/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("failed to resolve timezone", "error", err)
		os.Exit(1)
	}

	// Select the upstream detection source (SOURCE_KIND).
	var source ingest.Source
	var closeSource func() error
	switch cfg.SourceKind {
	case config.SourceKafka:
		kafkaSource := kafkaadapter.NewSource(kafkaadapter.SourceConfig{
			Brokers:     cfg.KafkaBrokers,
			Topic:       cfg.KafkaTopic,
			GroupID:     cfg.KafkaGroupID,
			BatchSize:   cfg.KafkaBatchSize,
			PollTimeout: cfg.KafkaPollTimeout,
		}, logger)
		source = kafkaSource
		closeSource = kafkaSource.Close
		logger.Info("kafka source enabled", "topic", cfg.KafkaTopic, "group_id", cfg.KafkaGroupID)
	default:
		format := firmsadapter.FormatJSON
		if cfg.SourceFormat == "csv" {
			format = firmsadapter.FormatCSV
		}
		source = firmsadapter.NewClient(cfg.FiresURL, format, cfg.SourceTimeout, logger)
		logger.Info("http source enabled", "url", cfg.FiresURL, "format", cfg.SourceFormat)
	}

	coordinator := ingest.New(source, cache.New(clock), ingest.Options{
		TTL: cfg.CacheTTL,
		Confidence: domain.ConfidenceMapping{
			HighMin: cfg.ConfidenceHighMin,
			LowMax:  cfg.ConfidenceLowMax,
		},
		DevDelay: cfg.DevFetchDelay,
	}, clock, logger, metrics)

	surface := maps.NewStateSurface()
	adapter := maps.NewAdapter(surface, logger)
	engine := filter.NewEngine(loc, logger)
	controller := app.New(coordinator, engine, adapter, loc, cfg.FilterDebounce, clock, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, controller, coordinator, surface, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the collection; readiness flips once the first load commits.
	go func() {
		if err := controller.Load(ctx); err != nil {
			logger.Error("initial load failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if closeSource != nil {
		if err := closeSource(); err != nil {
			logger.Error("source close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
