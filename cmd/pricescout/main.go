package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pricescout/internal/analysis"
	"pricescout/internal/api"
	"pricescout/internal/collector"
	"pricescout/internal/config"
	"pricescout/internal/monitoring"
	"pricescout/internal/render"
	"pricescout/internal/source"
	"pricescout/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Storage is optional: without it the service still searches, it just
	// keeps no history.
	var pgStore *storage.PostgresStore
	if cfg.PostgresURL != "" {
		pgStore, err = storage.NewPostgresStore(cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pgStore.Close()
	} else {
		logger.Warn("POSTGRES_URL not set, price history disabled")
	}

	var redisStore *storage.RedisStore
	if cfg.RedisAddr != "" {
		redisStore = storage.NewRedisStore(cfg.RedisAddr)
	}

	// Initialize Monitoring
	metrics := monitoring.NewMetrics()

	// Sources, renderer, fan-out collector
	registry := source.NewRegistry()
	renderer := render.NewChromeRenderer(
		time.Duration(cfg.RenderTimeout)*time.Second,
		time.Duration(cfg.SettleDelayMS)*time.Millisecond,
		logger,
	)
	col := collector.New(registry, renderer, redisStore, metrics, logger,
		cfg.MaxItemsPerSource, time.Duration(cfg.CacheTTLMinutes)*time.Minute)

	// Trend analyzer over persisted history
	var analyzer *analysis.Analyzer
	if pgStore != nil {
		analyzer = analysis.NewAnalyzer(pgStore, logger)
	}

	// Initialize API Server
	server := api.NewServer(cfg, registry, col, analyzer, pgStore, redisStore, metrics, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started",
		zap.String("port", cfg.ServerPort),
		zap.Int("sources", len(registry.Keys())))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
