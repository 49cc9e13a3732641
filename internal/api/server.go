package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pricescout/internal/analysis"
	"pricescout/internal/collector"
	"pricescout/internal/config"
	"pricescout/internal/monitoring"
	"pricescout/internal/source"
	"pricescout/internal/storage"
)

// Server holds the dependencies for the HTTP server. pgStore and
// redisStore may be nil; search keeps working without them, persistence
// and analysis degrade explicitly.
type Server struct {
	config     *config.Config
	router     http.Handler
	httpServer *http.Server
	registry   *source.Registry
	collector  *collector.Collector
	analyzer   *analysis.Analyzer
	pgStore    *storage.PostgresStore
	redisStore *storage.RedisStore
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, reg *source.Registry, col *collector.Collector, an *analysis.Analyzer, ps *storage.PostgresStore, rs *storage.RedisStore, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		config:     cfg,
		registry:   reg,
		collector:  col,
		analyzer:   an,
		pgStore:    ps,
		redisStore: rs,
		metrics:    m,
		logger:     l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // fan-out over all sources renders many pages
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
