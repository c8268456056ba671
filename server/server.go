// Package server exposes the analyzer over an HTTP JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/seoaudit/analyzer"
	"github.com/seo-optimizer/seoaudit/config"
	"github.com/seo-optimizer/seoaudit/logging"
	"github.com/seo-optimizer/seoaudit/middleware"
)

const (
	shutdownTimeout   = 10 * time.Second
	limiterSweepEvery = 5 * time.Minute
	limiterIdle       = 10 * time.Minute
)

// Server wires the analyzer, statistics and middleware into a gin router.
type Server struct {
	analyzer *analyzer.Analyzer
	stats    *logging.Statistics
	limiter  *middleware.RateLimiter
	logger   *slog.Logger
	cfg      config.ServerConfig
	router   *gin.Engine
}

// New builds the router. gin's mode must be set before calling it.
func New(a *analyzer.Analyzer, stats *logging.Statistics, cfg config.ServerConfig, logger *slog.Logger) *Server {
	s := &Server{
		analyzer: a,
		stats:    stats,
		limiter:  middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		logger:   logger,
		cfg:      cfg,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Stats(s.stats, s.logger),
		middleware.ErrorHandler(s.logger),
		middleware.CORS(s.cfg.AllowedOrigins),
		s.limiter.RateLimit(),
	)

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/rules", s.rules)
		api.GET("/rules/:id", s.rule)

		api.POST("/analyze", s.analyze)
		api.POST("/audit", s.audit)
		api.POST("/extract", s.extract)
		api.POST("/compare", s.compare)
		api.POST("/report", s.report)

		api.GET("/statistics", s.statistics)
		api.GET("/statistics/monthly", s.monthlyStatistics)

		api.GET("/cache", s.cacheStats)
		api.PUT("/cache", s.configureCache)
		api.DELETE("/cache", s.clearCache)
	}
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on the configured port until ctx is cancelled, then shuts
// down gracefully and saves the statistics.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepLimiter(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", "http://localhost:"+s.cfg.Port)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := s.stats.Save(); err != nil {
		s.logger.Warn("statistics save failed", "error", err)
	}
	return nil
}

func (s *Server) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.limiter.Cleanup(limiterIdle)
		case <-ctx.Done():
			return
		}
	}
}
