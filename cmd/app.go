package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/seo-optimizer/seoaudit/analyzer"
	"github.com/seo-optimizer/seoaudit/config"
	"github.com/seo-optimizer/seoaudit/logging"
	"github.com/seo-optimizer/seoaudit/stats"
)

// app holds the services a command runs against.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	storage  *stats.Storage
	analyzer *analyzer.Analyzer
}

// newApp loads the configuration and builds the analyzer. Persistent
// statistics are only kept by the long-running commands.
func newApp(ctx context.Context, configPath string, logOut io.Writer, persistStats bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}

	if persistStats {
		a.storage, err = stats.NewStorage(cfg.DataDir, logger)
		if err != nil {
			return nil, err
		}
	}

	cache, err := newCache(ctx, cfg.Cache, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	opts := analyzer.Options{
		Timeout:      cfg.Fetch.Timeout,
		MaxPageBytes: cfg.Fetch.MaxPageBytes,
		UserAgent:    cfg.Fetch.UserAgent,
		Extractor:    cfg.Fetch.Extractor,
		CheckRobots:  cfg.Fetch.CheckRobots,
		RuleWorkers:  cfg.Audit.RuleWorkers,
		Cache:        cache,
		Stats:        a.storage,
		Logger:       logger,
	}

	a.analyzer, err = analyzer.New(opts)
	if err != nil {
		cache.Close()
		a.close()
		return nil, fmt.Errorf("creating analyzer: %w", err)
	}
	return a, nil
}

func newCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (analyzer.Cache, error) {
	if cfg.RedisURL == "" {
		return analyzer.NewMemoryCache(cfg.TTL, cfg.MaxSize), nil
	}
	c, err := analyzer.DialRedis(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.TTL)
	if err != nil {
		return nil, err
	}
	logger.Info("using redis cache", "prefix", cfg.RedisPrefix, "ttl", cfg.TTL)
	return c, nil
}

// close releases the analyzer (which also flushes its statistics) or,
// when construction failed early, just the statistics.
func (a *app) close() {
	if a.analyzer != nil {
		a.analyzer.Shutdown()
		return
	}
	if a.storage != nil {
		a.storage.Shutdown()
	}
}
