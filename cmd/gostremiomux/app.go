package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amaumene/gostremiomux/internal/adapters"
	"github.com/amaumene/gostremiomux/internal/aggregator"
	"github.com/amaumene/gostremiomux/internal/cache"
	"github.com/amaumene/gostremiomux/internal/config"
	"github.com/amaumene/gostremiomux/internal/constants"
	"github.com/amaumene/gostremiomux/internal/debrid"
	"github.com/amaumene/gostremiomux/internal/handlers"
	"github.com/amaumene/gostremiomux/internal/middleware"
	"github.com/amaumene/gostremiomux/pkg/httputil"
	"github.com/amaumene/gostremiomux/pkg/logger"
)

const cleanupInterval = time.Hour

// App holds the wired components of a running instance.
type App struct {
	Config  *config.Config
	Logger  logger.Logger
	Cache   *cache.ResultCache
	Router  *gin.Engine
	closers []io.Closer
}

func InitializeLogger(cfg *config.Config) (logger.Logger, io.Closer) {
	if !logger.ValidLevel(cfg.LogLevel) {
		fmt.Printf("[App] warning: unknown log level '%s', defaulting to info\n", cfg.LogLevel)
	}
	if cfg.LogFile == "" {
		return logger.NewWithLevel(cfg.LogLevel), nil
	}
	return logger.NewWithFile(cfg.LogLevel, logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAgeDays: constants.LogMaxAgeDays,
	})
}

// NewApp wires every component from cfg. Background work is bound to ctx.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	backend, err := cache.NewBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	startCleanup(ctx, backend, log)
	log.Infof("[App] %s cache backend initialized", cfg.CacheBackend)

	rc := cache.NewResultCache(backend, log)
	httpClient := httputil.NewHTTPClient(constants.RequestTimeout)

	registry := adapters.NewRegistry(cfg, log)
	registry.SetHTTPClient(httpClient)
	log.Infof("[App] adapter presets available: %v", registry.Presets())

	agg := aggregator.New(cfg, registry, rc, log)
	resolver := debrid.NewResolver(debrid.NewProviders(httpClient), rc, cfg.ResolveTTL.Std(), log)
	handler := handlers.New(cfg, registry, agg, resolver, log)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log), middleware.CORS(), middleware.Gzip())
	handler.RegisterRoutes(router)

	return &App{
		Config:  cfg,
		Logger:  log,
		Cache:   rc,
		Router:  router,
		closers: []io.Closer{rc},
	}, nil
}

// startCleanup sweeps expired entries from backends that do not expire on
// their own.
func startCleanup(ctx context.Context, backend cache.Backend, log logger.Logger) {
	switch b := backend.(type) {
	case *cache.LRUCache:
		b.StartCleanup(ctx, cleanupInterval)
	case *cache.BoltBackend:
		go func() {
			ticker := time.NewTicker(cleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					n, err := b.CleanExpired()
					if err != nil {
						log.Errorf("[Cache] cleanup failed: %v", err)
						continue
					}
					log.Debugf("[Cache] removed %d expired entries", n)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.Logger.Errorf("[App] close failed: %v", err)
		}
	}
}
