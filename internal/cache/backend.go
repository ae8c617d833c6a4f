package cache

import (
	"context"
	"fmt"

	"github.com/amaumene/gostremiomux/internal/config"
)

// NewBackend builds the backend selected by CACHE_BACKEND.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.CacheBackend {
	case "", "memory":
		return NewLRU(cfg.CacheSize), nil
	case "freecache":
		return NewFreeCache(cfg.CacheMemoryBytes), nil
	case "bolt":
		return NewBolt(cfg.DatabasePath)
	case "redis":
		return NewRedis(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
