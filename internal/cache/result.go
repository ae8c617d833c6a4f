package cache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/amaumene/gostremiomux/pkg/logger"
)

// ResultCache memoizes computed values in a Backend and collapses concurrent
// computations of the same key into one.
type ResultCache struct {
	backend Backend
	group   singleflight.Group
	log     logger.Logger
}

func NewResultCache(backend Backend, log logger.Logger) *ResultCache {
	if log == nil {
		log = logger.Discard()
	}
	return &ResultCache{backend: backend, log: log}
}

func (rc *ResultCache) Backend() Backend {
	return rc.backend
}

func (rc *ResultCache) Invalidate(ctx context.Context, key string) error {
	return rc.backend.Delete(ctx, key)
}

func (rc *ResultCache) Close() error {
	return rc.backend.Close()
}

// GetOrCompute returns the cached value for key or computes and stores it for
// ttl. Errors from compute are returned and never stored.
func GetOrCompute[T any](ctx context.Context, rc *ResultCache, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	return GetOrComputeTTL(ctx, rc, key, func(ctx context.Context) (T, time.Duration, error) {
		v, err := compute(ctx)
		return v, ttl, err
	})
}

// GetOrComputeTTL is GetOrCompute where compute picks the TTL from its
// result. A TTL of zero or less skips the store. A caller whose ctx ends
// stops waiting without cancelling the computation other callers share.
func GetOrComputeTTL[T any](ctx context.Context, rc *ResultCache, key string, compute func(context.Context) (T, time.Duration, error)) (T, error) {
	var zero T

	if v, ok := lookup[T](ctx, rc, key); ok {
		return v, nil
	}

	// The shared computation outlives whichever caller started it; compute
	// must bound itself.
	shared := context.WithoutCancel(ctx)
	ch := rc.group.DoChan(key, func() (interface{}, error) {
		if v, ok := lookup[T](shared, rc, key); ok {
			return v, nil
		}

		v, ttl, err := compute(shared)
		if err != nil {
			return nil, err
		}
		if ttl > 0 {
			rc.store(shared, key, v, ttl)
		}
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func lookup[T any](ctx context.Context, rc *ResultCache, key string) (T, bool) {
	var v T
	raw, ok, err := rc.backend.Get(ctx, key)
	if err != nil {
		rc.log.Warnf("[Cache] get %s failed, treating as miss: %v", key, err)
		return v, false
	}
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		rc.log.Warnf("[Cache] dropping undecodable entry %s: %v", key, err)
		_ = rc.backend.Delete(ctx, key)
		return v, false
	}
	return v, true
}

func (rc *ResultCache) store(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		rc.log.Warnf("[Cache] encode %s failed: %v", key, err)
		return
	}
	if err := rc.backend.Set(ctx, key, raw, ttl); err != nil {
		rc.log.Warnf("[Cache] set %s failed: %v", key, err)
	}
}
