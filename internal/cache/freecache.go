package cache

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/coocood/freecache"
)

// FreeCacheBackend keeps entries in a fixed-size freecache arena, which
// bounds memory rather than entry count.
type FreeCacheBackend struct {
	cache *freecache.Cache
}

func NewFreeCache(sizeBytes int) *FreeCacheBackend {
	return &FreeCacheBackend{cache: freecache.NewCache(sizeBytes)}
}

func (f *FreeCacheBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := f.cache.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (f *FreeCacheBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return f.cache.Set([]byte(key), value, expireSeconds(ttl))
}

func (f *FreeCacheBackend) Delete(_ context.Context, key string) error {
	f.cache.Del([]byte(key))
	return nil
}

func (f *FreeCacheBackend) Close() error {
	f.cache.Clear()
	return nil
}

// expireSeconds rounds up so sub-second TTLs do not become "never expire".
func expireSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		return 1
	}
	return int(math.Ceil(ttl.Seconds()))
}
