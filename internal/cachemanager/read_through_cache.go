package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache loads missing values with fn and caches successful results.
// Errors are never cached.
type ReadThroughCache[K ~string, V any] struct {
	cache CacheManager[K, V]
	fn    func(ctx context.Context, key K) (V, error)
	ttl   time.Duration
}

// NewReadThroughCache wraps fn with cache.
func NewReadThroughCache[K ~string, V any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, key K) (V, error),
	ttl time.Duration,
) *ReadThroughCache[K, V] {
	return &ReadThroughCache[K, V]{
		cache: cache,
		fn:    fn,
		ttl:   ttl,
	}
}

// Get returns the cached value for key, loading it on a miss.
func (r *ReadThroughCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if value, ok := r.cache.GetWithRefresh(ctx, key, r.ttl); ok {
		return value, nil
	}

	value, err := r.fn(ctx, key)
	if err != nil {
		return value, err
	}

	r.cache.Set(ctx, key, value, r.ttl)
	return value, nil
}

// Invalidate drops every cached value.
func (r *ReadThroughCache[K, V]) Invalidate(ctx context.Context) error {
	return r.cache.Flush(ctx)
}
