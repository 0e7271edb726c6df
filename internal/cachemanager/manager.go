// Package cachemanager provides a TTL cache and a read-through wrapper. The
// bundle layer uses it to avoid re-reading payloads on every catalog reload.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a keyed TTL cache.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
	Len() int
}
