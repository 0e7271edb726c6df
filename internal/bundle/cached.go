package bundle

import (
	"context"
	"time"

	"github.com/zjrosen/mirrorkit/internal/cachemanager"
)

// Cached is a read-through cache in front of another Source. Failed loads
// are not cached.
type Cached struct {
	cache *cachemanager.ReadThroughCache[string, string]
}

// Compile-time check that Cached implements Source.
var _ Source = (*Cached)(nil)

// NewCached wraps src. A non-positive ttl uses cachemanager.DefaultExpiration.
func NewCached(src Source, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = cachemanager.DefaultExpiration
	}
	manager := cachemanager.NewInMemoryCacheManager[string, string](
		"bundle-payloads", ttl, cachemanager.DefaultCleanupInterval)
	return &Cached{
		cache: cachemanager.NewReadThroughCache(manager, src.Payload, ttl),
	}
}

// Payload returns the cached payload for key, loading it on a miss.
func (c *Cached) Payload(ctx context.Context, key string) (string, error) {
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return c.cache.Get(ctx, cleaned)
}

// Invalidate drops every cached payload. The watcher calls this when the
// distribution changes on disk.
func (c *Cached) Invalidate(ctx context.Context) error {
	return c.cache.Invalidate(ctx)
}
