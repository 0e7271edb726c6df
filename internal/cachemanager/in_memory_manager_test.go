package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type payloadKey string

func TestInMemoryCacheManager_SetGet(t *testing.T) {
	cache := NewInMemoryCacheManager[payloadKey, string]("payloads", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	cache.Set(ctx, "addon/dialog/dialog.js", "js", DefaultExpiration)

	got, ok := cache.Get(ctx, "addon/dialog/dialog.js")
	require.True(t, ok)
	require.Equal(t, "js", got)
	require.Equal(t, 1, cache.Len())
}

func TestInMemoryCacheManager_Miss(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("payloads", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "missing")

	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_WrongType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("payloads", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("key", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "key")

	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("payloads", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()

	cache.Set(ctx, "key", "value", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := cache.Get(ctx, "key")
	require.False(t, ok)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("payloads", DefaultExpiration, DefaultCleanupInterval)
	ctx := context.Background()
	cache.Set(ctx, "a", "1", DefaultExpiration)
	cache.Set(ctx, "b", "2", DefaultExpiration)
	cache.Set(ctx, "c", "3", DefaultExpiration)

	require.NoError(t, cache.Delete(ctx, "a"))
	_, ok := cache.Get(ctx, "a")
	require.False(t, ok)

	require.NoError(t, cache.Flush(ctx))
	require.Equal(t, 0, cache.Len())
}
