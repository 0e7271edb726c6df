package cachemanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadThroughCache_LoadsOnce(t *testing.T) {
	calls := 0
	rt := NewReadThroughCache(
		NewInMemoryCacheManager[string, string]("payloads", DefaultExpiration, DefaultCleanupInterval),
		func(_ context.Context, key string) (string, error) {
			calls++
			return "payload:" + key, nil
		},
		DefaultExpiration,
	)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := rt.Get(ctx, "lib/codemirror.js")
		require.NoError(t, err)
		require.Equal(t, "payload:lib/codemirror.js", got)
	}
	require.Equal(t, 1, calls)
}

func TestReadThroughCache_ErrorsAreNotCached(t *testing.T) {
	calls := 0
	rt := NewReadThroughCache(
		NewInMemoryCacheManager[string, string]("payloads", DefaultExpiration, DefaultCleanupInterval),
		func(_ context.Context, key string) (string, error) {
			calls++
			return "", errors.New("not found")
		},
		DefaultExpiration,
	)
	ctx := context.Background()

	_, err := rt.Get(ctx, "missing.js")
	require.Error(t, err)
	_, err = rt.Get(ctx, "missing.js")
	require.Error(t, err)
	require.Equal(t, 2, calls)
}

func TestReadThroughCache_Invalidate(t *testing.T) {
	version := "v1"
	rt := NewReadThroughCache(
		NewInMemoryCacheManager[string, string]("payloads", DefaultExpiration, DefaultCleanupInterval),
		func(_ context.Context, _ string) (string, error) {
			return version, nil
		},
		DefaultExpiration,
	)
	ctx := context.Background()

	got, _ := rt.Get(ctx, "k")
	require.Equal(t, "v1", got)

	version = "v2"
	got, _ = rt.Get(ctx, "k")
	require.Equal(t, "v1", got)

	require.NoError(t, rt.Invalidate(ctx))
	got, _ = rt.Get(ctx, "k")
	require.Equal(t, "v2", got)
}
