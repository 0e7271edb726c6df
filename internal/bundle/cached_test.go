package bundle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls map[string]int
	data  map[string]string
}

func (s *countingSource) Payload(_ context.Context, key string) (string, error) {
	s.calls[key]++
	payload, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return payload, nil
}

func newCountingSource() *countingSource {
	return &countingSource{
		calls: map[string]int{},
		data:  map[string]string{"lib/codemirror.js": "v1"},
	}
}

func TestCached_HitsSourceOnce(t *testing.T) {
	inner := newCountingSource()
	src := NewCached(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		got, err := src.Payload(ctx, "lib/codemirror.js")
		require.NoError(t, err)
		require.Equal(t, "v1", got)
	}

	require.Equal(t, 1, inner.calls["lib/codemirror.js"])
}

func TestCached_NormalizesKeys(t *testing.T) {
	inner := newCountingSource()
	src := NewCached(inner, 0)
	ctx := context.Background()

	_, err := src.Payload(ctx, "/lib/codemirror.js")
	require.NoError(t, err)
	_, err = src.Payload(ctx, "lib/./codemirror.js")
	require.NoError(t, err)

	require.Equal(t, 1, inner.calls["lib/codemirror.js"])
}

func TestCached_MissesAreRetried(t *testing.T) {
	inner := newCountingSource()
	src := NewCached(inner, time.Minute)
	ctx := context.Background()

	_, err := src.Payload(ctx, "addon/missing.js")
	require.ErrorIs(t, err, ErrNotFound)

	inner.data["addon/missing.js"] = "now here"
	got, err := src.Payload(ctx, "addon/missing.js")
	require.NoError(t, err)
	require.Equal(t, "now here", got)
}

func TestCached_Invalidate(t *testing.T) {
	inner := newCountingSource()
	src := NewCached(inner, time.Minute)
	ctx := context.Background()

	_, _ = src.Payload(ctx, "lib/codemirror.js")
	inner.data["lib/codemirror.js"] = "v2"
	require.NoError(t, src.Invalidate(ctx))

	got, err := src.Payload(ctx, "lib/codemirror.js")
	require.NoError(t, err)
	require.Equal(t, "v2", got)
	require.Equal(t, 2, inner.calls["lib/codemirror.js"])
}
