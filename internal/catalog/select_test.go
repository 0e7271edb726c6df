package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mirrorkit/internal/bundle"
	"github.com/zjrosen/mirrorkit/internal/domain/feature"
)

func TestSelect_ClosureInCatalogOrder(t *testing.T) {
	defs := loadSample(t)

	selected, err := Select(defs, "search")
	require.NoError(t, err)

	names := make([]string, len(selected))
	for i, def := range selected {
		names[i] = def.Name
	}
	require.Equal(t, []string{"codemirror", "search", "dialog"}, names)
}

func TestSelect_NoNames(t *testing.T) {
	selected, err := Select(loadSample(t))
	require.NoError(t, err)
	require.Empty(t, selected)
}

func TestSelect_Unknown(t *testing.T) {
	_, err := Select(loadSample(t), "monokai", "nope")
	require.ErrorIs(t, err, feature.ErrUnknownFeature)
	require.Contains(t, err.Error(), `"nope"`)
}

func TestSelect_BuildsWithOnlyNeededPayloads(t *testing.T) {
	defs := loadSample(t)
	selected, err := Select(defs, "monokai")
	require.NoError(t, err)

	// Only the theme's payload exists; building everything would fail.
	src := bundle.NewFSSource(payloadsFor(selected))
	reg := feature.NewRegistry()
	require.NoError(t, Build(context.Background(), selected, src, reg))
	require.Equal(t, []string{"monokai"}, reg.Names())

	require.Error(t, Build(context.Background(), defs, src, feature.NewRegistry()))
}
