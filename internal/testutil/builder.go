// Package testutil builds catalogs and payload distributions for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/mirrorkit/internal/catalog"
)

// CatalogPath is where Catalog places the generated catalog file.
const CatalogPath = "catalog/test.yaml"

// Builder accumulates features and renders them as a catalog plus the
// payloads it references.
type Builder struct {
	t        *testing.T
	features []featureData
}

// NewBuilder creates an empty builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithFeature adds a feature with optional configuration.
func (b *Builder) WithFeature(name string, opts ...FeatureOption) *Builder {
	f := featureData{name: name, payloads: map[string]string{}}
	for _, opt := range opts {
		opt(&f)
	}
	b.features = append(b.features, f)
	return b
}

// Defs returns the features as catalog definitions, in the order added.
func (b *Builder) Defs() []catalog.FeatureDef {
	defs := make([]catalog.FeatureDef, 0, len(b.features))
	for _, f := range b.features {
		def := catalog.FeatureDef{
			Name:        f.name,
			Category:    f.category,
			Description: f.description,
			DependsOn:   f.dependsOn,
		}
		for _, key := range f.resources {
			def.Resources = append(def.Resources, catalog.ResourceDef{Key: key})
		}
		defs = append(defs, def)
	}
	return defs
}

// CatalogYAML renders the features as a catalog file.
func (b *Builder) CatalogYAML() []byte {
	b.t.Helper()
	data, err := yaml.Marshal(catalog.File{Features: b.Defs()})
	require.NoError(b.t, err)
	return data
}

// Catalog returns a filesystem holding the catalog at CatalogPath.
func (b *Builder) Catalog() fstest.MapFS {
	return fstest.MapFS{CatalogPath: {Data: b.CatalogYAML()}}
}

// Payloads returns a filesystem with one file per resource key. Keys
// without an explicit Payload get "/* key */".
func (b *Builder) Payloads() fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, f := range b.features {
		for _, key := range f.resources {
			data, ok := f.payloads[key]
			if !ok {
				data = "/* " + key + " */"
			}
			fsys[key] = &fstest.MapFile{Data: []byte(data)}
		}
	}
	return fsys
}

// WriteDistribution writes the payloads under a new temp directory and
// returns it.
func (b *Builder) WriteDistribution() string {
	b.t.Helper()
	dir := b.t.TempDir()
	WritePayloads(b.t, dir, b.Payloads())
	return dir
}

// WritePayloads writes every file of fsys under dir.
func WritePayloads(t *testing.T, dir string, fsys fstest.MapFS) {
	t.Helper()
	for key, file := range fsys {
		path := filepath.Join(dir, filepath.FromSlash(key))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, file.Data, 0o600))
	}
}

// DefaultDistribution writes a payload for every key the built-in catalog
// references and returns the directory.
func DefaultDistribution(t *testing.T) string {
	t.Helper()
	defs, err := catalog.Load(catalog.DefaultFS())
	require.NoError(t, err)

	fsys := fstest.MapFS{}
	for _, key := range catalog.Keys(defs) {
		fsys[key] = &fstest.MapFile{Data: []byte("/* " + key + " */")}
	}
	dir := t.TempDir()
	WritePayloads(t, dir, fsys)
	return dir
}
