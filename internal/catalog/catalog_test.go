package catalog

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mirrorkit/internal/bundle"
	"github.com/zjrosen/mirrorkit/internal/domain/feature"
)

const sampleCatalog = `
features:
  - name: codemirror
    resources:
      - lib/codemirror.js
      - key: lib/codemirror.css
  - name: search
    description: Search commands
    resources: [addon/search/search.js]
    depends_on: [codemirror, dialog]
  - name: dialog
    resources:
      - key: addon/dialog/dialog.js
      - key: addon/dialog/dialog.less
        kind: style
    depends_on: [codemirror]
  - name: monokai
    category: theme
    resources: [theme/monokai.css]
`

// payloadsFor returns a file system holding a payload for every key the
// definitions reference.
func payloadsFor(defs []FeatureDef) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, key := range Keys(defs) {
		fsys[key] = &fstest.MapFile{Data: []byte("/* " + key + " */")}
	}
	return fsys
}

func loadSample(t *testing.T) []FeatureDef {
	t.Helper()
	defs, err := Load(fstest.MapFS{
		"catalog/sample.yaml": {Data: []byte(sampleCatalog)},
	})
	require.NoError(t, err)
	return defs
}

func TestLoad_ParsesDefinitions(t *testing.T) {
	defs := loadSample(t)

	require.Len(t, defs, 4)
	require.Equal(t, "codemirror", defs[0].Name)
	require.Equal(t, []ResourceDef{{Key: "lib/codemirror.js"}, {Key: "lib/codemirror.css"}}, defs[0].Resources)
	require.Equal(t, "catalog/sample.yaml", defs[0].Origin)
	require.Equal(t, []string{"codemirror", "dialog"}, defs[1].DependsOn)
	require.Equal(t, "style", defs[2].Resources[1].Kind)
	require.Equal(t, "theme", defs[3].Category)
}

func TestLoad_FilesInLexicalOrder(t *testing.T) {
	defs, err := Load(fstest.MapFS{
		"catalog/b.yaml":        {Data: []byte("features:\n  - name: second\n")},
		"catalog/a.yml":         {Data: []byte("features:\n  - name: first\n")},
		"catalog/notes.txt":     {Data: []byte("ignored")},
		"catalog/nested/c.yaml": {Data: []byte("features:\n  - name: nested\n")},
	})

	require.NoError(t, err)
	require.Len(t, defs, 2)
	require.Equal(t, "first", defs[0].Name)
	require.Equal(t, "second", defs[1].Name)
}

func TestLoad_MissingDirectory(t *testing.T) {
	defs, err := Load(fstest.MapFS{"other/x.yaml": {Data: []byte("features: []")}})

	require.NoError(t, err)
	require.Empty(t, defs)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(fstest.MapFS{"catalog/bad.yaml": {Data: []byte("features: [")}})

	require.Error(t, err)
	require.Contains(t, err.Error(), "catalog/bad.yaml")
}

func TestResourceDef_ResolveKind(t *testing.T) {
	tests := []struct {
		def     ResourceDef
		want    feature.Kind
		wantErr bool
	}{
		{ResourceDef{Key: "a.js"}, feature.KindScript, false},
		{ResourceDef{Key: "a.css"}, feature.KindStyle, false},
		{ResourceDef{Key: "a.less", Kind: "style"}, feature.KindStyle, false},
		{ResourceDef{Key: "a.mjs", Kind: "script"}, feature.KindScript, false},
		{ResourceDef{Key: "a.txt"}, 0, true},
		{ResourceDef{Key: "a.js", Kind: "font"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.def.Key+"/"+tt.def.Kind, func(t *testing.T) {
			got, err := tt.def.ResolveKind()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_WiresForwardDependencies(t *testing.T) {
	defs := loadSample(t)
	reg := feature.NewRegistry()

	err := Build(context.Background(), defs, bundle.NewFSSource(payloadsFor(defs)), reg)
	require.NoError(t, err)

	search, err := reg.Lookup("search")
	require.NoError(t, err)
	require.Equal(t, "Search commands", search.Description())
	require.Equal(t, []string{"codemirror", "dialog", "search"}, feature.Names(search.Resolve()))

	dialog, err := reg.Lookup("dialog")
	require.NoError(t, err)
	require.Equal(t, feature.KindStyle, dialog.Resources()[1].Kind())
	require.Equal(t, "/* addon/dialog/dialog.less */", dialog.Resources()[1].Payload())

	monokai, err := reg.Lookup("monokai")
	require.NoError(t, err)
	require.Equal(t, feature.CategoryTheme, monokai.Category())
}

func TestBuild_UnknownDependency(t *testing.T) {
	defs := []FeatureDef{{Name: "search", DependsOn: []string{"dialog"}, Origin: "catalog/x.yaml"}}

	err := Build(context.Background(), defs, bundle.NewFSSource(fstest.MapFS{}), feature.NewRegistry())

	require.ErrorIs(t, err, feature.ErrUnknownFeature)
	require.Contains(t, err.Error(), "catalog/x.yaml")
}

func TestBuild_Cycle(t *testing.T) {
	defs := []FeatureDef{
		{Name: "a", DependsOn: []string{"b"}},
		{Name: "b", DependsOn: []string{"a"}},
	}

	err := Build(context.Background(), defs, bundle.NewFSSource(fstest.MapFS{}), feature.NewRegistry())

	require.ErrorIs(t, err, feature.ErrCyclicDependency)
}

func TestBuild_DuplicateName(t *testing.T) {
	defs := []FeatureDef{{Name: "a"}, {Name: "a"}}

	err := Build(context.Background(), defs, bundle.NewFSSource(fstest.MapFS{}), feature.NewRegistry())

	require.ErrorIs(t, err, feature.ErrDuplicateName)
}

func TestBuild_MissingPayload(t *testing.T) {
	defs := []FeatureDef{{Name: "a", Resources: []ResourceDef{{Key: "addon/a.js"}}}}

	err := Build(context.Background(), defs, bundle.NewFSSource(fstest.MapFS{}), feature.NewRegistry())

	require.ErrorIs(t, err, bundle.ErrNotFound)
}

func TestBuild_KeepsResourceOrderWhenLoadsFinishOutOfOrder(t *testing.T) {
	defs := []FeatureDef{{Name: "a", Resources: []ResourceDef{
		{Key: "addon/slow.js"},
		{Key: "addon/fast.js"},
	}}}
	src := bundle.SourceFunc(func(_ context.Context, key string) (string, error) {
		if key == "addon/slow.js" {
			time.Sleep(20 * time.Millisecond)
		}
		return key, nil
	})
	reg := feature.NewRegistry()

	require.NoError(t, Build(context.Background(), defs, src, reg))

	a, err := reg.Lookup("a")
	require.NoError(t, err)
	require.Len(t, a.Resources(), 2)
	require.Equal(t, "addon/slow.js", a.Resources()[0].Payload())
	require.Equal(t, "addon/fast.js", a.Resources()[1].Payload())
}

func TestBuild_InvalidCategoryAndName(t *testing.T) {
	src := bundle.NewFSSource(fstest.MapFS{})

	err := Build(context.Background(), []FeatureDef{{Name: "a", Category: "widget"}}, src, feature.NewRegistry())
	require.Error(t, err)

	err = Build(context.Background(), []FeatureDef{{Name: "Bad Name"}}, src, feature.NewRegistry())
	require.ErrorIs(t, err, feature.ErrInvalidName)
}

func TestBuild_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Build(ctx, loadSample(t), bundle.NewFSSource(fstest.MapFS{}), feature.NewRegistry())

	require.ErrorIs(t, err, context.Canceled)
}

func TestMerge_OverlayReplacesInPlace(t *testing.T) {
	base := []FeatureDef{{Name: "a"}, {Name: "b", Description: "base"}, {Name: "c"}}
	overlay := []FeatureDef{{Name: "b", Description: "user"}, {Name: "d"}}

	merged := Merge(base, overlay)

	require.Len(t, merged, 4)
	require.Equal(t, "b", merged[1].Name)
	require.Equal(t, "user", merged[1].Description)
	require.Equal(t, "d", merged[3].Name)
	require.Equal(t, "base", base[1].Description, "base must not be modified")
}

func TestKeys_Deduplicates(t *testing.T) {
	defs := []FeatureDef{
		{Name: "a", Resources: []ResourceDef{{Key: "x.js"}, {Key: "y.css"}}},
		{Name: "b", Resources: []ResourceDef{{Key: "x.js"}, {Key: "z.js"}}},
	}

	require.Equal(t, []string{"x.js", "y.css", "z.js"}, Keys(defs))
}
