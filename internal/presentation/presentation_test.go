package presentation

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mirrorkit/internal/domain/feature"
)

func sampleFeatures(t *testing.T) (core, dialog, search *feature.Feature) {
	t.Helper()
	reg := feature.NewRegistry()

	core, err := reg.Create("codemirror", feature.CategoryAddOn)
	require.NoError(t, err)
	js, err := feature.Script("lib/codemirror.js", "var CodeMirror;")
	require.NoError(t, err)
	require.NoError(t, core.AddResource(js))

	dialog, err = reg.Create("dialog", feature.CategoryAddOn)
	require.NoError(t, err)
	css, err := feature.Style("addon/dialog/dialog.css", ".CodeMirror-dialog{}")
	require.NoError(t, err)
	require.NoError(t, dialog.AddResource(css))
	require.NoError(t, dialog.AddDependency(core))

	search, err = reg.Create("search", feature.CategoryAddOn)
	require.NoError(t, err)
	search.WithDescription("Search commands")
	require.NoError(t, search.AddResource(css)) // shared with dialog
	require.NoError(t, search.AddDependency(dialog))
	require.NoError(t, search.AddDependency(core))
	return core, dialog, search
}

func TestFromFeature(t *testing.T) {
	_, _, search := sampleFeatures(t)

	dto := FromFeature(search)
	require.Equal(t, "search", dto.Name)
	require.Equal(t, "addon", dto.Category)
	require.Equal(t, "Search commands", dto.Description)
	require.Equal(t, []string{"dialog", "codemirror"}, dto.DependsOn)
	require.Equal(t, []ResourceDTO{{Key: "addon/dialog/dialog.css", Kind: "style", Size: 20}}, dto.Resources)
}

func TestFromFeature_DependsOnAlwaysPresent(t *testing.T) {
	core, _, _ := sampleFeatures(t)

	data, err := json.Marshal(FromFeature(core))
	require.NoError(t, err)
	require.Contains(t, string(data), `"depends_on":[]`)
	require.NotContains(t, string(data), `"description"`)
}

func TestFromResolution_DropsRepeatedResources(t *testing.T) {
	_, _, search := sampleFeatures(t)

	r := FromResolution([]string{"search"}, search.Resolve())
	require.Equal(t, []string{"codemirror", "dialog", "search"}, r.Features)
	require.Len(t, r.Resources, 2)
	require.Equal(t, "lib/codemirror.js", r.Resources[0].Key)
	require.Equal(t, "addon/dialog/dialog.css", r.Resources[1].Key)
}

func TestNewFormatter_Formats(t *testing.T) {
	for _, format := range []string{"", FormatJSON, FormatTable} {
		_, err := NewFormatter(&bytes.Buffer{}, format)
		require.NoError(t, err, format)
	}
	_, err := NewFormatter(&bytes.Buffer{}, "xml")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"xml"`)
}

func TestFormatFeatures_JSON(t *testing.T) {
	core, dialog, _ := sampleFeatures(t)
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatJSON)
	require.NoError(t, err)

	require.NoError(t, f.FormatFeatures(FromFeatures([]*feature.Feature{core, dialog})))

	var got []FeatureDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "dialog", got[1].Name)
	require.Equal(t, []string{"codemirror"}, got[1].DependsOn)
}

func TestFormatFeatures_Table(t *testing.T) {
	core, dialog, search := sampleFeatures(t)
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatTable)
	require.NoError(t, err)

	require.NoError(t, f.FormatFeatures(FromFeatures([]*feature.Feature{core, dialog, search})))

	out := buf.String()
	for _, want := range []string{"NAME", "DEPENDS ON", "codemirror", "dialog, codemirror", "Search commands"} {
		require.Contains(t, out, want)
	}
}

func TestFormatActivation_Table(t *testing.T) {
	core, _, search := sampleFeatures(t)
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatTable)
	require.NoError(t, err)

	a := &feature.Activation{
		Features: search.Resolve(),
		Injected: search.Resources(),
		Skipped:  core.Resources(),
	}
	require.NoError(t, f.FormatActivation(FromActivation("abc", a)))

	out := buf.String()
	require.Contains(t, out, "activation abc: 1 injected, 1 skipped")
	require.Contains(t, out, "lib/codemirror.js")
	require.Contains(t, out, "skipped")
}

func TestFormatResolution_Text(t *testing.T) {
	_, _, search := sampleFeatures(t)
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatTable)
	require.NoError(t, err)

	require.NoError(t, f.FormatResolution(FromResolution([]string{"search"}, search.Resolve())))
	require.Contains(t, buf.String(), "features: codemirror -> dialog -> search")
}

func TestFormatFeatures_ColorProfile(t *testing.T) {
	_, _, search := sampleFeatures(t)
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatTable)
	require.NoError(t, err)
	f.renderer.SetColorProfile(termenv.ANSI256)

	require.NoError(t, f.FormatFeatures([]FeatureDTO{FromFeature(search)}))

	out := buf.String()
	require.Contains(t, out, "\x1b[", "styled output should carry escape codes")
	plain := ansi.Strip(out)
	require.Contains(t, plain, "Search commands")
	require.Contains(t, plain, "dialog, codemirror")
}

func TestFormatFeatures_WrapsAndTruncates(t *testing.T) {
	long := FeatureDTO{
		Name:        "fold",
		Category:    "addon",
		Description: strings.Repeat("folds code regions ", 8),
		DependsOn:   []string{"brace-fold", "comment-fold", "indent-fold", "markdown-fold", "xml-fold"},
	}
	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatTable)
	require.NoError(t, err)

	require.NoError(t, f.FormatFeatures([]FeatureDTO{long}))

	out := ansi.Strip(buf.String())
	require.Contains(t, out, "…")
	require.NotContains(t, out, "xml-fold")
	for _, line := range strings.Split(out, "\n") {
		require.NotContains(t, line, strings.Repeat("folds code regions ", 3), "description should wrap")
	}
}

func TestPageChanges(t *testing.T) {
	before := `<html><head><title>t</title></head><body></body></html>`
	after := `<html><head><title>t</title><style data-mirrorkit-resource="style:a.css">.a{}</style></head><body></body></html>`

	inserted, deleted := PageChanges(before, after)
	require.Empty(t, deleted)
	require.Len(t, inserted, 1)
	require.Contains(t, inserted[0], `style data-mirrorkit-resource="style:a.css">.a{}</style`)

	inserted, deleted = PageChanges(before, before)
	require.Empty(t, inserted)
	require.Empty(t, deleted)
}

func TestFormatPageDiff(t *testing.T) {
	before := `<head></head>`
	after := `<head><script>` + strings.Repeat("x", 300) + `</script></head>`

	var buf bytes.Buffer
	f, err := NewFormatter(&buf, FormatTable)
	require.NoError(t, err)
	require.NoError(t, f.FormatPageDiff(before, after))

	lines := strings.Split(strings.TrimSpace(ansi.Strip(buf.String())), "\n")
	require.Len(t, lines, 1)
	require.True(t, strings.HasPrefix(lines[0], "+ "))
	require.Contains(t, lines[0], "script>xxx")
	require.True(t, strings.HasSuffix(lines[0], "…"))

	buf.Reset()
	f, err = NewFormatter(&buf, FormatJSON)
	require.NoError(t, err)
	require.NoError(t, f.FormatPageDiff(before, before))
	require.JSONEq(t, `{"inserted":[],"deleted":[]}`, buf.String())
}
