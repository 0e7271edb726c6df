package templates

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderEditor(t *testing.T) {
	var buf bytes.Buffer
	err := RenderEditor(&buf, EditorPage{
		Content: "<b>x</b>",
		Options: map[string]any{"theme": "monokai", "lineSeparator": nil},
	})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `<textarea id="code">&lt;b&gt;x&lt;/b&gt;</textarea>`)
	require.Contains(t, out, `"theme":"monokai"`)
	require.Contains(t, out, `"lineSeparator":null`)
	require.NotContains(t, out, "<script src", "resources come from activation")
}

func TestRenderEditor_NilOptions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderEditor(&buf, EditorPage{}))
	require.True(t, strings.Contains(buf.String(), `fromTextArea(document.getElementById("code"), {})`), buf.String())
}
