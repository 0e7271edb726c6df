// Package templates holds the embedded page the server activates features
// into.
package templates

import (
	"embed"
	"html/template"
	"io"
)

//go:embed pages
var pages embed.FS

var editorPage = template.Must(template.ParseFS(pages, "pages/editor.html.tmpl"))

// DefaultContent is shown in the editor when a request supplies none.
const DefaultContent = `function greet(name) {
  return "Hello, " + name;
}
`

// EditorPage is the data for the editor page.
type EditorPage struct {
	Content string
	// Options is passed to CodeMirror.fromTextArea as a JSON object.
	Options map[string]any
}

// RenderEditor writes a page holding one editor. The page carries no
// CodeMirror resources; activation injects them into its head.
func RenderEditor(w io.Writer, p EditorPage) error {
	if p.Options == nil {
		p.Options = map[string]any{}
	}
	return editorPage.Execute(w, p)
}
