package testutil

// WithEditorFeatures adds a small editor catalog.
//
// Structure:
//
//	codemirror
//	  ├── dialog
//	  │     ├── search
//	  │     └── vim (keymap)
//	  └── active-line
//	monokai (theme)
func (b *Builder) WithEditorFeatures() *Builder {
	return b.
		WithFeature("codemirror", Resources("lib/codemirror.js", "lib/codemirror.css")).
		WithFeature("dialog",
			Resources("addon/dialog/dialog.js", "addon/dialog/dialog.css"),
			DependsOn("codemirror")).
		WithFeature("search",
			Description("Search and replace commands"),
			Resources("addon/search/search.js"),
			DependsOn("codemirror", "dialog")).
		WithFeature("active-line",
			Resources("addon/selection/active-line.js"),
			DependsOn("codemirror")).
		WithFeature("vim", Category("keymap"),
			Resources("keymap/vim.js"),
			DependsOn("codemirror", "dialog")).
		WithFeature("monokai", Category("theme"), Resources("theme/monokai.css"))
}
