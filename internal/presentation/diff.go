package presentation

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffLineWidth caps each printed change; payloads can be large.
const diffLineWidth = 120

// PageChanges returns the text inserted into and deleted from a page, in
// page order. Injection only inserts, so deletions mean something else
// rewrote the page.
func PageChanges(before, after string) (inserted, deleted []string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	for _, d := range diffs {
		text := strings.TrimSpace(d.Text)
		if text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted = append(inserted, text)
		case diffmatchpatch.DiffDelete:
			deleted = append(deleted, text)
		}
	}
	return inserted, deleted
}

// FormatPageDiff writes one line per change between two renderings of a
// page: "+" for inserted text and "-" for deleted text.
func (f *Formatter) FormatPageDiff(before, after string) error {
	inserted, deleted := PageChanges(before, after)
	if f.format == FormatJSON {
		return f.json(map[string][]string{"inserted": nonNil(inserted), "deleted": nonNil(deleted)})
	}

	added := f.renderer.NewStyle().Foreground(addedColor)
	removed := f.renderer.NewStyle().Foreground(dimColor).Strikethrough(true)
	for _, text := range deleted {
		if _, err := fmt.Fprintln(f.writer, removed.Render("- "+oneLine(text))); err != nil {
			return err
		}
	}
	for _, text := range inserted {
		if _, err := fmt.Fprintln(f.writer, added.Render("+ "+oneLine(text))); err != nil {
			return err
		}
	}
	return nil
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, diffLineWidth, "…")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
