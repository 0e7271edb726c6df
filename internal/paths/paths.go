// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// coreScript marks the root of a CodeMirror distribution.
const coreScript = "lib/codemirror.js"

// ExpandHome replaces a leading "~" with the user's home directory. Paths
// without one, and paths when home is unknown, are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ResolveDistDir resolves the CodeMirror distribution root from user input.
//
// Input normalization:
//   - "/path/to/codemirror" (containing lib/codemirror.js) -> unchanged
//   - "/path/to/project" -> "/path/to/project/node_modules/codemirror"
//   - "/path/to/project/node_modules" -> "/path/to/project/node_modules/codemirror"
//   - "" -> "node_modules/codemirror"
//
// When no candidate holds lib/codemirror.js the cleaned input is returned,
// so the error names the directory the user gave.
func ResolveDistDir(path string) string {
	if path == "" {
		path = "."
	}
	path = filepath.Clean(ExpandHome(path))

	if isDist(path) {
		return path
	}
	for _, candidate := range []string{
		filepath.Join(path, "node_modules", "codemirror"),
		filepath.Join(path, "codemirror"),
	} {
		if isDist(candidate) {
			return candidate
		}
	}
	if path == "." {
		return filepath.Join("node_modules", "codemirror")
	}
	return path
}

func isDist(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(coreScript)))
	return err == nil && !info.IsDir()
}
