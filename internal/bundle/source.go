// Package bundle loads resource payloads by key from a CodeMirror
// distribution. A key is a slash separated path relative to the distribution
// root, e.g. "addon/dialog/dialog.js".
package bundle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/zjrosen/mirrorkit/internal/log"
)

// Bundle errors
var (
	ErrNotFound   = errors.New("payload not found")
	ErrInvalidKey = errors.New("invalid payload key")
)

// Source returns the text payload stored under a key.
type Source interface {
	Payload(ctx context.Context, key string) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, key string) (string, error)

// Payload calls fn.
func (fn SourceFunc) Payload(ctx context.Context, key string) (string, error) {
	return fn(ctx, key)
}

// CleanKey normalizes a key and rejects ones that escape the root.
func CleanKey(key string) (string, error) {
	key = strings.TrimPrefix(strings.ReplaceAll(key, "\\", "/"), "/")
	if key == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	cleaned := path.Clean(key)
	if !fs.ValidPath(cleaned) || cleaned == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}

// FSSource reads payloads from a file system, typically os.DirFS over an
// unpacked codemirror package or an embed.FS.
type FSSource struct {
	fsys fs.FS
}

// Compile-time check that FSSource implements Source.
var _ Source = (*FSSource)(nil)

// NewFSSource creates a source rooted at fsys.
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// Payload reads key from the file system. Missing files wrap ErrNotFound.
func (s *FSSource) Payload(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", err
	}

	data, err := fs.ReadFile(s.fsys, cleaned)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, cleaned)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", cleaned, err)
	}

	log.Debug(log.CatBundle, "Loaded payload", "key", cleaned, "bytes", len(data))
	return string(data), nil
}

// Walk calls fn for every .js and .css file in fsys, in lexical order.
func Walk(fsys fs.FS, fn func(key string) error) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		switch path.Ext(p) {
		case ".js", ".css":
			return fn(p)
		}
		return nil
	})
}
