package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mirrorkit/internal/watcher"
)

func startWatcher(t *testing.T, roots ...string) <-chan struct{} {
	t.Helper()
	w, err := watcher.New(watcher.Config{
		Roots:       roots,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return onChange
}

func expectSignal(t *testing.T, onChange <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal(msg)
	}
}

func expectQuiet(t *testing.T, onChange <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-onChange:
		t.Fatal(msg)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codemirror.js")
	require.NoError(t, os.WriteFile(path, []byte("v0"), 0644))

	onChange := startWatcher(t, dir)

	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("v%d", i)), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	expectSignal(t, onChange, "expected notification but got timeout")
	expectQuiet(t, onChange, "unexpected second notification")
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	otherPath := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0644))

	onChange := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(otherPath, []byte("changed"), 0644))
	expectQuiet(t, onChange, "should not notify for unrelated files")
}

func TestWatcher_WatchesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	addonDir := filepath.Join(dir, "addon", "dialog")
	require.NoError(t, os.MkdirAll(addonDir, 0755))

	onChange := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(addonDir, "dialog.css"), []byte("x"), 0644))
	expectSignal(t, onChange, "expected notification for nested style sheet")
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	onChange := startWatcher(t, dir)

	themeDir := filepath.Join(dir, "theme")
	require.NoError(t, os.Mkdir(themeDir, 0755))
	time.Sleep(50 * time.Millisecond)
	// Directory creation has no relevant extension, so only the file signals.
	require.NoError(t, os.WriteFile(filepath.Join(themeDir, "monokai.css"), []byte("x"), 0644))

	expectSignal(t, onChange, "expected notification for file in new directory")
}

func TestWatcher_CatalogRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("features: []"), 0644))

	onChange := startWatcher(t, dir)

	require.NoError(t, os.Remove(path))
	expectSignal(t, onChange, "expected notification for removed catalog file")
}

func TestWatcher_SkipsMissingRoots(t *testing.T) {
	dir := t.TempDir()

	onChange := startWatcher(t, filepath.Join(dir, "missing"), dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "core.yaml"), []byte("x"), 0644))
	expectSignal(t, onChange, "existing root should still be watched")
}

func TestWatcher_NoRoots(t *testing.T) {
	w, err := watcher.New(watcher.Config{Roots: []string{filepath.Join(t.TempDir(), "missing")}})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.Error(t, err)
}

func TestWatcher_Stop(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop(), "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/srv/codemirror", "/home/me/.mirrorkit/catalog")

	assert.Equal(t, []string{"/srv/codemirror", "/home/me/.mirrorkit/catalog"}, cfg.Roots)
	assert.Equal(t, watcher.DefaultExtensions, cfg.Extensions)
	assert.Equal(t, 500*time.Millisecond, cfg.DebounceDur)
}
