// Package watcher reports debounced changes to catalog and bundle files.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/mirrorkit/internal/log"
)

// DefaultExtensions are the file types that trigger a reload.
var DefaultExtensions = []string{".js", ".css", ".yaml", ".yml"}

// Watcher monitors directory trees and signals when relevant files change.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	roots      []string
	extensions []string
	debounce   time.Duration
	onChange   chan struct{}
	done       chan struct{}
}

// Config holds watcher options.
type Config struct {
	// Roots are watched along with every subdirectory that exists at Start.
	Roots       []string
	Extensions  []string
	DebounceDur time.Duration
}

// DefaultConfig returns a half second debounce over DefaultExtensions.
func DefaultConfig(roots ...string) Config {
	return Config{
		Roots:       roots,
		Extensions:  DefaultExtensions,
		DebounceDur: 500 * time.Millisecond,
	}
}

// New creates a watcher. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	extensions := cfg.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	return &Watcher{
		fsWatcher:  fsw,
		roots:      cfg.Roots,
		extensions: extensions,
		debounce:   cfg.DebounceDur,
		onChange:   make(chan struct{}, 1),
		done:       make(chan struct{}),
	}, nil
}

// Start watches every root. Roots that do not exist are skipped with a
// warning. The returned channel receives one signal per burst of changes.
func (w *Watcher) Start() (<-chan struct{}, error) {
	watched := 0
	for _, root := range w.roots {
		if _, err := os.Stat(root); err != nil {
			log.Warn(log.CatWatcher, "Skipping watch root", "root", root, "error", err)
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.fsWatcher.Add(path); err != nil {
				return fmt.Errorf("watching directory %s: %w", path, err)
			}
			watched++
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if watched == 0 {
		return nil, fmt.Errorf("no watchable directories in %v", w.roots)
	}

	log.Debug(log.CatWatcher, "Watching", "roots", w.roots, "dirs", watched)
	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				w.addIfDir(event.Name)
			}
			if !w.isRelevantEvent(event) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C
			pending = true

		case <-timerC:
			if pending {
				// Drop the signal if the last one has not been consumed.
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatcher, "Watch error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// addIfDir starts watching directories created after Start.
func (w *Watcher) addIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsWatcher.Add(path); err != nil {
		log.Warn(log.CatWatcher, "Cannot watch new directory", "path", path, "error", err)
	}
}

// isRelevantEvent reports whether the event touches a watched file type.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(event.Name)))
}
