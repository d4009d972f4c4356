package redline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/redline/internal/core/logging"
)

// DocumentWatcher watches the context directory and invalidates review
// sessions whose document changed on disk, so a reviewer never acts on
// suggestions computed against stale content.
type DocumentWatcher struct {
	watcher     *fsnotify.Watcher
	reviews     *ReviewService
	contextDir  string
	globs       []string
	debounceDur time.Duration
	log         zerolog.Logger
}

// NewDocumentWatcher creates a watcher over contextDir for files matching
// the document globs.
func NewDocumentWatcher(contextDir string, globs []string, reviews *ReviewService) (*DocumentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &DocumentWatcher{
		watcher:     watcher,
		reviews:     reviews,
		contextDir:  contextDir,
		globs:       globs,
		debounceDur: 100 * time.Millisecond,
		log:         logging.Component("watcher"),
	}

	// Add the context directory and all subdirectories to the watcher
	if err := w.addRecursive(contextDir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	return w, nil
}

// Run processes file events until the context is canceled.
func (w *DocumentWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if w.shouldIgnore(event.Name) {
				continue
			}

			// If it's a directory creation, add it to the watcher
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
					continue
				}
			}

			// Debounce: wait for changes to settle, then drain events that
			// arrived meanwhile.
			time.Sleep(w.debounceDur)
			w.drain()

			w.invalidate(ctx, event.Name)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			// Keep watching through transient errors
		}
	}
}

// invalidate hashes the changed document and removes sessions recorded
// against a different hash.
func (w *DocumentWatcher) invalidate(ctx context.Context, path string) {
	content, err := ReadDocument(path)
	if err != nil {
		// Deleted or unreadable: leave existing sessions alone.
		return
	}

	if err := w.reviews.InvalidateIfChanged(ctx, path, content); err != nil {
		w.log.Error().Err(err).Str("document", path).Msg("invalidating stale sessions failed")
		return
	}
	w.log.Debug().Str("document", path).Msg("document changed, stale sessions cleared")
}

func (w *DocumentWatcher) drain() {
	for {
		select {
		case <-w.watcher.Events:
		default:
			return
		}
	}
}

// addRecursive adds a directory and all its subdirectories to the watcher.
func (w *DocumentWatcher) addRecursive(path string) error {
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't read
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != path {
				return filepath.SkipDir
			}
			return w.watcher.Add(p)
		}
		return nil
	})
}

// shouldIgnore returns true if the file should be ignored.
func (w *DocumentWatcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	// Ignore common temp extensions
	for _, ext := range []string{".tmp", ".lock", ".swp", ".swx", "~"} {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}

	rel, err := filepath.Rel(w.contextDir, path)
	if err != nil {
		return true
	}
	return !matchesAny(rel, w.globs)
}

// Close stops the watcher.
func (w *DocumentWatcher) Close() error {
	return w.watcher.Close()
}
