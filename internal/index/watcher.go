package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/quire/internal/storage"
)

// DefaultDebounce is the quiet period before a burst of events is reported.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	Extension string
	Debounce  time.Duration
}

// Watch starts an fsnotify watcher on the content root and calls cb once
// per burst of changes until ctx is cancelled.
//
// New directories created at runtime are automatically added to the watch
// list. Events on files without the document extension are ignored, except
// removals and renames, which may concern a whole directory.
func Watch(ctx context.Context, root string, opts WatchOptions, logger *slog.Logger, cb func()) error {
	if opts.Extension == "" {
		opts.Extension = storage.DefaultExtension
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// timer debounces bursts (editors write, rename and chmod in a row).
	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(opts.Debounce)
			fire = timer.C
		} else {
			timer.Reset(opts.Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			logger.Debug("watcher: content changed")
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if relevant(w, ev, opts.Extension, logger) {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// relevant reports whether ev can change the document set. A created
// directory is added to the watch list as a side effect.
func relevant(w *fsnotify.Watcher, ev fsnotify.Event, ext string, logger *slog.Logger) bool {
	name := filepath.Base(ev.Name)

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if storage.SkipDir(name) {
				return false
			}
			if err := addDirsRecursive(w, ev.Name); err != nil {
				logger.Warn("watcher: add new dir failed",
					slog.String("path", ev.Name),
					slog.String("error", err.Error()))
			} else {
				logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
			}
			return true
		}
	}

	if strings.HasSuffix(name, ext) {
		return ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
	}
	// fsnotify fires Rename/Remove on the old name only; it may be a directory.
	return ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && !storage.SkipDir(name) && filepath.Ext(name) == ""
}

// addDirsRecursive adds root and all its visible subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && storage.SkipDir(d.Name()) {
			return fs.SkipDir
		}
		return w.Add(path)
	})
}
