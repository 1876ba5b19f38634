// Package watch reports changes made to the media folder outside the API,
// such as a git checkout or a file manager copying assets in.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/mediastore/internal/media"
	"github.com/starford/mediastore/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindRemoved = "removed"
)

// debounce is how long a path must stay quiet before its writes are reported.
const debounce = 200 * time.Millisecond

// EventCallback is called with an event kind and a repo-relative path.
type EventCallback func(kind string, repoPath string)

// Watch starts an fsnotify watcher on the media folder and reports changes
// until ctx is cancelled. New directories are added to the watch list as they
// appear. Bursts of writes to one file are coalesced into a single "updated"
// event. Files belonging to uploads in progress are ignored.
func Watch(ctx context.Context, paths storage.PathConfig, logger *slog.Logger, cb EventCallback) error {
	root := paths.MediaDir()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	emit := func(kind, abs string) {
		rel, err := paths.Rel(abs)
		if err != nil {
			return
		}
		logger.Debug("watcher: event", slog.String("path", rel), slog.String("op", kind))
		if cb != nil {
			cb(kind, rel)
		}
	}

	pending := make(map[string]struct{})
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(debounce)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			for abs := range pending {
				emit(KindUpdated, abs)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if media.IsUploadTemp(filepath.Base(ev.Name)) {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
				}
				delete(pending, ev.Name)
				emit(KindCreated, ev.Name)

			case ev.Op&fsnotify.Write != 0:
				pending[ev.Name] = struct{}{}
				scheduleFlush()

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path only; the new path arrives
				// as its own Create.
				delete(pending, ev.Name)
				emit(KindRemoved, ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
