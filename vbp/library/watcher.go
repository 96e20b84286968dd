package library

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/MaharajTanim/video-browser-pro/vbp/catalog"
)

// Watcher observes the source folder backing the current catalog and invokes
// a callback when video files appear, disappear or are renamed there. It
// watches a single directory level, matching the enumeration policy.
type Watcher struct {
	watcher  *fsnotify.Watcher
	done     chan struct{}
	onChange func()
}

// NewWatcher starts watching dir. The callback runs on the watcher goroutine
// and must be cheap; the library uses it to flip a staleness flag.
func NewWatcher(dir string, onChange func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		watcher:  fsWatcher,
		done:     make(chan struct{}),
		onChange: onChange,
	}
	go w.watchLoop()

	slog.Info("Source folder watcher started", "dir", dir)
	return w, nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Source folder changed", "op", event.Op.String(), "path", event.Name)
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// relevant filters events down to create/remove/rename of video files.
// Writes are ignored: partially copied files fire a create first, and the
// catalog only rebuilds on explicit user action anyway.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	return catalog.IsVideoFile(filepath.Base(event.Name))
}

// Close stops watching and cleans up resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
