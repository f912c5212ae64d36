package file

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/auralplayer/aural/internal/domain"
	"github.com/auralplayer/aural/internal/ports"
)

// Watcher observes the track index file and publishes a
// LibraryChangedEvent whenever it is rewritten, by this process or an
// external ingester. The default playlist regenerates in response.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher starts watching the data directory for changes to
// tracks.json.
func NewWatcher(dir string, bus ports.EventBus, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, domain.NewRepositoryError("watch", dir, "create watcher failed", err)
	}
	// Watch the directory, not the file: atomic rename replaces the
	// inode, which would silently detach a file-level watch.
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, domain.NewRepositoryError("watch", dir, "add watch failed", err)
	}

	w := &Watcher{watcher: fsWatcher, done: make(chan struct{})}
	go w.run(bus, logger)
	return w, nil
}

func (w *Watcher) run(bus ports.EventBus, logger *slog.Logger) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != tracksFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if logger != nil {
				logger.Debug("track index changed", slog.String("op", event.Op.String()))
			}
			bus.Publish(domain.NewLibraryChangedEvent())
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if logger != nil {
				logger.Warn("watcher error", slog.Any("error", err))
			}
		case <-w.done:
			return
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
