package localstore

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/veloera/velo/internal/logger"
)

// watcher reloads the store when another process rewrites the backing file.
// It watches the parent directory because the file is replaced via rename.
type watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

func newWatcher(s *Store) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(filepath.Dir(s.path)); err != nil {
		fs.Close()
		return nil, err
	}

	w := &watcher{fs: fs, done: make(chan struct{})}
	go w.run(s)
	return w, nil
}

func (w *watcher) run(s *Store) {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.reload(); err != nil {
				logger.Warn("localstore reload failed", "error", err)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("localstore watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *watcher) close() error {
	close(w.done)
	return w.fs.Close()
}
