// internal/app/store/markdown/watch.go
package markdownstore

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloadDebounce collapses bursts of file events into one reload.
const ReloadDebounce = 500 * time.Millisecond

// Watch reloads the store whenever a file under the content directory
// changes. It blocks until ctx is done. Reload errors are logged and the
// previous content keeps serving.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirs(w, s.cfg.Dir); err != nil {
		return err
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(ReloadDebounce, func() {
			if ctx.Err() != nil {
				return
			}
			if err := s.Reload(); err != nil {
				s.logger.Error("content reload failed", zap.Error(err))
			}
		})
	}

	s.logger.Info("watching content directory", zap.String("dir", s.cfg.Dir))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if err := addDirs(w, ev.Name); err != nil {
					s.logger.Debug("watch new path", zap.String("path", ev.Name), zap.Error(err))
				}
			}
			schedule()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("content watcher error", zap.Error(err))
		}
	}
}

// addDirs watches root and every directory beneath it. A root that is a
// file is ignored.
func addDirs(w *fsnotify.Watcher, root string) error {
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
