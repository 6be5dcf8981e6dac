package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher hot-reloads the domain rules file when it changes on disk.
// Editors often write via rename, so the parent directory is watched
// rather than the file itself.
type Watcher struct {
	path    string
	dynamic *DynamicConfig
	logger  *zap.Logger

	debounce time.Duration
}

// NewWatcher creates a watcher for the given rules file
func NewWatcher(path string, dynamic *DynamicConfig, logger *zap.Logger) *Watcher {
	return &Watcher{
		path:     path,
		dynamic:  dynamic,
		logger:   logger,
		debounce: 200 * time.Millisecond,
	}
}

// Run watches until the context is cancelled. The initial load happens
// before watching starts, so a bad file is reported at startup rather
// than on first edit.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.dynamic.LoadFile(w.path); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", zap.Error(err))

		case <-pending:
			pending = nil
			if err := w.dynamic.LoadFile(w.path); err != nil {
				w.logger.Warn("domain rules reload failed, keeping previous rules",
					zap.String("path", w.path),
					zap.Error(err),
				)
				continue
			}
			w.logger.Info("domain rules reloaded", zap.String("path", w.path))
		}
	}
}
