package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 400 * time.Millisecond

// Watcher reloads the config file on change and invokes a callback with the
// freshly parsed config. Editors often replace files via rename, so the parent
// directory is watched rather than the file itself.
type Watcher struct {
	path     string
	onReload func(*Config)
	logger   *zap.Logger
	mu       sync.Mutex
	timer    *time.Timer
	watcher  *fsnotify.Watcher
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the config file at path. onReload is called
// with the new config after each successful reload; parse failures keep the
// previous config and are logged.
func NewWatcher(path string, onReload func(*Config), logger *zap.Logger) *Watcher {
	return &Watcher{path: path, onReload: onReload, logger: logger}
}

// Start starts watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fw
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return err
	}
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", zap.Error(err))
		}
	}
}

// scheduleReload debounces bursts of events into a single reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadDebounce, func() {
		cfg, err := Load(w.path)
		if err != nil {
			w.logger.Warn("config reload failed, keeping previous config",
				zap.String("path", w.path), zap.Error(err))
			return
		}
		w.logger.Info("config reloaded", zap.String("path", w.path))
		w.onReload(cfg)
	})
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
	})
}
