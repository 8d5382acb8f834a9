package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/slyt3/Gyre/internal/logging"
)

const watchDebounce = 100 * time.Millisecond

// Watch reloads path whenever it changes and passes the new config to
// onChange. The parent directory is watched so editors that replace the file
// are seen too. Invalid configs are logged and skipped. Watch blocks until
// ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(absPath), err)
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce = time.After(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn("config_watch_error", logging.Fields{Component: "config", Path: absPath, Error: err.Error()})
		case <-debounce:
			debounce = nil
			cfg, err := Load(absPath)
			if err != nil {
				logging.Error("config_reload_failed", logging.Fields{Component: "config", Path: absPath, Error: err.Error()})
				continue
			}
			logging.Info("config_reloaded", logging.Fields{Component: "config", Path: absPath})
			onChange(cfg)
		}
	}
}
