package examples

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce groups the burst of events produced by one save
// (create temp, write, rename) into a single callback.
const watchDebounce = 200 * time.Millisecond

// Watch calls onChange whenever the JSON corpus file at path is written,
// created, or replaced by another process. It blocks until ctx is done.
//
// The parent directory is watched rather than the file itself because atomic
// saves replace the inode.
func Watch(ctx context.Context, path string, logger *zap.Logger, onChange func()) error {
	if IsSQLitePath(path) {
		return fmt.Errorf("watch %s: %w", path, ErrUnsupportedStore)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	logger.Info("watching examples file", zap.String("path", target))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			logger.Debug("examples file changed", zap.String("path", target))
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("examples watcher error", zap.Error(err))
		}
	}
}
