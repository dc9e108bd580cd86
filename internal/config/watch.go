package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch notifies on the returned channel whenever the config file at path is
// written, created or replaced. The parent directory is watched rather than
// the file itself so editors that save via rename are caught. Notifications
// coalesce: at most one is pending at a time. The watcher stops when ctx is
// done and the channel is then closed.
func Watch(ctx context.Context, path string, logger *slog.Logger) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()

		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	changed := make(chan struct{}, 1)
	target := filepath.Clean(path)

	go func() {
		defer close(changed)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}

				if filepath.Clean(ev.Name) != target {
					continue
				}

				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}

				logger.Debug("config file changed", slog.String("path", path), slog.String("op", ev.Op.String()))

				select {
				case changed <- struct{}{}:
				default:
				}

			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}

				logger.Warn("config watcher error", slog.String("error", werr.Error()))
			}
		}
	}()

	return changed, nil
}
