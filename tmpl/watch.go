package tmpl

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch clears the template cache whenever a file below one of dirs is
// written, created, removed or renamed. It blocks until ctx is done.
func (e *Engine) Watch(ctx context.Context, dirs ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			return watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("error watching '%s': %w", dir, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			// new directories are not covered by the existing watches
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}

			e.Reset()
			e.logger.LogAttrs(
				ctx, slog.LevelDebug, "template changed, cache cleared",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()),
			)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.LogAttrs(
				ctx, slog.LevelWarn, "template watcher error",
				slog.String("err", err.Error()),
			)
		}
	}
}
