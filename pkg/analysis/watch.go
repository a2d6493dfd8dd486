package analysis

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/vito/lark/pkg/catalog"
)

// WatchExtensions reloads the builtin catalog whenever the extensions file at
// path changes, swapping the new catalog in with SetCatalog. Editors save by
// rename more often than by write, so the parent directory is watched rather
// than the file itself. Blocks until ctx is done.
func (a *Analysis) WatchExtensions(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer watcher.Close() //nolint:errcheck

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "resolve extensions path")
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(err, "watch extensions dir")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			a.reloadExtensions(ctx, abs)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "extensions watcher error", "error", err)
		}
	}
}

func (a *Analysis) reloadExtensions(ctx context.Context, path string) {
	cat, err := catalog.Default(a.store).LoadExtensions(path)
	if err != nil {
		// Keep serving the previous catalog; a half-written file during an
		// editor save shows up as a parse error here.
		slog.WarnContext(ctx, "extensions reload failed", "path", path, "error", err)
		return
	}
	a.SetCatalog(cat)
	slog.InfoContext(ctx, "extensions reloaded", "path", path)
}
