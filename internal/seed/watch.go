package seed

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"pkt.systems/pslog"
)

// Watch rebuilds the seed at path whenever it is written, replaced, or
// created, and reports each result to onChange. The containing directory is
// watched so editors that save by rename are still seen. Watch blocks until
// ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(*Workspace, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	log := pslog.Ctx(ctx).With("seed", abs)
	log.Debug("watching seed document")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				ws, err := Open(abs)
				onChange(ws, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
			log.Warn("seed watcher error", "err", err)
		}
	}
}
