package config

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads store whenever its config file changes, until ctx is done.
//
// The directory is watched rather than the file: editors and SaveTOMLFile
// replace the file by renaming, which drops a watch on the file itself.
func Watch(ctx context.Context, store *Store) error {
	path := store.Path()
	if path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating config watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "watching %s", filepath.Dir(path))
	}
	log.Debugf("Watching config file: %s", path)

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := store.Reload(); err != nil {
				log.Warnf("Keeping previous config: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("Config watcher error: %v", err)
		}
	}
}
