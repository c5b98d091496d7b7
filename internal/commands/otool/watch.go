package otool

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/apex/log"
	"github.com/blacktop/otool/pkg/bundle"
	"github.com/fsnotify/fsnotify"
)

// WatchFunc receives the result of every (re)inspection.
type WatchFunc func(res *Result, err error)

// Watch inspects path and then re-inspects it every time its binary is written
// or created, until ctx is done.
func (i *Inspector) Watch(ctx context.Context, path string, fn WatchFunc) error {
	binary, err := bundle.Resolve(path)
	if err != nil {
		return err
	}
	// versioned frameworks link Name to Versions/Current/Name; writes land on the target
	binary, err = filepath.EvalSymlinks(binary)
	if err != nil {
		return err
	}
	binary, err = filepath.Abs(binary)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// the parent directory survives editors and linkers that replace the file
	if err := watcher.Add(filepath.Dir(binary)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(binary), err)
	}

	fn(i.Inspect(path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != binary {
				continue
			}
			log.Debugf("event: %s", event.String())
			// a rename away is followed by the replacement's Create
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// coarse mtimes can hide a same-size rebuild from the cache key
			i.Forget()
			fn(i.Inspect(path))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watch error: %v", err)
		}
	}
}
