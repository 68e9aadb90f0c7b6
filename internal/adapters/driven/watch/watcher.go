// Package watch provides a FileWatcher backed by fsnotify.
package watch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/Byrix/bom-scrapper/internal/core/ports/driven"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// Watcher reports writes to individual files.
//
// fsnotify watches directories, and editors often save by writing a temp
// file and renaming it over the original, so the parent directory is
// watched and events are filtered by name.
type Watcher struct{}

// NewWatcher creates a new file watcher.
func NewWatcher() *Watcher {
	return &Watcher{}
}

// Watch emits a path each time one of paths is written, created or replaced.
func (w *Watcher) Watch(ctx context.Context, paths ...string) (<-chan string, <-chan error, error) {
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no paths to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}

	wanted := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, nil, err
		}
		wanted[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	events := make(chan string)
	errs := make(chan error)

	go func() {
		defer close(events)
		defer close(errs)
		defer fw.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				path, changed := handleEvent(ev, wanted)
				if !changed {
					continue
				}
				select {
				case events <- path:
				case <-ctx.Done():
					return
				}

			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, errs, nil
}

// handleEvent returns the watched path an event refers to. Chmod and
// removals are ignored; a replace shows up as Create on the new file.
func handleEvent(ev fsnotify.Event, wanted map[string]struct{}) (string, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return "", false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return "", false
	}
	if _, ok := wanted[abs]; !ok {
		return "", false
	}
	return abs, true
}
