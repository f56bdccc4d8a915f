package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the window within which rapid writes to the snapshot
// file collapse into a single reload.
const DefaultDebounce = 500 * time.Millisecond

// SnapshotWatcher observes a single snapshot file and invokes a callback
// once writes to it have settled.
type SnapshotWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func()
}

// NewSnapshotWatcher creates a watcher for the snapshot file at path.
// The parent directory is watched because editors and atomic writers
// replace the file rather than updating it in place.
func NewSnapshotWatcher(path string, debounce time.Duration, onChange func()) (*SnapshotWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &SnapshotWatcher{
		watcher:  w,
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Run processes filesystem events until the context is cancelled.
func (sw *SnapshotWatcher) Run(ctx context.Context) error {
	debouncer := NewDebouncer(sw.debounce, sw.onChange)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != sw.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			debouncer.Trigger()

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

// Close releases the underlying filesystem watcher.
func (sw *SnapshotWatcher) Close() error {
	return sw.watcher.Close()
}
