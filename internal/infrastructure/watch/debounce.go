// Package watch observes the stored snapshot file and fires a callback
// when it changes, coalescing bursts of writes through a debounce window.
package watch

import (
	"sync"
	"time"
)

// Debouncer collapses a burst of triggers into one callback invocation.
// Snapshot writers often touch the file several times in quick
// succession; only the last trigger in a quiet window fires.
type Debouncer struct {
	window   time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
}

// NewDebouncer builds a debouncer that fires callback after window
// elapses without a further Trigger.
func NewDebouncer(window time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		window:   window,
		callback: callback,
	}
}

// Trigger arms or resets the debounce timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.callback)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}
