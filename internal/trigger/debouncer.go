// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package trigger

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces bursts of events into one callback carrying the last
// path seen.
type Debouncer struct {
	interval time.Duration
	callback func(path string)

	mu       sync.Mutex
	timer    *time.Timer
	lastPath string
}

// NewDebouncer returns a debouncer that fires callback after interval of
// quiet.
func NewDebouncer(interval time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{interval: interval, callback: callback}
}

// Trigger records an event and restarts the quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastPath = path
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("debouncer callback panicked", "error", r)
			}
		}()
		d.mu.Lock()
		p := d.lastPath
		d.mu.Unlock()
		d.callback(p)
	})
}

// Stop cancels a pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
