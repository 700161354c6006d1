// Package debounce coalesces bursts of calls into one trailing invocation and
// lets callers force the pending invocation to run immediately.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quantum used by the completion and diagnostics clients.
const DefaultDelay = 250 * time.Millisecond

// Debouncer holds at most one pending call. Scheduling a new call replaces the
// pending one and restarts the timer. The zero value is not usable; call New.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
	seq     uint64
}

// New returns a Debouncer with the provided delay. Non-positive delays fall
// back to DefaultDelay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Delay reports the configured quantum.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule arranges for fn to run once the delay elapses without another
// Schedule call. A nil fn is ignored.
func (d *Debouncer) Schedule(fn func()) {
	if fn == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	seq := d.seq
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(seq)
	})
}

// Flush runs the pending call, if any, on the caller's goroutine and returns
// once it completes. It reports whether a call was run.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.stopLocked()
	d.pending = nil
	d.seq++
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Cancel drops the pending call without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.pending = nil
	d.seq++
}

// Pending reports whether a call is waiting for the timer.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
