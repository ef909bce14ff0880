package board

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is how long input must stay still before the pending
// value commits.
const DefaultQuietPeriod = 300 * time.Millisecond

// Outcome reports how one triggered value ended: committed after the quiet
// period, or superseded/cancelled before it.
type Outcome struct {
	Committed bool
	Value     string
}

type waiter struct {
	value string
	ch    chan Outcome
}

// Debouncer coalesces a stream of values into the last one standing after
// a quiet period. It owns its timer; callers never schedule anything
// themselves.
type Debouncer struct {
	mu     sync.Mutex
	quiet  time.Duration
	timer  *time.Timer
	gen    uint64
	waiter *waiter
}

// NewDebouncer creates a debouncer. A non-positive quiet period falls back
// to the default.
func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{quiet: quiet}
}

// Trigger submits a value and restarts the quiet-period timer. Any pending
// waiter is released immediately with Committed=false; the returned channel
// yields exactly one Outcome for this value.
func (d *Debouncer) Trigger(value string) <-chan Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.waiter != nil {
		d.waiter.ch <- Outcome{Committed: false, Value: d.waiter.value}
	}
	d.gen++
	gen := d.gen
	w := &waiter{value: value, ch: make(chan Outcome, 1)}
	d.waiter = w

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen) })
	return w.ch
}

// fire commits the pending value, unless a newer Trigger, Flush or Cancel
// got there first.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen || d.waiter == nil {
		return
	}
	d.waiter.ch <- Outcome{Committed: true, Value: d.waiter.value}
	d.waiter = nil
	d.timer = nil
}

// Flush commits the pending value without waiting out the quiet period.
// It reports the committed value, or false when nothing was pending.
func (d *Debouncer) Flush() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.waiter == nil {
		return "", false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	value := d.waiter.value
	d.waiter.ch <- Outcome{Committed: true, Value: value}
	d.waiter = nil
	return value, true
}

// Cancel releases the pending waiter uncommitted and stops the timer.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	if d.waiter != nil {
		d.waiter.ch <- Outcome{Committed: false, Value: d.waiter.value}
		d.waiter = nil
	}
}
