package syncer

import (
	"sync"
	"time"
)

const (
	// DefaultDebounceWindow coalesces save bursts inside this quiet period.
	DefaultDebounceWindow = 5 * time.Second
	// DefaultDebounceCeiling forces a flush even under a continuous burst.
	DefaultDebounceCeiling = 30 * time.Second
)

type debounceState int

const (
	debounceIdle debounceState = iota
	debouncePending
)

// Debouncer coalesces bursts of triggers into one call to fn. A trigger
// during a quiet period starts a window; further triggers push the deadline
// out, but never past the ceiling measured from the first trigger of the
// burst. A single timer drives the Idle -> Pending -> Idle state machine.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	ceiling time.Duration
	fn      func()

	state     debounceState
	ceilingAt time.Time
	timer     *time.Timer
	stopped   bool
}

func NewDebouncer(window, ceiling time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		window:  window,
		ceiling: ceiling,
		fn:      fn,
	}
}

// Trigger records one call. The underlying fn runs once per burst, after the
// window elapses with no further triggers or when the ceiling is hit.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	now := time.Now()
	deadline := now.Add(d.window)

	if d.state == debounceIdle {
		d.state = debouncePending
		d.ceilingAt = now.Add(d.ceiling)
	} else if deadline.After(d.ceilingAt) {
		deadline = d.ceilingAt
	}

	wait := time.Until(deadline)
	if wait < 0 {
		wait = 0
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(wait, d.fire)
	} else {
		d.timer.Stop()
		d.timer.Reset(wait)
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.state = debounceIdle
	d.mu.Unlock()

	// fn runs outside the lock so a trigger issued during the flush starts
	// the next window instead of deadlocking.
	d.fn()
}

// Flush runs fn immediately if a burst is pending and resets to idle.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || d.state == debounceIdle {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.state = debounceIdle
	d.mu.Unlock()

	d.fn()
}

// Stop cancels any pending flush permanently.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
