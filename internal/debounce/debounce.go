// Package debounce schedules one cancelable task at a time.
//
// Each scheduled task carries a uuid identity. Scheduling replaces the pending
// task, and a timer that fires for a task that is no longer pending does
// nothing, so only the last keystroke in a burst reaches the resolver.
package debounce

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Debouncer runs the most recently scheduled function after a quiet period.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending *task
}

type task struct {
	id    uuid.UUID
	fn    func()
	timer *time.Timer
}

// New returns a Debouncer with the given quiet period.
func New(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay}
}

// Delay reports the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Schedule cancels any pending task and arms fn. It returns the new task id.
func (d *Debouncer) Schedule(fn func()) uuid.UUID {
	id := uuid.New()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	t := &task{id: id, fn: fn}
	t.timer = time.AfterFunc(d.delay, func() { d.fire(id) })
	d.pending = t
	return id
}

// Cancel drops the pending task. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

// Flush runs the pending task now on the caller's goroutine. It reports
// whether a task ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	t := d.pending
	if t != nil {
		t.timer.Stop()
		d.pending = nil
	}
	d.mu.Unlock()
	if t == nil {
		return false
	}
	if t.fn != nil {
		t.fn()
	}
	return true
}

// Pending returns the id of the pending task.
func (d *Debouncer) Pending() (uuid.UUID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return uuid.Nil, false
	}
	return d.pending.id, true
}

func (d *Debouncer) fire(id uuid.UUID) {
	d.mu.Lock()
	t := d.pending
	if t == nil || t.id != id {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.mu.Unlock()
	if t.fn != nil {
		t.fn()
	}
}

func (d *Debouncer) stopLocked() bool {
	if d.pending == nil {
		return false
	}
	d.pending.timer.Stop()
	d.pending = nil
	return true
}
