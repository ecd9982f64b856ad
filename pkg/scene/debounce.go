package scene

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is the debounce delay used for parameter edits.
const DefaultQuietPeriod = 150 * time.Millisecond

// Debouncer delivers only the latest of a burst of values once no new value
// has arrived for the quiet period. The callback runs on the timer's
// goroutine, or on the caller's for Flush.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending T
	armed   bool
	gen     uint64
}

// NewDebouncer returns a debouncer calling fn after delay of quiet.
func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Push records v as the latest value and restarts the quiet period.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = v
	d.armed = true
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if !d.armed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	v := d.take()
	d.mu.Unlock()
	d.fn(v)
}

// take clears the pending value. d.mu must be held.
func (d *Debouncer[T]) take() T {
	v := d.pending
	var zero T
	d.pending = zero
	d.armed = false
	d.gen++
	return v
}

// Flush delivers a pending value immediately. It reports whether there was one.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.armed {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	v := d.take()
	d.mu.Unlock()
	d.fn(v)
	return true
}

// Stop discards any pending value.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	var zero T
	d.pending = zero
	d.armed = false
	d.gen++
}

// Pending reports whether a value is waiting for the quiet period to end.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.armed
}
