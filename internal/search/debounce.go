package search

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a search term is applied.
const DefaultDelay = 150 * time.Millisecond

// Debouncer delivers the last value pushed once no new value arrived for
// its delay. Every Push cancels the pending delivery.
type Debouncer[T any] struct {
	delay time.Duration
	out   chan T

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	stopped bool
}

// NewDebouncer creates a Debouncer. A non-positive delay uses DefaultDelay.
func NewDebouncer[T any](delay time.Duration) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{
		delay: delay,
		out:   make(chan T, 1),
	}
}

// C returns the channel settled values are delivered on.
func (d *Debouncer[T]) C() <-chan T {
	return d.out
}

// Push schedules v, replacing any value still waiting.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.deliver(seq, v)
	})
}

func (d *Debouncer[T]) deliver(seq uint64, v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// A Push that raced the timer firing supersedes this value.
	if d.stopped || seq != d.seq {
		return
	}

	// Keep only the newest settled value if nobody drained the last one.
	select {
	case <-d.out:
	default:
	}
	d.out <- v
}

// Stop cancels any pending delivery. Further pushes are ignored.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
