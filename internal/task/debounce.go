package task

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer defers fn until delay has passed without another Call. Each Call
// cancels the pending timer and restarts it with the newest value.
type Debouncer[T any] struct {
	fn    func(T)
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// Debounce wraps fn. A non-positive delay falls back to DefaultDebounce.
func Debounce[T any](fn func(T), delay time.Duration) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer[T]{fn: fn, delay: delay}
}

func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A timer that fired while a newer Call was being made lost the race.
		stale := seq != d.seq
		if !stale {
			d.timer = nil
		}
		d.mu.Unlock()
		if !stale {
			d.fn(v)
		}
	})
}

// Stop drops a pending call, if any.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}
