package folio

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is how long search input must stay unchanged before it is applied.
const DefaultQuietPeriod = 300 * time.Millisecond

// Debouncer coalesces rapidly changing values: emit receives a value only
// once no newer value has been pushed for the quiet period.
type Debouncer[T any] struct {
	clock Clock
	quiet time.Duration
	emit  func(T)

	mu      sync.Mutex
	timer   Timer
	pending T
	armed   bool
	gen     uint64
}

func NewDebouncer[T any](clock Clock, quiet time.Duration, emit func(T)) *Debouncer[T] {
	return &Debouncer[T]{clock: clock, quiet: quiet, emit: emit}
}

// Push records v as the latest value and restarts the quiet period.
// Any value pushed before it and not yet emitted is dropped.
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = v
	d.armed = true
	d.timer = d.clock.AfterFunc(d.quiet, func() { d.fire(gen) })
}

// Flush emits the pending value now, if there is one.
func (d *Debouncer[T]) Flush() {
	v, ok := d.take(0, false)
	if ok {
		d.emit(v)
	}
}

// Stop drops the pending value.
func (d *Debouncer[T]) Stop() {
	d.take(0, false)
}

func (d *Debouncer[T]) fire(gen uint64) {
	v, ok := d.take(gen, true)
	if ok {
		d.emit(v)
	}
}

// take disarms the debouncer and returns the pending value. When checkGen is
// set it only does so if no Push happened after generation gen.
func (d *Debouncer[T]) take(gen uint64, checkGen bool) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	if !d.armed || (checkGen && gen != d.gen) {
		return zero, false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	v := d.pending
	d.pending = zero
	d.armed = false
	d.gen++
	return v, true
}
