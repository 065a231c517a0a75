package folio

import (
	"context"
	"time"
)

// Latency holds the artificial round-trip delay applied to each kind of
// RecordService operation.
type Latency struct {
	Fetch  time.Duration
	Save   time.Duration
	Delete time.Duration
	Submit time.Duration
	Status time.Duration
}

// DefaultLatency returns delays that feel like a real remote API.
func DefaultLatency() Latency {
	return Latency{
		Fetch:  500 * time.Millisecond,
		Save:   800 * time.Millisecond,
		Delete: 500 * time.Millisecond,
		Submit: 1000 * time.Millisecond,
		Status: 300 * time.Millisecond,
	}
}

// NoLatency returns zero delays for every operation.
func NoLatency() Latency { return Latency{} }

// LatencySimulator suspends callers to emulate network round-trip time.
type LatencySimulator struct {
	clock Clock
}

func NewLatencySimulator(clock Clock) *LatencySimulator {
	return &LatencySimulator{clock: clock}
}

// Wait suspends the caller for exactly d. A zero or negative d returns at once.
// If ctx is cancelled first, Wait returns ctx.Err().
func (l *LatencySimulator) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	t := l.clock.AfterFunc(d, func() { close(done) })

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	}
}
