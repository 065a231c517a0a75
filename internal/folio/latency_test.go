package folio_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"folio/internal/folio"
	"folio/internal/testutil"
)

func TestLatencySimulator_Wait(t *testing.T) {
	t.Run("zero returns at once", func(t *testing.T) {
		clock := testutil.FixedClock()
		sim := folio.NewLatencySimulator(clock)

		if err := sim.Wait(context.Background(), 0); err != nil {
			t.Errorf("Wait(0) error = %v", err)
		}
		if clock.PendingTimers() != 0 {
			t.Errorf("Wait(0) armed a timer")
		}
	})

	t.Run("waits for the full duration", func(t *testing.T) {
		clock := testutil.FixedClock()
		sim := folio.NewLatencySimulator(clock)

		done := make(chan error, 1)
		go func() { done <- sim.Wait(context.Background(), 500*time.Millisecond) }()

		if !clock.WaitForTimers(1, time.Second) {
			t.Fatal("Wait() did not arm a timer")
		}
		clock.Advance(499 * time.Millisecond)
		select {
		case <-done:
			t.Fatal("Wait() returned early")
		default:
		}

		clock.Advance(time.Millisecond)
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Wait() error = %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Wait() did not return")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		clock := testutil.FixedClock()
		sim := folio.NewLatencySimulator(clock)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- sim.Wait(ctx, time.Second) }()

		if !clock.WaitForTimers(1, time.Second) {
			t.Fatal("Wait() did not arm a timer")
		}
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Wait() error = %v, want context.Canceled", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Wait() did not return after cancel")
		}
		if clock.PendingTimers() != 0 {
			t.Errorf("PendingTimers() = %d, want 0 after cancel", clock.PendingTimers())
		}
	})
}

func TestLatencySimulator_RealClock(t *testing.T) {
	sim := folio.NewLatencySimulator(folio.RealClock{})

	start := time.Now()
	if err := sim.Wait(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait() returned after %v, want at least 20ms", elapsed)
	}
}

func TestDefaultLatency(t *testing.T) {
	l := folio.DefaultLatency()
	want := folio.Latency{
		Fetch:  500 * time.Millisecond,
		Save:   800 * time.Millisecond,
		Delete: 500 * time.Millisecond,
		Submit: time.Second,
		Status: 300 * time.Millisecond,
	}
	if l != want {
		t.Errorf("DefaultLatency() = %+v, want %+v", l, want)
	}
}
