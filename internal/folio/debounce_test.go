package folio_test

import (
	"sync"
	"testing"
	"time"

	"folio/internal/folio"
	"folio/internal/testutil"
)

type emitted[T any] struct {
	mu   sync.Mutex
	vals []T
}

func (e *emitted[T]) add(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vals = append(e.vals, v)
}

func (e *emitted[T]) get() []T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]T(nil), e.vals...)
}

func TestDebouncer_Coalesces(t *testing.T) {
	clock := testutil.FixedClock()
	var out emitted[string]
	d := folio.NewDebouncer(clock, folio.DefaultQuietPeriod, out.add)

	d.Push("a")
	clock.Advance(100 * time.Millisecond)
	d.Push("ab")
	clock.Advance(100 * time.Millisecond)
	d.Push("abc")

	clock.Advance(299 * time.Millisecond)
	if got := out.get(); len(got) != 0 {
		t.Fatalf("emitted %q before the quiet period elapsed", got)
	}

	clock.Advance(time.Millisecond)
	got := out.get()
	if len(got) != 1 || got[0] != "abc" {
		t.Errorf("emitted = %q, want [abc]", got)
	}

	clock.Advance(time.Second)
	if got := out.get(); len(got) != 1 {
		t.Errorf("emitted = %q after idle, want one value", got)
	}
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	clock := testutil.FixedClock()
	var out emitted[string]
	d := folio.NewDebouncer(clock, 300*time.Millisecond, out.add)

	d.Push("go")
	clock.Advance(300 * time.Millisecond)
	d.Push("rust")
	clock.Advance(300 * time.Millisecond)

	got := out.get()
	if len(got) != 2 || got[0] != "go" || got[1] != "rust" {
		t.Errorf("emitted = %q, want [go rust]", got)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	clock := testutil.FixedClock()
	var out emitted[string]
	d := folio.NewDebouncer(clock, 300*time.Millisecond, out.add)

	d.Flush()
	if got := out.get(); len(got) != 0 {
		t.Errorf("Flush() with nothing pending emitted %q", got)
	}

	d.Push("react")
	d.Flush()
	if got := out.get(); len(got) != 1 || got[0] != "react" {
		t.Fatalf("emitted = %q, want [react]", got)
	}

	// The flushed value is not emitted again by the timer
	clock.Advance(time.Second)
	if got := out.get(); len(got) != 1 {
		t.Errorf("emitted = %q, want one value", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	clock := testutil.FixedClock()
	var out emitted[string]
	d := folio.NewDebouncer(clock, 300*time.Millisecond, out.add)

	d.Push("dropped")
	d.Stop()
	clock.Advance(time.Second)

	if got := out.get(); len(got) != 0 {
		t.Errorf("emitted = %q after Stop(), want none", got)
	}
	if clock.PendingTimers() != 0 {
		t.Errorf("PendingTimers() = %d, want 0", clock.PendingTimers())
	}
}

func TestDebouncer_RealClock(t *testing.T) {
	got := make(chan string, 4)
	d := folio.NewDebouncer(folio.RealClock{}, 20*time.Millisecond, func(v string) { got <- v })

	d.Push("a")
	d.Push("ab")
	d.Push("abc")

	select {
	case v := <-got:
		if v != "abc" {
			t.Errorf("emitted %q, want abc", v)
		}
	case <-time.After(time.Second):
		t.Fatal("nothing emitted")
	}

	select {
	case v := <-got:
		t.Errorf("unexpected second emission %q", v)
	case <-time.After(60 * time.Millisecond):
	}
}
