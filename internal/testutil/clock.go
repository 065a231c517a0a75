package testutil

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"folio/internal/folio"
)

// StubClock returns a fixed time that only moves on Advance. Timers created
// with AfterFunc fire during Advance, in deadline order, once the clock
// reaches them. Safe for concurrent use.
type StubClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*stubTimer
}

type stubTimer struct {
	clock *StubClock
	at    time.Time
	f     func()
	done  bool
}

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers f to run when the clock has advanced by d.
// It never runs f synchronously, even for d <= 0; such timers fire on the next Advance.
func (c *StubClock) AfterFunc(d time.Duration, f func()) folio.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &stubTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *stubTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Advance moves the clock forward by d and runs every timer that became due.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due, waiting []*stubTimer
	for _, t := range c.timers {
		switch {
		case t.done:
		case !t.at.After(c.now):
			t.done = true
			due = append(due, t)
		default:
			waiting = append(waiting, t)
		}
	}
	c.timers = waiting
	c.mu.Unlock()

	slices.SortStableFunc(due, func(a, b *stubTimer) int { return a.at.Compare(b.at) })
	for _, t := range due {
		t.f()
	}
}

// PendingTimers returns the number of timers that have neither fired nor been stopped.
func (c *StubClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// WaitForTimers blocks until at least n timers are pending or the deadline
// passes. It lets a test advance the clock only after a goroutine armed its timer.
func (c *StubClock) WaitForTimers(n int, deadline time.Duration) bool {
	limit := time.Now().Add(deadline)
	for time.Now().Before(limit) {
		if c.PendingTimers() >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return c.PendingTimers() >= n
}

// StubIDGenerator returns sequential IDs: "id-1", "id-2", etc.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("id-%d", g.counter)
}

// SequenceIDGenerator returns the given IDs in order, then falls back to "seq-N".
type SequenceIDGenerator struct {
	mu   sync.Mutex
	ids  []string
	next int
}

func NewSequenceIDGenerator(ids ...string) *SequenceIDGenerator {
	return &SequenceIDGenerator{ids: ids}
}

func (g *SequenceIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	if g.next <= len(g.ids) {
		return g.ids[g.next-1]
	}
	return fmt.Sprintf("seq-%d", g.next)
}
