package folio_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"folio/internal/folio"
	"folio/internal/testutil"
)

type stubCounter struct{ n atomic.Int64 }

func (c *stubCounter) UnreadCount() int { return int(c.n.Load()) }
func (c *stubCounter) set(n int)        { c.n.Store(int64(n)) }

type pollerFixture struct {
	counter  *stubCounter
	notifier *testutil.RecordingNotifier
	focus    *testutil.Focus
	sched    *testutil.ManualScheduler
	poller   *folio.Poller
	counts   chan int
}

func newPollerFixture(perm folio.Permission, cfg folio.PollerConfig) *pollerFixture {
	f := &pollerFixture{
		counter:  &stubCounter{},
		notifier: testutil.NewRecordingNotifier(perm, folio.PermissionGranted),
		focus:    &testutil.Focus{},
		sched:    testutil.NewManualScheduler(),
		counts:   make(chan int, 16),
	}
	cfg.OnCount = func(n int) { f.counts <- n }
	f.poller = folio.NewPoller(f.counter, f.notifier, f.focus, f.sched, cfg, folio.NewNopLogger())
	return f
}

func TestPoller_Start_EvaluatesImmediately(t *testing.T) {
	f := newPollerFixture(folio.PermissionGranted, folio.PollerConfig{})
	f.counter.set(2)

	h, err := f.poller.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.Stop()

	if got := f.poller.Count(); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	if got := <-f.counts; got != 2 {
		t.Errorf("OnCount = %d, want 2", got)
	}

	shown := f.notifier.Shown()
	if len(shown) != 1 {
		t.Fatalf("len(Shown()) = %d, want 1", len(shown))
	}
	if shown[0].Title != "New Messages" || shown[0].Body != "You have 2 unread messages" || shown[0].Count != 2 {
		t.Errorf("notification = %+v", shown[0])
	}
}

func TestPoller_DefaultInterval(t *testing.T) {
	f := newPollerFixture(folio.PermissionDenied, folio.PollerConfig{})

	h, err := f.poller.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.Stop()

	intervals := f.sched.Intervals()
	if len(intervals) != 1 || intervals[0] != folio.DefaultPollInterval {
		t.Errorf("Intervals() = %v, want [%v]", intervals, folio.DefaultPollInterval)
	}
}

func TestPoller_Tick(t *testing.T) {
	tests := []struct {
		name      string
		perm      folio.Permission
		focused   bool
		count     int
		wantShown int
		wantBody  string
	}{
		{name: "background with unread", perm: folio.PermissionGranted, count: 1, wantShown: 1, wantBody: "You have 1 unread message"},
		{name: "focused", perm: folio.PermissionGranted, focused: true, count: 3},
		{name: "nothing unread", perm: folio.PermissionGranted, count: 0},
		{name: "permission denied", perm: folio.PermissionDenied, count: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPollerFixture(tt.perm, folio.PollerConfig{Interval: time.Second})
			f.focus.Set(true)

			h, err := f.poller.Start(context.Background())
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			defer h.Stop()

			f.focus.Set(tt.focused)
			f.counter.set(tt.count)
			f.sched.Tick()

			if got := f.poller.Count(); got != tt.count {
				t.Errorf("Count() = %d, want %d", got, tt.count)
			}
			shown := f.notifier.Shown()
			if len(shown) != tt.wantShown {
				t.Fatalf("len(Shown()) = %d, want %d", len(shown), tt.wantShown)
			}
			if tt.wantShown > 0 && shown[0].Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", shown[0].Body, tt.wantBody)
			}
		})
	}
}

func TestPoller_RequestsPermissionOnce(t *testing.T) {
	f := newPollerFixture(folio.PermissionDefault, folio.PollerConfig{})

	h, err := f.poller.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case <-f.notifier.Requested():
	case <-time.After(time.Second):
		t.Fatal("permission was not requested")
	}
	h.Stop()

	h2, err := f.poller.Start(context.Background())
	if err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	h2.Stop()

	if n := f.notifier.Requests(); n != 1 {
		t.Errorf("Requests() = %d, want 1", n)
	}
}

func TestPoller_NoRequestWhenDecided(t *testing.T) {
	f := newPollerFixture(folio.PermissionDenied, folio.PollerConfig{})

	h, _ := f.poller.Start(context.Background())
	h.Stop()

	if n := f.notifier.Requests(); n != 0 {
		t.Errorf("Requests() = %d, want 0", n)
	}
}

func TestPollHandle_Stop(t *testing.T) {
	f := newPollerFixture(folio.PermissionGranted, folio.PollerConfig{})
	f.focus.Set(true)

	h, err := f.poller.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if f.sched.Active() != 1 {
		t.Fatalf("Active() = %d, want 1", f.sched.Active())
	}

	h.Stop()
	h.Stop()

	if f.sched.Active() != 0 {
		t.Errorf("Active() after Stop() = %d, want 0", f.sched.Active())
	}

	f.focus.Set(false)
	f.counter.set(5)
	f.sched.Tick()
	if n := len(f.notifier.Shown()); n != 0 {
		t.Errorf("len(Shown()) after Stop() = %d, want 0", n)
	}
}

func TestPollHandle_StopsOnContextCancel(t *testing.T) {
	f := newPollerFixture(folio.PermissionGranted, folio.PollerConfig{})
	ctx, cancel := context.WithCancel(context.Background())

	if _, err := f.poller.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(time.Second)
	for f.sched.Active() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("schedule still active after context cancel")
		}
		time.Sleep(time.Millisecond)
	}
}

// waitingScheduler runs its job on Tick; its stop function waits for a
// running job to return, as robfig/cron does.
type waitingScheduler struct {
	mu      sync.Mutex
	job     func()
	running sync.WaitGroup
	stopped atomic.Bool
}

func (s *waitingScheduler) Every(_ time.Duration, job func()) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job = job
	return func() {
		s.running.Wait()
		s.stopped.Store(true)
	}, nil
}

func (s *waitingScheduler) Tick() {
	s.mu.Lock()
	job := s.job
	s.running.Add(1)
	s.mu.Unlock()

	defer s.running.Done()
	job()
}

func TestPollHandle_StopFromOnCount(t *testing.T) {
	sched := &waitingScheduler{}
	notifier := testutil.NewRecordingNotifier(folio.PermissionGranted, folio.PermissionGranted)
	counter := &stubCounter{}

	var handle atomic.Pointer[folio.PollHandle]
	cfg := folio.PollerConfig{OnCount: func(int) {
		if h := handle.Load(); h != nil {
			h.Stop()
		}
	}}
	poller := folio.NewPoller(counter, notifier, &testutil.Focus{}, sched, cfg, folio.NewNopLogger())

	h, err := poller.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	handle.Store(h)

	counter.set(4)
	done := make(chan struct{})
	go func() {
		sched.Tick()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() called from OnCount deadlocked")
	}

	if n := len(notifier.Shown()); n != 0 {
		t.Errorf("len(Shown()) = %d, want 0 once stopped", n)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !sched.stopped.Load() {
		if time.Now().After(deadline) {
			t.Fatal("schedule was not stopped")
		}
		time.Sleep(time.Millisecond)
	}
}
