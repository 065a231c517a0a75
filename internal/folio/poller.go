package folio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is how often the Poller re-checks the unread count.
const DefaultPollInterval = 30 * time.Second

// Permission is the host's decision about showing notifications.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default" // not decided yet
)

// ParsePermission parses a permission name. The empty string means undecided.
func ParsePermission(s string) (Permission, error) {
	switch Permission(s) {
	case PermissionGranted, PermissionDenied, PermissionDefault:
		return Permission(s), nil
	case "":
		return PermissionDefault, nil
	default:
		return "", fmt.Errorf("unknown notification permission: %q", s)
	}
}

// Notification is a platform notification summarizing unread messages.
type Notification struct {
	Title string
	Body  string
	Count int
}

func unreadNotification(count int) Notification {
	noun := "messages"
	if count == 1 {
		noun = "message"
	}
	return Notification{
		Title: "New Messages",
		Body:  fmt.Sprintf("You have %d unread %s", count, noun),
		Count: count,
	}
}

// Notifier is the host's notification capability.
type Notifier interface {
	// Permission returns the current permission state.
	Permission() Permission

	// RequestPermission asks the user and returns their decision.
	RequestPermission(ctx context.Context) (Permission, error)

	// Show displays one notification.
	Show(ctx context.Context, n Notification) error
}

// FocusReporter tells whether the application is in the foreground.
type FocusReporter interface {
	Focused() bool
}

// UnreadCounter is the part of RecordService the Poller reads.
type UnreadCounter interface {
	UnreadCount() int
}

// Scheduler runs a job at a fixed interval.
type Scheduler interface {
	// Every runs job every interval until stop is called. stop waits for a
	// running job to return.
	Every(interval time.Duration, job func()) (stop func(), err error)
}

// PollerConfig holds the tunables of a Poller.
type PollerConfig struct {
	// Interval defaults to DefaultPollInterval.
	Interval time.Duration

	// OnCount, when set, receives the unread count after every evaluation.
	// It runs without the handle's lock held and may call PollHandle.Stop.
	OnCount func(count int)
}

// Poller periodically checks the unread count and raises a notification
// while the application is in the background. A Poller asks for notification
// permission at most once over its lifetime.
type Poller struct {
	counter  UnreadCounter
	notifier Notifier
	focus    FocusReporter
	sched    Scheduler
	logger   Logger
	interval time.Duration
	onCount  func(int)

	requestOnce sync.Once
	count       atomic.Int64
}

func NewPoller(counter UnreadCounter, notifier Notifier, focus FocusReporter, sched Scheduler, cfg PollerConfig, logger Logger) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		counter:  counter,
		notifier: notifier,
		focus:    focus,
		sched:    sched,
		logger:   logger,
		interval: interval,
		onCount:  cfg.OnCount,
	}
}

// Count returns the unread count seen by the latest evaluation.
func (p *Poller) Count() int {
	return int(p.count.Load())
}

// Start evaluates the unread count immediately and then every interval until
// the returned handle is stopped or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) (*PollHandle, error) {
	p.requestOnce.Do(func() {
		if p.notifier.Permission() != PermissionDefault {
			return
		}
		go func() {
			perm, err := p.notifier.RequestPermission(ctx)
			if err != nil {
				p.logger.Warn("notification permission request failed", "error", err)
				return
			}
			p.logger.Info("notification permission decided", "permission", perm)
		}()
	})

	h := &PollHandle{poller: p, ctx: ctx, done: make(chan struct{})}
	h.evaluate()

	stop, err := p.sched.Every(p.interval, h.evaluate)
	if err != nil {
		h.Stop()
		return nil, fmt.Errorf("scheduling unread poll: %w", err)
	}

	h.mu.Lock()
	h.stopSched = stop
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			h.Stop()
		case <-h.done:
		}
	}()

	p.logger.Debug("unread poller started", "interval", p.interval)
	return h, nil
}

// PollHandle controls one activation of a Poller.
type PollHandle struct {
	poller *Poller
	ctx    context.Context

	mu        sync.Mutex
	stopped   bool
	stopSched func()
	done      chan struct{}

	inOnCount atomic.Int32
}

// Stop cancels the schedule. After Stop returns no notification is shown and
// no further scheduled evaluation starts. Calling Stop more than once is safe.
func (h *PollHandle) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	stop := h.stopSched
	close(h.done)
	h.mu.Unlock()

	if stop != nil {
		if h.inOnCount.Load() > 0 {
			// A scheduler may wait for the running job, which is our caller.
			go stop()
		} else {
			stop()
		}
	}
	h.poller.logger.Debug("unread poller stopped")
}

func (h *PollHandle) evaluate() {
	p := h.poller

	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	count := p.counter.UnreadCount()
	p.count.Store(int64(count))
	h.mu.Unlock()

	if p.onCount != nil {
		h.inOnCount.Add(1)
		p.onCount(count)
		h.inOnCount.Add(-1)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped || count == 0 || p.focus.Focused() || p.notifier.Permission() != PermissionGranted {
		return
	}

	if err := p.notifier.Show(h.ctx, unreadNotification(count)); err != nil {
		p.logger.Warn("showing notification failed", "error", err)
		return
	}
	p.logger.Debug("unread notification shown", "count", count)
}
