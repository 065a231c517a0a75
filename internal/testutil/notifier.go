package testutil

import (
	"context"
	"sync"

	"folio/internal/folio"
)

// RecordingNotifier is a folio.Notifier that records what it was asked to show.
type RecordingNotifier struct {
	mu        sync.Mutex
	perm      folio.Permission
	answer    folio.Permission
	requests  int
	shown     []folio.Notification
	requested chan struct{}
}

// NewRecordingNotifier creates a notifier in state perm. A permission request
// switches it to answer.
func NewRecordingNotifier(perm, answer folio.Permission) *RecordingNotifier {
	return &RecordingNotifier{
		perm:      perm,
		answer:    answer,
		requested: make(chan struct{}),
	}
}

func (n *RecordingNotifier) Permission() folio.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.perm
}

func (n *RecordingNotifier) RequestPermission(context.Context) (folio.Permission, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests++
	n.perm = n.answer
	if n.requests == 1 {
		close(n.requested)
	}
	return n.perm, nil
}

func (n *RecordingNotifier) Show(_ context.Context, note folio.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown = append(n.shown, note)
	return nil
}

// Requested is closed by the first permission request.
func (n *RecordingNotifier) Requested() <-chan struct{} {
	return n.requested
}

// Requests returns how many times permission was requested.
func (n *RecordingNotifier) Requests() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.requests
}

// Shown returns the notifications shown so far.
func (n *RecordingNotifier) Shown() []folio.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]folio.Notification(nil), n.shown...)
}

// Focus is a settable folio.FocusReporter.
type Focus struct {
	mu      sync.Mutex
	focused bool
}

func (f *Focus) Focused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focused
}

func (f *Focus) Set(focused bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused = focused
}
