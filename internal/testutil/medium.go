package testutil

import (
	"context"
	"errors"
	"sync"

	"folio/internal/folio"
	"folio/internal/medium"
)

// ErrInjected is returned by FaultyMedium when a failure is switched on.
var ErrInjected = errors.New("injected medium failure")

// NewTestMedium creates a new in-memory medium for testing.
func NewTestMedium() *medium.MemoryMedium {
	return medium.NewMemoryMedium()
}

// NewTestStore creates a plaintext DocumentStore over m with a no-op logger.
func NewTestStore(m folio.Medium) *folio.DocumentStore {
	return folio.NewDocumentStore(m, nil, folio.NewNopLogger())
}

// FaultyMedium wraps a Medium and fails reads or writes on demand.
type FaultyMedium struct {
	folio.Medium

	mu       sync.Mutex
	failGet    bool
	failPut    bool
	failDelete bool
	putCalls   int
	lastPut    string
}

// NewFaultyMedium wraps m. All operations pass through until a failure is switched on.
func NewFaultyMedium(m folio.Medium) *FaultyMedium {
	return &FaultyMedium{Medium: m}
}

// FailGet makes every Get fail when on is true.
func (f *FaultyMedium) FailGet(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet = on
}

// FailPut makes every Put fail when on is true.
func (f *FaultyMedium) FailPut(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPut = on
}

// FailDelete makes every Delete fail when on is true.
func (f *FaultyMedium) FailDelete(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDelete = on
}

// PutCalls returns how many times Put was called, failed calls included.
func (f *FaultyMedium) PutCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putCalls
}

// LastPutKey returns the key of the most recent Put.
func (f *FaultyMedium) LastPutKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPut
}

func (f *FaultyMedium) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return f.Medium.Get(ctx, key)
}

func (f *FaultyMedium) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.putCalls++
	f.lastPut = key
	fail := f.failPut
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Medium.Put(ctx, key, value)
}

func (f *FaultyMedium) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failDelete
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Medium.Delete(ctx, key)
}

var _ folio.Medium = (*FaultyMedium)(nil)
