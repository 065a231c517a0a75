package medium

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"folio/internal/folio"
)

// MemoryMedium is an in-memory implementation of folio.Medium.
// Nothing survives the process, making it useful for tests and demos.
// This implementation is safe for concurrent use.
type MemoryMedium struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryMedium creates an empty in-memory medium.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{docs: make(map[string][]byte)}
}

func (m *MemoryMedium) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.docs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", folio.ErrKeyNotFound, key)
	}
	return slices.Clone(data), nil
}

func (m *MemoryMedium) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[key] = slices.Clone(value)
	return nil
}

func (m *MemoryMedium) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, key)
	return nil
}

// ValidateSetup always succeeds for the in-memory medium.
func (m *MemoryMedium) ValidateSetup(context.Context) error {
	return nil
}

func (m *MemoryMedium) Close() error { return nil }

// Compile-time check that MemoryMedium implements folio.Medium interface
var _ folio.Medium = (*MemoryMedium)(nil)
