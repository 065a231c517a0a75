package encryption

import (
	"bytes"
	"fmt"

	"folio/internal/folio"
)

// testHeader is prepended to data by TestSealer to make sealed output
// clearly different from plaintext while remaining deterministic and reversible.
var testHeader = []byte("FOLIOENC")

// TestSealer is a simple, deterministic sealer for testing.
// It prepends a fixed 8-byte header when sealing and strips it when opening.
type TestSealer struct{}

var _ folio.Sealer = (*TestSealer)(nil)

// NewTestSealer creates a new TestSealer.
func NewTestSealer() *TestSealer {
	return &TestSealer{}
}

func (s *TestSealer) Seal(plaintext []byte) ([]byte, error) {
	out := make([]byte, 0, len(testHeader)+len(plaintext))
	out = append(out, testHeader...)
	return append(out, plaintext...), nil
}

func (s *TestSealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < len(testHeader) {
		return nil, fmt.Errorf("reading test header: data too short")
	}
	if !bytes.Equal(sealed[:len(testHeader)], testHeader) {
		return nil, fmt.Errorf("invalid test encryption header")
	}
	return bytes.Clone(sealed[len(testHeader):]), nil
}
