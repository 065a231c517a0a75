package folio

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Medium.Get when nothing is stored under a key.
var ErrKeyNotFound = errors.New("key not found")

// Medium is the durable key-value storage the documents live in.
// Each key holds one independent document; there are no multi-key transactions.
type Medium interface {
	// Get returns the bytes stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key. A failed Put must leave the
	// previous value intact.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// ValidateSetup verifies that the medium is reachable and writable.
	ValidateSetup(ctx context.Context) error

	// Close releases any connection held by the medium.
	Close() error
}

// Sealer transforms documents on their way to and from the medium,
// e.g. to encrypt them at rest.
type Sealer interface {
	// Seal transforms a serialized document before it is written.
	Seal(plaintext []byte) ([]byte, error)

	// Open reverses Seal. It fails if data was not produced by a matching Seal.
	Open(sealed []byte) ([]byte, error)
}
