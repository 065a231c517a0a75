package folio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the documents kept in the medium.
const (
	ProjectsKey     = "portfolio_projects"
	ContactsKey     = "portfolio_contacts"
	ProfileImageKey = "portfolio_profile_image"
)

// DocumentStore reads and writes whole JSON documents on a Medium.
// Reads never fail: anything missing, unreadable or malformed yields the
// caller's fallback. Writes report failures as *StorageFault.
type DocumentStore struct {
	medium Medium
	sealer Sealer
	logger Logger
}

// NewDocumentStore creates a DocumentStore. sealer may be nil to store plaintext.
func NewDocumentStore(medium Medium, sealer Sealer, logger Logger) *DocumentStore {
	return &DocumentStore{
		medium: medium,
		sealer: sealer,
		logger: logger,
	}
}

// LoadDocument decodes the document stored under key, or returns fallback if
// it is absent or cannot be read. Failures are logged and absorbed.
func LoadDocument[T any](ctx context.Context, s *DocumentStore, key string, fallback T) T {
	data, err := s.medium.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			s.logger.Debug("document not stored yet, using fallback", "key", key)
		} else {
			s.logger.Warn("reading document failed, using fallback", "key", key, "error", err)
		}
		return fallback
	}

	if s.sealer != nil {
		data, err = s.sealer.Open(data)
		if err != nil {
			s.logger.Warn("unsealing document failed, using fallback", "key", key, "error", err)
			return fallback
		}
	}

	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("document is malformed, using fallback", "key", key, "error", err)
		return fallback
	}
	return doc
}

// Save encodes v and writes it under key, replacing the whole document.
// On failure the previous durable state is untouched and a *StorageFault is returned.
func (s *DocumentStore) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return s.fault(key, fmt.Errorf("encoding document: %w", err))
	}

	if s.sealer != nil {
		data, err = s.sealer.Seal(data)
		if err != nil {
			return s.fault(key, fmt.Errorf("sealing document: %w", err))
		}
	}

	if err := s.medium.Put(ctx, key, data); err != nil {
		return s.fault(key, err)
	}

	s.logger.Debug("document saved", "key", key, "bytes", len(data))
	return nil
}

// Delete removes the document stored under key. Deleting a missing document
// is not an error; a failed delete returns a *StorageFault.
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	if err := s.medium.Delete(ctx, key); err != nil {
		s.logger.Error("deleting document failed", "key", key, "error", err)
		return &StorageFault{Op: "delete", Key: key, Err: err}
	}
	s.logger.Debug("document deleted", "key", key)
	return nil
}

func (s *DocumentStore) fault(key string, err error) error {
	s.logger.Error("saving document failed", "key", key, "error", err)
	return &StorageFault{Op: "save", Key: key, Err: err}
}
