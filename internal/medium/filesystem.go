package medium

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"folio/internal/folio"
)

// FileSystemMedium stores every key as one file under a root directory:
//
//	<root>/
//	  portfolio_projects.json
//	  portfolio_contacts.json
//	  ...
type FileSystemMedium struct {
	root string
}

// NewFileSystemMedium creates a medium rooted at the given directory, creating it if needed.
func NewFileSystemMedium(root string) (*FileSystemMedium, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create medium directory: %w", err)
	}
	return &FileSystemMedium{root: root}, nil
}

func (m *FileSystemMedium) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key: %q", key)
	}
	return filepath.Join(m.root, key+".json"), nil
}

func (m *FileSystemMedium) Get(_ context.Context, key string) ([]byte, error) {
	path, err := m.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", folio.ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Put writes the value using an atomic write (temp file + rename), so a
// failed write leaves the previous document in place.
func (m *FileSystemMedium) Put(_ context.Context, key string, value []byte) error {
	path, err := m.path(key)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, value)
}

func (m *FileSystemMedium) Delete(_ context.Context, key string) error {
	path, err := m.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// ValidateSetup verifies that the root directory exists and accepts writes.
func (m *FileSystemMedium) ValidateSetup(context.Context) error {
	info, err := os.Stat(m.root)
	if err != nil {
		return fmt.Errorf("medium root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("medium root is not a directory: %s", m.root)
	}

	probe, err := os.CreateTemp(m.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("medium root not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

func (m *FileSystemMedium) Close() error { return nil }

// writeFileAtomic writes data to destPath via a temp file in the same directory.
func writeFileAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := tmpFile.Write(data)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if written != len(data) {
		tmpFile.Close()
		return fmt.Errorf("short write: %w", io.ErrShortWrite)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemMedium implements folio.Medium interface
var _ folio.Medium = (*FileSystemMedium)(nil)
