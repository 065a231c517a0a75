package encryption

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestAgeSealer(t *testing.T) (*AgeSealer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys", "folio.key")
	if _, err := GenerateIdentity(path); err != nil {
		t.Fatalf("GenerateIdentity() error = %v", err)
	}
	s, err := NewAgeSealerFromFile(path)
	if err != nil {
		t.Fatalf("NewAgeSealerFromFile() error = %v", err)
	}
	return s, path
}

func TestGenerateIdentity(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "keys", "folio.key")

	recipient, err := GenerateIdentity(path)
	if err != nil {
		t.Fatalf("GenerateIdentity() error = %v", err)
	}
	if !strings.HasPrefix(recipient, "age1") {
		t.Errorf("recipient = %q, want age1 prefix", recipient)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("identity file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("identity file mode = %o, want 600", perm)
	}

	if _, err := GenerateIdentity(path); err == nil {
		t.Error("second GenerateIdentity() expected error for existing file")
	}
}

func TestAgeSealer_SealOpenRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "json document", input: []byte(`[{"id":"p1","title":"Shop"}]`)},
		{name: "empty", input: []byte{}},
		{name: "binary data", input: []byte{0x00, 0xff, 0x01, 0xfe}},
		{name: "large data", input: bytes.Repeat([]byte("abcdef"), 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newTestAgeSealer(t)

			sealed, err := s.Seal(tt.input)
			if err != nil {
				t.Fatalf("Seal() error = %v", err)
			}
			if len(tt.input) > 0 && bytes.Contains(sealed, tt.input) {
				t.Error("sealed output contains plaintext")
			}

			got, err := s.Open(sealed)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !bytes.Equal(got, tt.input) {
				t.Errorf("Open() returned %d bytes, want %d", len(got), len(tt.input))
			}
		})
	}
}

func TestAgeSealer_ReloadedIdentityOpens(t *testing.T) {
	t.Parallel()
	s, path := newTestAgeSealer(t)

	sealed, err := s.Seal([]byte("hello"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	reloaded, err := NewAgeSealerFromFile(path)
	if err != nil {
		t.Fatalf("NewAgeSealerFromFile() error = %v", err)
	}
	if reloaded.Recipient() != s.Recipient() {
		t.Errorf("Recipient() = %q, want %q", reloaded.Recipient(), s.Recipient())
	}

	got, err := reloaded.Open(sealed)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Open() = %q, want %q", got, "hello")
	}
}

func TestAgeSealer_OpenWithOtherIdentity(t *testing.T) {
	t.Parallel()
	a, _ := newTestAgeSealer(t)
	b, _ := newTestAgeSealer(t)

	sealed, err := a.Seal([]byte("secret"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	if _, err := b.Open(sealed); err == nil {
		t.Error("Open() with another identity expected error")
	}
}

func TestAgeSealer_OpenPlaintext(t *testing.T) {
	t.Parallel()
	s, _ := newTestAgeSealer(t)

	if _, err := s.Open([]byte(`[]`)); err == nil {
		t.Error("Open() of plaintext expected error")
	}
}

func TestNewAgeSealerFromFile_Missing(t *testing.T) {
	t.Parallel()
	if _, err := NewAgeSealerFromFile(filepath.Join(t.TempDir(), "missing.key")); err == nil {
		t.Error("NewAgeSealerFromFile() expected error for missing file")
	}
}
