package encryption

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"

	"folio/internal/folio"
)

// AgeSealer implements folio.Sealer using filippo.io/age with an X25519 identity.
// Documents are encrypted to the identity's own recipient, so the identity
// file is all that is needed to read them back.
type AgeSealer struct {
	identity  *age.X25519Identity
	recipient age.Recipient
}

var _ folio.Sealer = (*AgeSealer)(nil)

// NewAgeSealer creates an AgeSealer for the given identity.
func NewAgeSealer(identity *age.X25519Identity) *AgeSealer {
	return &AgeSealer{identity: identity, recipient: identity.Recipient()}
}

// GenerateIdentity creates a new X25519 identity and writes it to path with
// owner-only permissions. It refuses to overwrite an existing file.
// It returns the public recipient string.
func GenerateIdentity(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("identity file already exists at %s", path)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating identity: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating key directory: %w", err)
	}

	recipient := identity.Recipient().String()
	content := fmt.Sprintf("# public key: %s\n%s\n", recipient, identity.String())
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("writing identity: %w", err)
	}
	return recipient, nil
}

// NewAgeSealerFromFile loads the first X25519 identity from an identity file.
func NewAgeSealerFromFile(path string) (*AgeSealer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing identity file: %w", err)
	}

	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			return NewAgeSealer(x), nil
		}
	}
	return nil, fmt.Errorf("no X25519 identity found in %s", path)
}

// Seal encrypts plaintext to the sealer's recipient.
func (s *AgeSealer) Seal(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, s.recipient)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("encrypting data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	return buf.Bytes(), nil
}

// Open decrypts data produced by Seal.
func (s *AgeSealer) Open(sealed []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(sealed), s.identity)
	if err != nil {
		return nil, fmt.Errorf("creating decrypted reader: %w", err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decrypting data: %w", err)
	}
	return plaintext, nil
}

// Recipient returns the public key documents are sealed to.
func (s *AgeSealer) Recipient() string {
	return s.identity.Recipient().String()
}
