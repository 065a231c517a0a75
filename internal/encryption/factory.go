package encryption

import (
	"fmt"

	"folio/internal/config"
	"folio/internal/folio"
)

// NewSealerFromConfig creates a Sealer based on the configuration type.
// It returns a nil Sealer when documents are stored in plaintext.
func NewSealerFromConfig(cfg config.EncryptionConfig) (folio.Sealer, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		if cfg.IdentityPath == "" {
			return nil, fmt.Errorf("age encryption requires identity_path to be set")
		}
		sealer, err := NewAgeSealerFromFile(cfg.IdentityPath)
		if err != nil {
			return nil, err
		}
		return sealer, nil
	case "test":
		return NewTestSealer(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
