package imageref

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"folio/internal/folio"
)

// MaxSize is the largest image accepted, in bytes.
const MaxSize = 5 << 20

// ErrTooLarge is returned for images above MaxSize.
var ErrTooLarge = errors.New("image exceeds 5 MiB")

// ErrUnsupportedType is returned for content that is not a supported image.
var ErrUnsupportedType = errors.New("unsupported image type")

// Accepted image content types.
var supportedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// FromArg turns a command-line argument into an ImageRef. http(s) URLs and
// image data: URLs are passed through untouched; anything else is read as a file.
func FromArg(arg string) (folio.ImageRef, error) {
	if strings.HasPrefix(arg, "https://") || strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "data:image/") {
		return folio.ImageRef(arg), nil
	}
	return FromFile(arg)
}

// FromFile reads an image file and returns it as a data: URL.
func FromFile(rawPath string) (folio.ImageRef, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("not a regular file: %s", absPath)
	}
	if info.Size() > MaxSize {
		return "", fmt.Errorf("%s: %w", absPath, ErrTooLarge)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	ref, err := FromBytes(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", absPath, err)
	}
	return ref, nil
}

// FromBytes sniffs the image type of data and returns it as a data: URL.
func FromBytes(data []byte) (folio.ImageRef, error) {
	if len(data) > MaxSize {
		return "", ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	if !slices.Contains(supportedTypes, contentType) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	return folio.ImageRef("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)), nil
}
