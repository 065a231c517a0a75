package folio

import (
	"errors"
	"fmt"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrSubmitThrottled = errors.New("too many contact submissions, try again later")
)

// StorageFault reports that a document could not be written to the medium.
// The in-memory state that triggered the write is kept for the session.
type StorageFault struct {
	Op  string
	Key string
	Err error
}

func (f *StorageFault) Error() string {
	return fmt.Sprintf("storage fault: %s %q: %v", f.Op, f.Key, f.Err)
}

func (f *StorageFault) Unwrap() error { return f.Err }

// IsStorageFault reports whether err is or wraps a *StorageFault.
func IsStorageFault(err error) bool {
	var fault *StorageFault
	return errors.As(err, &fault)
}
