package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when an entry is added after Build.
	ErrInvalidState = errors.New("archive: entry added after build")

	// ErrNotReady is returned when the tree is read before Build.
	ErrNotReady = errors.New("archive: tree not built")

	// ErrAlreadyFinalized is returned by a second call to Build.
	ErrAlreadyFinalized = errors.New("archive: tree already built")
)

// MalformedPathError reports an entry path that cannot be placed in the tree.
type MalformedPathError struct {
	Path   string
	Reason string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("archive: malformed path %q: %s", e.Path, e.Reason)
}
