package engine

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/cube-soft/cube.core-sub000/internal/retry"
)

// ErrInvalidPath is returned for empty paths and for tree operations whose
// destination lies inside their source. It is never retried.
var ErrInvalidPath = errors.New("invalid path")

// RollbackError reports an overwrite move that failed and could not be
// undone: the original destination content is left at Temp and nothing
// exists at Destination.
type RollbackError struct {
	Source      string
	Destination string
	Temp        string
	Err         error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("move %s -> %s: rollback failed, previous content left at %s: %v",
		e.Source, e.Destination, e.Temp, e.Err)
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}

func invalid(op, path string) error {
	if path == "" {
		return fmt.Errorf("%s: %w: empty path", op, ErrInvalidPath)
	}
	return fmt.Errorf("%s %s: %w", op, path, ErrInvalidPath)
}

// settled marks host errors no retry can clear, such as writing file
// content onto a directory, so they skip the observer.
func settled(err error) error {
	if errors.Is(err, syscall.EISDIR) {
		return retry.Permanent(err)
	}
	return err
}
