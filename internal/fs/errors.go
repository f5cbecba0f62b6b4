package fs

import (
	"errors"
	"syscall"
)

// ErrSourceChanged is returned by CopyFile when the source was modified
// while it was being copied.
var ErrSourceChanged = errors.New("source changed during copy")

// IsTransient reports whether err is likely to clear up on its own, so an
// unattended caller may retry it instead of giving up.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSourceChanged) ||
		errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EINTR) {
		return true
	}

	// extend here for network filesystem errors if needed
	return false
}
