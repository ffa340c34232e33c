package metrics

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/r3dlabs/termkit/internal/refresh"
	"github.com/shirou/gopsutil/v4/process"
)

var (
	// ErrUnavailable means the provider cannot produce the reading at all.
	// Returned by a sampler before its first snapshot it aborts the session.
	ErrUnavailable = refresh.ErrUnavailable

	// ErrPermissionDenied means the reading exists but this user may not see it.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoBaseline marks delta readings on the first cycle.
	ErrNoBaseline = errors.New("no previous sample")

	// ErrNotRunning means the process exited between listing and reading it.
	ErrNotRunning = errors.New("process not running")
)

// notImplemented is the message gopsutil uses for readings a platform does
// not support. Its error type lives in an internal package.
const notImplemented = "not implemented yet"

// Classify maps a gopsutil or OS error onto the package taxonomy. The
// original error stays in the chain. Errors that match nothing are
// returned unchanged and treated as transient.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrNotRunning),
		errors.Is(err, ErrNoBaseline):
		return err
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case errors.Is(err, process.ErrorProcessNotRunning),
		errors.Is(err, syscall.ESRCH),
		errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrNotRunning, err)
	case strings.Contains(err.Error(), notImplemented):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		return err
	}
}

// IsPermissionDenied reports whether err is, or classifies as, a permission error.
func IsPermissionDenied(err error) bool {
	return err != nil && errors.Is(Classify(err), ErrPermissionDenied)
}

// unavailable wraps a probe failure so the refresh session treats it as fatal.
func unavailable(what string, err error) error {
	if errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%s: %w", what, err)
	}
	return fmt.Errorf("%s: %w: %w", what, ErrUnavailable, err)
}
