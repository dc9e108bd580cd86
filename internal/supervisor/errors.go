package supervisor

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Sentinel errors for supervisor failures. Use errors.Is to check.
var (
	ErrNotConnected   = errors.New("supervisor: no network connection")
	ErrMountFailed    = errors.New("supervisor: mounting remote failed")
	ErrSyncToolFailed = errors.New("supervisor: sync tool failed")
	ErrUnmountFailed  = errors.New("supervisor: unmounting remote failed")
)

// ExitError describes an external command that did not complete
// successfully. Unwraps to the underlying exec error, or to the context
// error when the command was stopped by cancellation.
type ExitError struct {
	Command Command
	Stderr  string // tail of the captured stderr, empty when not captured
	Err     error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Command, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}

	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status, or -1 when the process did not
// exit normally.
func (e *ExitError) ExitCode() int {
	var ee *exec.ExitError
	if errors.As(e.Err, &ee) {
		return ee.ExitCode()
	}

	return -1
}

// notMountedMarkers are fusermount messages for a mount point that is
// already gone. Either unmount path may run first, so these are benign.
var notMountedMarkers = []string{"not found in /etc/mtab", "not mounted"}

func isNotMounted(err error) bool {
	var ee *ExitError
	if !errors.As(err, &ee) {
		return false
	}

	for _, m := range notMountedMarkers {
		if strings.Contains(ee.Stderr, m) {
			return true
		}
	}

	return false
}
