package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const (
	pidFilePermissions = 0o644
	pidDirPermissions  = 0o755
)

// errSyncRunning means another sync holds the PID file lock. Two syncs would
// fight over the same mount point.
var errSyncRunning = errors.New("another savesync sync is already running")

// claimPIDFile takes an exclusive, non-blocking flock on path and stamps it
// with the current PID for 'savesync status'. The returned release removes
// the file and drops the lock.
func claimPIDFile(path string) (release func(), err error) {
	if path == "" {
		return nil, errors.New("PID file path is empty (is HOME set?)")
	}

	if err := os.MkdirAll(filepath.Dir(path), pidDirPermissions); err != nil {
		return nil, fmt.Errorf("creating PID file directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, pidFilePermissions)
	if err != nil {
		return nil, fmt.Errorf("opening PID file: %w", err)
	}

	if err := lockAndStamp(f); err != nil {
		f.Close()

		return nil, err
	}

	return func() {
		os.Remove(path)
		f.Close()
	}, nil
}

// lockAndStamp locks f and replaces whatever it held with our PID. The lock
// lives as long as f stays open.
func lockAndStamp(f *os.File) error {
	err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)

	switch {
	case errors.Is(err, syscall.EWOULDBLOCK):
		return fmt.Errorf("%w (%s is locked)", errSyncRunning, f.Name())
	case err != nil:
		return fmt.Errorf("locking %s: %w", f.Name(), err)
	}

	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("clearing PID file: %w", err)
	}

	if _, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}

	return f.Sync()
}

// readPIDFile reads the PID from the given file path. Returns 0 and an error
// if the file does not exist or contains invalid content.
func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading PID file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in %s: %w", path, err)
	}

	return pid, nil
}

// runningPID returns the PID of the running sync, if any. A PID file whose
// process is gone is stale and reported as not running.
func runningPID(path string) (int, bool) {
	pid, err := readPIDFile(path)
	if err != nil {
		return 0, false
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}

	// Signal 0 checks liveness without delivering anything.
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return 0, false
	}

	return pid, true
}
