// Package testutil provides helpers for end-to-end tests that run the
// savesync binary against stand-in rclone, unison and fusermount scripts.
// It depends only on stdlib so that E2E tests (which cannot import
// internal/) can use it.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read by the fake tools.
const (
	// EnvCallLog names the file every fake tool appends its argv to.
	EnvCallLog = "SAVESYNC_FAKE_LOG"
	// EnvUnisonMode selects the fake unison behavior: "ok" exits 0,
	// "fail" exits 3, "block" runs until SIGTERM or SIGINT.
	EnvUnisonMode = "SAVESYNC_FAKE_UNISON"
)

const fakeRclone = `#!/bin/sh
echo "rclone $*" >> "$` + EnvCallLog + `"
case "$1" in
listremotes) printf 'existing:\n' ;;
esac
exit 0
`

const fakeUnison = `#!/bin/sh
echo "unison $*" >> "$` + EnvCallLog + `"
case "$` + EnvUnisonMode + `" in
fail) echo "Fatal error: lost connection to replica" >&2; exit 3 ;;
block)
	trap 'exit 0' TERM INT
	while :; do sleep 0.1; done
	;;
esac
exit 0
`

const fakeFusermount = `#!/bin/sh
echo "fusermount $*" >> "$` + EnvCallLog + `"
exit 0
`

// WriteFakeTools writes the fake tools the way an AppImage install sees
// them: rclone and unison into bundleDir (point APPDIR at its grandparent),
// fusermount into systemDir, which must be on PATH. Both directories are
// created if needed.
func WriteFakeTools(bundleDir, systemDir string) error {
	placement := []struct {
		dir, name, body string
	}{
		{bundleDir, "rclone", fakeRclone},
		{bundleDir, "unison", fakeUnison},
		{systemDir, "fusermount", fakeFusermount},
	}

	for _, p := range placement {
		if err := os.MkdirAll(p.dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", p.dir, err)
		}

		if err := os.WriteFile(filepath.Join(p.dir, p.name), []byte(p.body), 0o755); err != nil {
			return fmt.Errorf("writing fake %s: %w", p.name, err)
		}
	}

	return nil
}

// ReadCallLog returns the recorded tool invocations in order, one
// "tool args..." line each. A missing log means nothing ran.
func ReadCallLog(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil
	}

	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns the fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}
