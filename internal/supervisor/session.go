package supervisor

import (
	"fmt"
	"time"
)

// Session is the input of one mount, sync, unmount cycle.
type Session struct {
	MountPoint   string        // local directory the remote is mounted on
	LocalPath    string        // emulator save directory being synchronized
	RemotePath   string        // rclone path, e.g. "saves:/Emulation/saves/"
	Cooldown     string        // unison -repeat value: "watch" or seconds
	RcloneArgs   []string      // appended to rclone mount
	UnisonArgs   []string      // appended to unison
	PollInterval time.Duration // watchdog probe interval and retry delay
}

// Validate checks that every required field is set.
func (s *Session) Validate() error {
	switch {
	case s.MountPoint == "":
		return fmt.Errorf("supervisor: session has no mount point")
	case s.LocalPath == "":
		return fmt.Errorf("supervisor: session has no local path")
	case s.RemotePath == "":
		return fmt.Errorf("supervisor: session has no remote path")
	case s.Cooldown == "":
		return fmt.Errorf("supervisor: session has no sync cooldown")
	case s.PollInterval <= 0:
		return fmt.Errorf("supervisor: poll interval must be positive, got %s", s.PollInterval)
	}

	return nil
}
