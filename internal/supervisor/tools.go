package supervisor

// Tools holds the paths of the external programs a session runs.
type Tools struct {
	Rclone     string
	Unison     string
	Fusermount string
}

// ensureRemoteDir creates the remote save directory. rclone mkdir succeeds
// when the directory already exists.
func (t Tools) ensureRemoteDir(s *Session) Command {
	return Command{Path: t.Rclone, Args: []string{"mkdir", s.RemotePath}, Capture: true}
}

// mount backgrounds an rclone FUSE mount. The daemon outlives the command
// and keeps its stdio, so output is not captured.
func (t Tools) mount(s *Session) Command {
	args := []string{"mount", s.RemotePath, s.MountPoint, "--daemon"}

	return Command{Path: t.Rclone, Args: append(args, s.RcloneArgs...)}
}

// sync runs unison in the foreground between the mount and the local
// directory. Unison output goes to the terminal.
func (t Tools) sync(s *Session) Command {
	args := []string{
		s.MountPoint, s.LocalPath,
		"-repeat", s.Cooldown,
		"-batch",
		"-copyonconflict",
		"-prefer", "newer",
		"-links", "true",
		"-follow", "Name *",
	}

	return Command{Path: t.Unison, Args: append(args, s.UnisonArgs...)}
}

// unmount runs detached from the terminal's process group so an impatient
// Ctrl-C during teardown cannot leave the mount behind.
func (t Tools) unmount(s *Session) Command {
	return Command{Path: t.Fusermount, Args: []string{"-u", s.MountPoint}, Capture: true, Detach: true}
}
