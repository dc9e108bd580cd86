package wizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// Console is a running interactive process: reads return its output, writes
// feed its input. Wait blocks until the process exits; Close ends the
// session, killing the process if it is still running, and reaps it.
type Console interface {
	io.ReadWriter
	Wait() error
	Close() error
}

// Spawner starts the interactive configuration process.
type Spawner interface {
	Spawn(ctx context.Context) (Console, error)
}

// RemoteLister returns the names of the remotes rclone already knows about.
type RemoteLister interface {
	ListRemotes(ctx context.Context) ([]string, error)
}

// PTYSpawner runs "rclone config" on a pseudo-terminal, which rclone needs
// to show its password prompts.
type PTYSpawner struct {
	RclonePath string
}

// Spawn starts rclone config. The process is not tied to ctx; Close ends it.
func (s *PTYSpawner) Spawn(_ context.Context) (Console, error) {
	cmd := exec.Command(s.RclonePath, "config")

	f, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("starting %s config: %w", s.RclonePath, err)
	}

	return &ptyConsole{cmd: cmd, pty: f}, nil
}

type ptyConsole struct {
	cmd *exec.Cmd
	pty *os.File

	waitOnce sync.Once
	waitErr  error
}

func (c *ptyConsole) Read(p []byte) (int, error)  { return c.pty.Read(p) }
func (c *ptyConsole) Write(p []byte) (int, error) { return c.pty.Write(p) }

func (c *ptyConsole) Wait() error {
	c.waitOnce.Do(func() {
		c.waitErr = c.cmd.Wait()
	})

	return c.waitErr
}

func (c *ptyConsole) Close() error {
	closeErr := c.pty.Close()

	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("killing rclone config: %w", err)
	}

	// The exit status of a killed wizard is expected to be non-zero.
	_ = c.Wait()

	return closeErr
}

// isPTYClosed reports whether err is how a pty master signals that the
// slave side has gone away.
func isPTYClosed(err error) bool {
	return errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}

// RcloneLister runs "rclone listremotes".
type RcloneLister struct {
	RclonePath string
}

// ListRemotes returns the configured remote names without the trailing colon.
func (l *RcloneLister) ListRemotes(ctx context.Context) ([]string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, l.RclonePath, "listremotes")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rclone listremotes: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseListRemotes(stdout.String()), nil
}

// parseListRemotes parses "name:" lines as printed by rclone listremotes.
func parseListRemotes(out string) []string {
	var names []string

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		names = append(names, strings.TrimSuffix(line, ":"))
	}

	return names
}
