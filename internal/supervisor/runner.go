package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"
	"syscall"
)

// stderrTailBytes bounds how much captured stderr is kept for errors.
const stderrTailBytes = 4096

// Command is one invocation of an external program.
type Command struct {
	Path    string
	Args    []string
	Capture bool // keep a stderr tail for error reports instead of inheriting stderr
	Detach  bool // own process group, out of reach of terminal Ctrl-C
}

func (c Command) String() string {
	return strings.Join(c.argv(), " ")
}

// argv returns the full argument vector of c, program first.
func (c Command) argv() []string {
	return slices.Concat([]string{c.Path}, c.Args)
}

// Runner executes external commands. Run blocks until the process exits.
// When ctx is cancelled the process is asked to terminate and Run still
// waits for it.
type Runner interface {
	Run(ctx context.Context, c Command) error
}

// ExecRunner runs commands as child processes sharing the terminal.
type ExecRunner struct {
	Logger *slog.Logger
}

// Run starts c and waits for it. Cancelling ctx sends SIGTERM; there is no
// kill escalation, so a child is never left running behind the supervisor.
// A failed exit is returned as *ExitError.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	var tail tailBuffer
	if c.Capture {
		cmd.Stderr = &tail
	}

	// A second Ctrl-C reaches the whole foreground group; teardown must
	// survive it.
	if c.Detach {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	cmd.Cancel = func() error {
		r.Logger.Debug("terminating child process",
			slog.String("command", c.Path),
			slog.Int("pid", cmd.Process.Pid),
		)

		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
			r.Logger.Warn("could not signal child process",
				slog.String("command", c.Path),
				slog.String("error", err.Error()),
			)
		}

		return nil
	}

	r.Logger.Debug("running command", slog.String("command", c.String()))

	if err := cmd.Run(); err != nil {
		return &ExitError{Command: c, Stderr: tail.String(), Err: err}
	}

	return nil
}

// tailBuffer is an io.Writer that keeps only the last stderrTailBytes.
type tailBuffer struct {
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if len(t.buf) > stderrTailBytes {
		t.buf = t.buf[len(t.buf)-stderrTailBytes:]
	}

	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
