package supervisor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var testTools = Tools{Rclone: "/opt/bin/rclone", Unison: "/opt/bin/unison", Fusermount: "fusermount"}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testSession(t *testing.T) Session {
	t.Helper()

	dir := t.TempDir()

	return Session{
		MountPoint:   dir + "/mount",
		LocalPath:    dir + "/saves",
		RemotePath:   "saves:/Emulation/saves/",
		Cooldown:     "watch",
		PollInterval: 10 * time.Millisecond,
	}
}

// call is one command seen by fakeRunner.
type call struct {
	argv      []string
	at        time.Time
	ctxDone   bool // ctx was already cancelled when the command started
	cancelled bool // the command was stopped through its context
}

// fakeRunner records commands. Handlers keyed by program path decide the
// outcome; without a handler a command succeeds immediately.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []call
	handlers map[string]func(ctx context.Context, c Command) error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{handlers: make(map[string]func(context.Context, Command) error)}
}

func (r *fakeRunner) on(path string, fn func(ctx context.Context, c Command) error) {
	r.handlers[path] = fn
}

func (r *fakeRunner) Run(ctx context.Context, c Command) error {
	r.mu.Lock()
	idx := len(r.calls)
	r.calls = append(r.calls, call{argv: c.argv(), at: time.Now(), ctxDone: ctx.Err() != nil})
	fn := r.handlers[c.Path]
	r.mu.Unlock()

	if fn == nil {
		return nil
	}

	err := fn(ctx, c)

	if ctx.Err() != nil {
		r.mu.Lock()
		r.calls[idx].cancelled = true
		r.mu.Unlock()
	}

	return err
}

func (r *fakeRunner) Calls() []call {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]call(nil), r.calls...)
}

// Steps returns the commands run so far as "rclone mkdir", "rclone mount",
// "unison" and "fusermount".
func (r *fakeRunner) Steps() []string {
	var out []string

	for _, c := range r.Calls() {
		name := filepath.Base(c.argv[0])
		if name == "rclone" {
			name += " " + c.argv[1]
		}

		out = append(out, name)
	}

	return out
}

func (r *fakeRunner) count(path string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.argv[0] == path {
			n++
		}
	}

	return n
}

// blockUntilCancelled simulates unison running until it is terminated.
func blockUntilCancelled(ctx context.Context, c Command) error {
	<-ctx.Done()

	return &ExitError{Command: c, Err: ctx.Err()}
}

// fakeChecker reports connected for the first `up` probes, then
// disconnected. A negative up means always connected.
type fakeChecker struct {
	up     int64
	probes atomic.Int64

	mu     sync.Mutex
	lostAt time.Time
}

func (c *fakeChecker) Connected(context.Context) bool {
	n := c.probes.Add(1)
	if c.up < 0 || n <= c.up {
		return true
	}

	c.mu.Lock()
	if c.lostAt.IsZero() {
		c.lostAt = time.Now()
	}
	c.mu.Unlock()

	return false
}

func (c *fakeChecker) LostAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lostAt
}

// funcChecker adapts a function to Checker.
type funcChecker func(ctx context.Context) bool

func (f funcChecker) Connected(ctx context.Context) bool { return f(ctx) }

type fakeRecorder struct {
	mu      sync.Mutex
	reports []*Report
	onSave  func(*Report)
}

func (r *fakeRecorder) Record(_ context.Context, rep *Report) error {
	r.mu.Lock()
	r.reports = append(r.reports, rep)
	r.mu.Unlock()

	if r.onSave != nil {
		r.onSave(rep)
	}

	return nil
}

func (r *fakeRecorder) Reports() []*Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*Report(nil), r.reports...)
}

func newTestSupervisor(t *testing.T, runner Runner, checker Checker, rec Recorder) *Supervisor {
	t.Helper()

	return New(&Config{
		Tools:    testTools,
		Runner:   runner,
		Checker:  checker,
		Recorder: rec,
		Logger:   testLogger(t),
	})
}
