package wizard

import (
	"context"
	"io"
	"strings"
	"sync"
)

// scriptedConsole plays a conversational process: it prints prompts[0] at
// start and the next prompt after every line it receives. Once the prompts
// run out it exits (EOF), or immediately after the last prompt when hangup
// is set.
type scriptedConsole struct {
	out  *io.PipeReader
	emit chan string

	mu      sync.Mutex
	prompts []string
	next    int
	partial string
	replies []string
	closed  bool
	emitted bool // emit channel closed
	hangup  bool
}

func newScriptedConsole(hangup bool, prompts ...string) *scriptedConsole {
	r, w := io.Pipe()

	c := &scriptedConsole{
		out:     r,
		emit:    make(chan string, len(prompts)+1),
		prompts: prompts,
		hangup:  hangup,
	}

	go func() {
		for s := range c.emit {
			if _, err := io.WriteString(w, s); err != nil {
				break
			}
		}

		w.Close()
	}()

	c.mu.Lock()
	c.emitNextLocked()
	c.mu.Unlock()

	return c
}

// emitNextLocked prints the next prompt surrounded by the kind of help text
// rclone prints around its prompts.
func (c *scriptedConsole) emitNextLocked() {
	if c.emitted {
		return
	}

	if c.next >= len(c.prompts) {
		c.emitted = true
		close(c.emit)

		return
	}

	c.emit <- "Option help text.\nChoose a number from below.\n" + c.prompts[c.next] + " "
	c.next++

	if c.hangup && c.next == len(c.prompts) {
		c.emitted = true
		close(c.emit)
	}
}

func (c *scriptedConsole) Read(p []byte) (int, error) { return c.out.Read(p) }

func (c *scriptedConsole) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.partial += string(p)

	for {
		line, rest, ok := strings.Cut(c.partial, "\n")
		if !ok {
			break
		}

		c.partial = rest
		c.replies = append(c.replies, line)
		c.emitNextLocked()
	}

	return len(p), nil
}

func (c *scriptedConsole) Wait() error { return nil }

func (c *scriptedConsole) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if !c.emitted {
		c.emitted = true
		close(c.emit)
	}

	return c.out.Close()
}

func (c *scriptedConsole) Replies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.replies...)
}

func (c *scriptedConsole) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

type fakeSpawner struct {
	console Console
	spawned int
}

func (s *fakeSpawner) Spawn(context.Context) (Console, error) {
	s.spawned++

	return s.console, nil
}

type fakeLister struct {
	remotes []string
	err     error
	calls   int
}

func (l *fakeLister) ListRemotes(context.Context) ([]string, error) {
	l.calls++

	return l.remotes, l.err
}

type fakeSecrets struct {
	entry      string
	login      string
	err        error
	entryCalls int
	loginCalls int
}

func (s *fakeSecrets) Entry(context.Context, string) (string, error) {
	s.entryCalls++

	return s.entry, s.err
}

func (s *fakeSecrets) Login(context.Context, string) (string, error) {
	s.loginCalls++

	return s.login, s.err
}
