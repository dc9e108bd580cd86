package wizard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Expecter buffer limits. The buffer keeps only the most recent output so a
// chatty process cannot grow it without bound; anchors are far shorter.
const (
	readChunkSize  = 4096
	maxBufferBytes = 64 * 1024
	errorTailBytes = 256
)

// expecter matches literal prompt anchors against a process output stream.
// Output is consumed up to the end of each match; anything after it stays
// buffered for the next expect call.
type expecter struct {
	chunks  chan []byte
	done    chan struct{}
	readErr error // valid once chunks is closed
	buf     []byte
	timeout time.Duration // per call; zero waits for EOF
}

// newExpecter starts a goroutine that copies r into the expecter until r
// returns an error or stop is called.
func newExpecter(r io.Reader, timeout time.Duration) *expecter {
	e := &expecter{
		chunks:  make(chan []byte),
		done:    make(chan struct{}),
		timeout: timeout,
	}

	go func() {
		defer close(e.chunks)

		for {
			b := make([]byte, readChunkSize)

			n, err := r.Read(b)
			if n > 0 {
				select {
				case e.chunks <- b[:n]:
				case <-e.done:
					return
				}
			}

			if err != nil {
				e.readErr = err
				return
			}
		}
	}()

	return e
}

// stop releases the reader goroutine once it next produces output. The
// underlying reader must still be closed to unblock a pending Read.
func (e *expecter) stop() {
	close(e.done)
}

// expect blocks until one of anchors appears in the output and returns its
// index. When several match, the one appearing earliest in the output wins.
func (e *expecter) expect(ctx context.Context, anchors ...string) (int, error) {
	var deadline <-chan time.Time

	if e.timeout > 0 {
		timer := time.NewTimer(e.timeout)
		defer timer.Stop()

		deadline = timer.C
	}

	for {
		if idx, end := e.match(anchors); idx >= 0 {
			e.buf = e.buf[end:]
			return idx, nil
		}

		select {
		case chunk, ok := <-e.chunks:
			if !ok {
				return -1, e.promptError(anchors, exitReason(e.readErr))
			}

			e.buf = append(e.buf, chunk...)
			if len(e.buf) > maxBufferBytes {
				e.buf = e.buf[len(e.buf)-maxBufferBytes:]
			}

		case <-deadline:
			return -1, e.promptError(anchors, fmt.Sprintf("timed out after %s", e.timeout))

		case <-ctx.Done():
			return -1, ctx.Err()
		}
	}
}

// waitEOF discards output until the stream ends, so a process that prints
// while exiting never blocks on a full terminal buffer.
func (e *expecter) waitEOF(ctx context.Context) error {
	var deadline <-chan time.Time

	if e.timeout > 0 {
		timer := time.NewTimer(e.timeout)
		defer timer.Stop()

		deadline = timer.C
	}

	for {
		select {
		case _, ok := <-e.chunks:
			if !ok {
				return nil
			}

		case <-deadline:
			return fmt.Errorf("wizard: rclone config did not exit within %s", e.timeout)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// match returns the index of the anchor found earliest in the buffer and the
// buffer offset just past it, or -1 when none is present.
func (e *expecter) match(anchors []string) (int, int) {
	best, bestPos, bestEnd := -1, -1, -1

	for i, a := range anchors {
		pos := bytes.Index(e.buf, []byte(a))
		if pos < 0 {
			continue
		}

		if bestPos < 0 || pos < bestPos {
			best, bestPos, bestEnd = i, pos, pos+len(a)
		}
	}

	return best, bestEnd
}

func (e *expecter) promptError(anchors []string, reason string) *PromptError {
	tail := e.buf
	if len(tail) > errorTailBytes {
		tail = tail[len(tail)-errorTailBytes:]
	}

	return &PromptError{
		Expected: append([]string(nil), anchors...),
		Output:   string(tail),
		Reason:   reason,
	}
}

// exitReason describes why the output stream ended. A pty master reports
// EIO once the child has exited, which is the same as EOF here.
func exitReason(err error) string {
	if err == nil || errors.Is(err, io.EOF) || isPTYClosed(err) {
		return "process exited"
	}

	return fmt.Sprintf("output stream failed: %v", err)
}
