package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal prompts on a text stream. When In is a terminal, passwords are
// read without echo.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// Entry prints title and reads one line.
func (t *Terminal) Entry(ctx context.Context, title string) (string, error) {
	fmt.Fprintf(t.Out, "%s: ", title)

	return t.readLine(ctx)
}

// Login reads a username line and a password, echo disabled when possible.
func (t *Terminal) Login(ctx context.Context, title string) (string, error) {
	fmt.Fprintln(t.Out, title)
	fmt.Fprint(t.Out, "Username: ")

	user, err := t.readLine(ctx)
	if err != nil {
		return "", err
	}

	fmt.Fprint(t.Out, "Password: ")

	password, err := t.readPassword(ctx)
	if err != nil {
		return "", err
	}

	return user + LoginDelimiter + password, nil
}

func (t *Terminal) lines() *bufio.Reader {
	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}

	return t.reader
}

// readLine returns the next line without its line ending. End of input
// counts as the operator backing out.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	return await(ctx, func() (string, error) {
		line, err := t.lines().ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrCanceled
			}

			return "", fmt.Errorf("prompt: reading input: %w", err)
		}

		return strings.TrimRight(line, "\r\n"), nil
	})
}

func (t *Terminal) readPassword(ctx context.Context) (string, error) {
	f, ok := t.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return t.readLine(ctx)
	}

	return await(ctx, func() (string, error) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(t.Out)

		if err != nil {
			return "", fmt.Errorf("prompt: reading password: %w", err)
		}

		defer wipe(b)

		return string(b), nil
	})
}

// await runs a blocking read and gives up when ctx is done. The read
// itself cannot be interrupted and finishes in the background.
func await(ctx context.Context, read func() (string, error)) (string, error) {
	type result struct {
		s   string
		err error
	}

	ch := make(chan result, 1)

	go func() {
		s, err := read()
		ch <- result{s, err}
	}()

	select {
	case r := <-ch:
		return r.s, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// wipe clears a password buffer once it has been copied.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
