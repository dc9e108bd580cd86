package prompt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// zenityCanceled is the exit status of a dismissed zenity dialog.
const zenityCanceled = 1

// Zenity prompts through GTK dialogs, for when no terminal is attached.
type Zenity struct {
	Path string
}

// Entry shows a text entry dialog.
func (z *Zenity) Entry(ctx context.Context, title string) (string, error) {
	return z.run(ctx, "--entry", "--title="+title, "--text="+title)
}

// Login shows a username and password dialog. zenity prints the pair
// joined by LoginDelimiter.
func (z *Zenity) Login(ctx context.Context, title string) (string, error) {
	return z.run(ctx, "--password", "--username", "--title="+title)
}

func (z *Zenity) run(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, z.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		var ee *exec.ExitError
		if errors.As(err, &ee) && ee.ExitCode() == zenityCanceled {
			return "", ErrCanceled
		}

		return "", fmt.Errorf("prompt: running zenity: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimRight(stdout.String(), "\r\n"), nil
}
