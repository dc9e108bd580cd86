package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_Entry(t *testing.T) {
	var out bytes.Buffer

	term := &Terminal{In: strings.NewReader("https://cloud.example.com\r\n"), Out: &out}

	got, err := term.Entry(context.Background(), "Url to NextCloud server")
	require.NoError(t, err)
	assert.Equal(t, "https://cloud.example.com", got)
	assert.Equal(t, "Url to NextCloud server: ", out.String())
}

func TestTerminal_Login(t *testing.T) {
	var out bytes.Buffer

	// Not a terminal, so the password is read as a plain line.
	term := &Terminal{In: strings.NewReader("alice\ns3cr|et\n"), Out: &out}

	got, err := term.Login(context.Background(), "NextCloud username and password")
	require.NoError(t, err)
	assert.Equal(t, "alice|s3cr|et", got)
	assert.Contains(t, out.String(), "Username: ")
	assert.Contains(t, out.String(), "Password: ")
}

func TestTerminal_EOFCancels(t *testing.T) {
	term := &Terminal{In: strings.NewReader("alice\n"), Out: io.Discard}

	_, err := term.Login(context.Background(), "login")
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestTerminal_ContextCanceled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	term := &Terminal{In: r, Out: io.Discard}

	_, err := term.Entry(ctx, "url")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWipe(t *testing.T) {
	b := []byte("hunter2")
	wipe(b)

	assert.Equal(t, make([]byte, 7), b)
}
