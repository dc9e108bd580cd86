// Package prompt asks the operator for values the storage wizard cannot
// script, such as server URLs and credentials. Values are collected on the
// terminal when one is attached, and through zenity dialogs otherwise.
package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ErrCanceled is returned when the operator dismisses a prompt.
var ErrCanceled = errors.New("prompt: canceled by operator")

// LoginDelimiter separates username and password in a Login result.
const LoginDelimiter = "|"

// Prompter collects operator input. Entry returns free text; Login returns
// a username and a masked password joined by LoginDelimiter.
type Prompter interface {
	Entry(ctx context.Context, title string) (string, error)
	Login(ctx context.Context, title string) (string, error)
}

// Auto returns a Terminal prompter when in is a terminal, and a Zenity
// prompter running zenityPath otherwise.
func Auto(in *os.File, out io.Writer, zenityPath string) Prompter {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return &Terminal{In: in, Out: out}
	}

	return &Zenity{Path: zenityPath}
}
