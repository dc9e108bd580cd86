package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for wizard failures. Use errors.Is to check.
var (
	ErrAlreadyConfigured = errors.New("wizard: remote already configured")
	ErrNoMatchingPrompt  = errors.New("wizard: expected prompt never appeared")
	ErrSecretUnavailable = errors.New("wizard: secret unavailable")
	ErrUnknownProvider   = errors.New("wizard: unknown provider")
)

// PromptError reports which prompt the wizard was waiting for when the
// rclone session ended or went quiet, with the unmatched output that was
// seen instead. Unwraps to ErrNoMatchingPrompt.
type PromptError struct {
	Expected []string
	Output   string
	Reason   string // "process exited" or "timed out after ..."
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("wizard: waiting for %s: %s (last output: %q)",
		quoteAll(e.Expected), e.Reason, e.Output)
}

func (e *PromptError) Unwrap() error {
	return ErrNoMatchingPrompt
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}

	return strings.Join(quoted, " or ")
}
