package wizard

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tonimelisma/savesync/internal/prompt"
)

// SecretSource collects operator-supplied values. Entry asks for free text;
// Login asks for a username and password and returns them joined as
// "username|password". A cancelled dialog returns an error.
type SecretSource interface {
	Entry(ctx context.Context, title string) (string, error)
	Login(ctx context.Context, title string) (string, error)
}

// Dialog titles shown to the operator.
const (
	titleServerURL = "Url to NextCloud server"
	titleLogin     = "NextCloud username and password"
)

// replySession carries per-run state for secret replies. The login is
// requested once and reused for the user, password and confirmation steps.
type replySession struct {
	secrets  SecretSource
	user     string
	password string
	haveAuth bool
}

func serverURL(ctx context.Context, s *replySession) (string, error) {
	raw, err := s.secrets.Entry(ctx, titleServerURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrSecretUnavailable, titleServerURL, err)
	}

	url, err := cleanSecret(raw)
	if err != nil {
		return "", fmt.Errorf("%w: server URL: %w", ErrSecretUnavailable, err)
	}

	if url == "" {
		return "", fmt.Errorf("%w: server URL is empty", ErrSecretUnavailable)
	}

	return url, nil
}

func loginUser(ctx context.Context, s *replySession) (string, error) {
	if err := s.ensureLogin(ctx); err != nil {
		return "", err
	}

	return s.user, nil
}

func loginPassword(ctx context.Context, s *replySession) (string, error) {
	if err := s.ensureLogin(ctx); err != nil {
		return "", err
	}

	return s.password, nil
}

func (s *replySession) ensureLogin(ctx context.Context) error {
	if s.haveAuth {
		return nil
	}

	raw, err := s.secrets.Login(ctx, titleLogin)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSecretUnavailable, titleLogin, err)
	}

	user, password, err := splitLogin(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSecretUnavailable, err)
	}

	s.user, s.password, s.haveAuth = user, password, true

	return nil
}

// splitLogin separates a "username|password" login result. The password
// keeps everything after the first delimiter, so it may itself contain "|".
func splitLogin(raw string) (string, string, error) {
	user, password, ok := strings.Cut(raw, prompt.LoginDelimiter)
	if !ok {
		return "", "", fmt.Errorf("login result has no %q delimiter", prompt.LoginDelimiter)
	}

	user, err := cleanSecret(user)
	if err != nil {
		return "", "", fmt.Errorf("username: %w", err)
	}

	if user == "" {
		return "", "", fmt.Errorf("username is empty")
	}

	password, err = cleanSecret(password)
	if err != nil {
		return "", "", fmt.Errorf("password: %w", err)
	}

	return user, password, nil
}

// cleanSecret NFC-normalizes an operator value and strips trailing line
// endings. Any remaining control character is rejected: a newline sent to
// rclone would answer the next prompt too.
func cleanSecret(s string) (string, error) {
	s = strings.TrimRight(norm.NFC.String(s), "\r\n")

	for _, r := range s {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("value contains control character %U", r)
		}
	}

	return s, nil
}
