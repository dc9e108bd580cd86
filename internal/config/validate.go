package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Validation range constants.
const (
	minPollInterval        = 500 * time.Millisecond
	minConnectivityTimeout = 100 * time.Millisecond
	maxRemoteNameLength    = 64
)

// remoteNamePattern mirrors rclone's remote-name grammar: letters, digits,
// "_", "-", ".", "+", "@" and space, not starting with "-" or space.
var remoteNamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.+@][\p{L}\p{N}_.+@ -]*$`)

// cooldownPattern accepts the unison -repeat forms: seconds, "watch", or
// "watch+seconds".
var cooldownPattern = regexp.MustCompile(`^(watch|[1-9][0-9]*|watch\+[1-9][0-9]*)$`)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validLogFormats = map[string]bool{"auto": true, "text": true, "json": true}

// fieldCheck pairs a config key with its validator and a reset to default.
type fieldCheck struct {
	key      string
	validate func(*Config) error
	reset    func(*Config)
}

var fieldChecks = []fieldCheck{
	{"remote", func(c *Config) error { return ValidateRemoteName(c.Remote) },
		func(c *Config) { c.Remote = DefaultRemote }},
	{"sync_cooldown", func(c *Config) error { return validateCooldown(c.SyncCooldown) },
		func(c *Config) { c.SyncCooldown = defaultSyncCooldown }},
	{"poll_interval", func(c *Config) error { return validateMinDuration(c.PollInterval, minPollInterval) },
		func(c *Config) { c.PollInterval = defaultPollInterval }},
	{"prompt_timeout", func(c *Config) error { return validateMinDuration(c.PromptTimeout, 0) },
		func(c *Config) { c.PromptTimeout = defaultPromptTimeout }},
	{"log_level", func(c *Config) error { return validateEnum(c.LogLevel, validLogLevels) },
		func(c *Config) { c.LogLevel = defaultLogLevel }},
	{"log_format", func(c *Config) error { return validateEnum(c.LogFormat, validLogFormats) },
		func(c *Config) { c.LogFormat = defaultLogFormat }},
	{"connectivity_address", func(c *Config) error { return validateHostPort(c.ConnectivityAddress) },
		func(c *Config) { c.ConnectivityAddress = defaultConnectivityAddress }},
	{"connectivity_timeout", func(c *Config) error {
		return validateMinDuration(c.ConnectivityTimeout, minConnectivityTimeout)
	}, func(c *Config) { c.ConnectivityTimeout = defaultConnectivityTimeout }},
}

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	for _, fc := range fieldChecks {
		if err := fc.validate(cfg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", fc.key, err))
		}
	}

	return errors.Join(errs...)
}

// repairInvalid resets every invalid field to its default, logging each one.
// Nil argument lists (e.g. "rclone_args = []" decoded oddly) become empty.
func repairInvalid(cfg *Config, logger *slog.Logger) {
	cfg.Remote = norm.NFC.String(cfg.Remote)

	for _, fc := range fieldChecks {
		err := fc.validate(cfg)
		if err == nil {
			continue
		}

		fc.reset(cfg)
		logger.Warn("invalid config value, using default",
			slog.String("key", fc.key),
			slog.String("error", err.Error()),
		)
	}

	if cfg.RcloneArgs == nil {
		cfg.RcloneArgs = []string{}
	}

	if cfg.UnisonArgs == nil {
		cfg.UnisonArgs = []string{}
	}
}

// ValidateRemoteName reports whether name is usable as an rclone remote name.
func ValidateRemoteName(name string) error {
	if name == "" {
		return fmt.Errorf("remote name must not be empty")
	}

	if len(name) > maxRemoteNameLength {
		return fmt.Errorf("remote name %q is longer than %d bytes", name, maxRemoteNameLength)
	}

	if !remoteNamePattern.MatchString(name) || strings.HasSuffix(name, " ") {
		return fmt.Errorf("remote name %q may only contain letters, digits, '_', '-', '.', '+', '@' and space, "+
			"and must not start with '-' or space or end with space", name)
	}

	return nil
}

func validateCooldown(s string) error {
	if !cooldownPattern.MatchString(s) {
		return fmt.Errorf("%q is not a unison repeat value (seconds, \"watch\" or \"watch+seconds\")", s)
	}

	return nil
}

func validateMinDuration(s string, minimum time.Duration) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	if d < minimum {
		return fmt.Errorf("duration %s is below the minimum %s", d, minimum)
	}

	return nil
}

func validateEnum(s string, allowed map[string]bool) error {
	if allowed[s] {
		return nil
	}

	keys := make([]string, 0, len(allowed))
	for k := range allowed {
		keys = append(keys, k)
	}

	return fmt.Errorf("%q is not one of %s", s, strings.Join(sortedCopy(keys), ", "))
}

func validateHostPort(s string) error {
	host, port, err := net.SplitHostPort(s)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", s, err)
	}

	if host == "" || port == "" {
		return fmt.Errorf("address %q needs both host and port", s)
	}

	return nil
}
