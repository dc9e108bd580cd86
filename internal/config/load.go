package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mattn/go-shellwords"
)

// Resolved is the effective configuration after all override layers, plus
// the path of the file it was read from.
type Resolved struct {
	Config
	Path string `json:"config_path"`
}

// Load reads and parses a TOML config file and returns a usable Config no
// matter what the file contains. A missing file yields defaults silently.
// An unparsable file is reported and replaced by defaults wholesale; unknown
// keys and invalid values are reported and the affected fields keep their
// defaults.
func Load(path string, logger *slog.Logger) *Config {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("config file not found, using defaults", slog.String("path", path))

			return DefaultConfig()
		}

		logger.Error("config file is malformed, using defaults",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		// A failed decode may leave cfg half-populated.
		return DefaultConfig()
	}

	for _, err := range unknownKeyErrors(&md) {
		logger.Warn("ignoring config key", slog.String("path", path), slog.String("error", err.Error()))
	}

	repairInvalid(cfg, logger)

	return cfg
}

// Resolve loads configuration and applies the four-layer override chain:
// defaults -> config file -> environment variables -> CLI flags.
func Resolve(env EnvOverrides, cli CLIOverrides, logger *slog.Logger) *Resolved {
	cfgPath := ResolvePath(env, cli)
	cfg := Load(cfgPath, logger)

	if env.RcloneArgs != nil {
		cfg.RcloneArgs = splitArgs(EnvRcloneArgs, *env.RcloneArgs, cfg.RcloneArgs, logger)
	}

	if env.UnisonArgs != nil {
		cfg.UnisonArgs = splitArgs(EnvUnisonArgs, *env.UnisonArgs, cfg.UnisonArgs, logger)
	}

	if cli.Remote != nil {
		cfg.Remote = *cli.Remote
	}

	if cli.Cooldown != nil {
		cfg.SyncCooldown = *cli.Cooldown
	}

	// CLI values bypass the file-level repair, so check them again.
	repairInvalid(cfg, logger)

	return &Resolved{Config: *cfg, Path: cfgPath}
}

// ResolvePath returns the config file path: CLI > env > default.
func ResolvePath(env EnvOverrides, cli CLIOverrides) string {
	if cli.ConfigPath != "" {
		return cli.ConfigPath
	}

	if env.ConfigPath != "" {
		return env.ConfigPath
	}

	return DefaultConfigPath()
}

// splitArgs parses a shell-quoted argument string. An unparsable value is
// reported and the configured list is kept.
func splitArgs(name, raw string, fallback []string, logger *slog.Logger) []string {
	args, err := shellwords.Parse(raw)
	if err != nil {
		logger.Warn("ignoring unparsable environment override",
			slog.String("variable", name),
			slog.String("error", err.Error()),
		)

		return fallback
	}

	if args == nil {
		return []string{}
	}

	return args
}

// PollEvery returns the watchdog and retry interval.
func (c *Config) PollEvery() time.Duration {
	return durationOr(c.PollInterval, defaultPollInterval)
}

// PromptWait returns the wizard's per-prompt timeout. Zero means wait for
// as long as the rclone process lives.
func (c *Config) PromptWait() time.Duration {
	return durationOr(c.PromptTimeout, defaultPromptTimeout)
}

// ConnectivityDialTimeout returns the dial timeout for the reachability probe.
func (c *Config) ConnectivityDialTimeout() time.Duration {
	return durationOr(c.ConnectivityTimeout, defaultConnectivityTimeout)
}

func durationOr(s, fallback string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}

	return d
}
