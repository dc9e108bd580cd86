// Package config implements TOML configuration loading, validation, and
// path resolution for savesync. Values resolve through a four-layer chain
// (defaults -> config file -> environment -> CLI flags). Unlike a strict
// loader, a malformed file never stops a run: problems are logged and the
// affected values fall back to their defaults.
package config

// Config is the top-level configuration structure parsed from the TOML file.
// The layout is flat: every key lives at the top level of config.toml.
type Config struct {
	SyncConfig
	WizardConfig
	LoggingConfig
	NetworkConfig
}

// SyncConfig controls the mount and sync tools.
type SyncConfig struct {
	Remote       string   `toml:"remote" json:"remote"`
	SyncCooldown string   `toml:"sync_cooldown" json:"sync_cooldown"`
	RcloneArgs   []string `toml:"rclone_args" json:"rclone_args"`
	UnisonArgs   []string `toml:"unison_args" json:"unison_args"`
	PollInterval string   `toml:"poll_interval" json:"poll_interval"`
}

// WizardConfig controls the rclone config wizard driver.
type WizardConfig struct {
	PromptTimeout string `toml:"prompt_timeout" json:"prompt_timeout"`
}

// LoggingConfig controls log output: level and format.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level" json:"log_level"`
	LogFormat string `toml:"log_format" json:"log_format"`
}

// NetworkConfig controls the connectivity probe used by the watchdog.
type NetworkConfig struct {
	ConnectivityAddress string `toml:"connectivity_address" json:"connectivity_address"`
	ConnectivityTimeout string `toml:"connectivity_timeout" json:"connectivity_timeout"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to zero value".
type CLIOverrides struct {
	ConfigPath string  // --config flag (empty = use default)
	Remote     *string // --remote flag
	Cooldown   *string // --cooldown flag
}
