package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig     = "SAVESYNC_CONFIG"
	EnvRcloneArgs = "RCLONE_ARGS"
	EnvUnisonArgs = "UNISON_ARGS"
	EnvAppDir     = "APPDIR"
)

// EnvOverrides holds values derived from environment variables.
// The argument overrides are pointers because an explicitly empty
// RCLONE_ARGS still replaces the configured list.
type EnvOverrides struct {
	ConfigPath string  // SAVESYNC_CONFIG: override config file path
	RcloneArgs *string // RCLONE_ARGS: shell-quoted extra rclone mount args
	UnisonArgs *string // UNISON_ARGS: shell-quoted extra unison args
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify the Config; Resolve applies the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		RcloneArgs: lookupEnv(EnvRcloneArgs),
		UnisonArgs: lookupEnv(EnvUnisonArgs),
	}
}

func lookupEnv(key string) *string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	return &v
}
