package config

// Default values for configuration options. These are "layer 0" of the
// override chain and match what a fresh installation writes to disk.
const (
	DefaultRemote              = "saves"
	defaultSyncCooldown        = "watch"
	defaultPollInterval        = "2s"
	defaultPromptTimeout       = "10m"
	defaultLogLevel            = "info"
	defaultLogFormat           = "auto"
	defaultConnectivityAddress = "www.google.com:80"
	defaultConnectivityTimeout = "5s"
)

// DefaultConfig returns a Config populated with all default values.
// This is used both as the starting point for TOML decoding (so unset
// fields retain defaults) and as the fallback when the file is unusable.
func DefaultConfig() *Config {
	return &Config{
		SyncConfig:    defaultSyncConfig(),
		WizardConfig:  defaultWizardConfig(),
		LoggingConfig: defaultLoggingConfig(),
		NetworkConfig: defaultNetworkConfig(),
	}
}

func defaultSyncConfig() SyncConfig {
	return SyncConfig{
		Remote:       DefaultRemote,
		SyncCooldown: defaultSyncCooldown,
		RcloneArgs:   []string{},
		UnisonArgs:   []string{},
		PollInterval: defaultPollInterval,
	}
}

func defaultWizardConfig() WizardConfig {
	return WizardConfig{
		PromptTimeout: defaultPromptTimeout,
	}
}

func defaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}

func defaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		ConnectivityAddress: defaultConnectivityAddress,
		ConnectivityTimeout: defaultConnectivityTimeout,
	}
}
