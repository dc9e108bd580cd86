package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// legacyConfig is the YAML schema used by releases before the TOML switch.
type legacyConfig struct {
	Remote       *string  `yaml:"remote"`
	SyncCooldown *string  `yaml:"sync-cooldown"`
	RcloneArgs   []string `yaml:"rclone-args"`
	UnisonArgs   []string `yaml:"unison-args"`
}

// ImportLegacy reads a legacy config.yml and returns its sync settings with
// defaults filled in for absent keys. Errors wrap os.ErrNotExist when the
// file is missing.
func ImportLegacy(path string) (*SyncConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading legacy config: %w", err)
	}

	var lc legacyConfig
	if err := yaml.Unmarshal(data, &lc); err != nil {
		return nil, fmt.Errorf("parsing legacy config %s: %w", path, err)
	}

	sc := defaultSyncConfig()

	if lc.Remote != nil {
		sc.Remote = *lc.Remote
	}

	if lc.SyncCooldown != nil {
		sc.SyncCooldown = *lc.SyncCooldown
	}

	if lc.RcloneArgs != nil {
		sc.RcloneArgs = lc.RcloneArgs
	}

	if lc.UnisonArgs != nil {
		sc.UnisonArgs = lc.UnisonArgs
	}

	return &sc, nil
}
