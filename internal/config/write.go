package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// configFilePermissions is the standard permission mode for config files.
// Owner read/write, group and others read-only.
const configFilePermissions = 0o644

// configDirPermissions is the standard permission mode for config directories.
const configDirPermissions = 0o755

// configHeader is written above the generated settings. Optional settings
// are present as commented-out defaults so users can discover every option
// without reading docs.
const configHeader = `# savesync configuration
# Written on first run. Edit freely; invalid values fall back to defaults.

`

const configOptional = `
# Interval between connectivity checks while syncing, and between retries.
# poll_interval = "2s"

# How long the setup wizard waits for each rclone prompt ("0" = no limit).
# prompt_timeout = "10m"

# Log verbosity (debug, info, warn, error) and format (auto, text, json).
# log_level = "info"
# log_format = "auto"

# Host probed to decide whether the network is up.
# connectivity_address = "www.google.com:80"
# connectivity_timeout = "5s"
`

// renderConfigFile generates the TOML text for a config file holding the
// given sync settings.
func renderConfigFile(sc *SyncConfig) string {
	var b strings.Builder

	b.WriteString(configHeader)
	b.WriteString("# Name of the rclone remote created by 'savesync setup'.\n")
	fmt.Fprintf(&b, "remote = %q\n\n", sc.Remote)
	b.WriteString("# unison -repeat value: seconds, \"watch\" or \"watch+seconds\".\n")
	fmt.Fprintf(&b, "sync_cooldown = %q\n\n", sc.SyncCooldown)
	b.WriteString("# Extra arguments for 'rclone mount' (RCLONE_ARGS overrides).\n")
	fmt.Fprintf(&b, "rclone_args = [%s]\n\n", joinQuoted(sc.RcloneArgs))
	b.WriteString("# Extra arguments for unison (UNISON_ARGS overrides).\n")
	fmt.Fprintf(&b, "unison_args = [%s]\n", joinQuoted(sc.UnisonArgs))
	b.WriteString(configOptional)

	return b.String()
}

// Bootstrap makes sure a config file exists at path. On first run it imports
// the legacy YAML file when one sits next to the default location, otherwise
// it writes the defaults. An existing file is never touched.
func Bootstrap(path string, logger *slog.Logger) error {
	if path == "" {
		return fmt.Errorf("config path is empty (cannot determine home directory)")
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config file: %w", err)
	}

	sc := defaultSyncConfig()

	legacy := LegacyConfigPath()
	if path == DefaultConfigPath() && legacy != "" {
		imported, err := ImportLegacy(legacy)

		switch {
		case err == nil:
			sc = *imported

			logger.Info("imported legacy config", slog.String("from", legacy), slog.String("to", path))
		case !errors.Is(err, os.ErrNotExist):
			logger.Warn("legacy config unreadable, writing defaults",
				slog.String("path", legacy),
				slog.String("error", err.Error()),
			)
		}
	}

	logger.Info("creating config file", slog.String("path", path))

	return atomicWriteFile(path, []byte(renderConfigFile(&sc)))
}

// atomicWriteFile writes data to a temp file in the same directory and
// renames it into place, creating parent directories as needed.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tempPath := f.Name()

	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tempPath, configFilePermissions); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	succeeded = true

	return nil
}
