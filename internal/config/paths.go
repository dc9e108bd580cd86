package config

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Application directory name, created under the Emulation tools directory.
const appName = "savesync"

// File and directory names inside the application directory.
const (
	configFileName       = "config.toml"
	legacyConfigFileName = "config.yml"
	mountDirName         = "mount"
	stateFileName        = "state.db"
	pidFileName          = "savesync.pid"
)

// remoteSavesPath is the folder on the remote that mirrors the local save
// directory.
const remoteSavesPath = "/Emulation/saves/"

// EmulationRoot returns the EmuDeck emulation root, ~/Emulation.
func EmulationRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, "Emulation")
}

// AppDir returns ~/Emulation/tools/savesync, which holds the config file,
// the mount point and the session ledger.
func AppDir() string {
	root := EmulationRoot()
	if root == "" {
		return ""
	}

	return filepath.Join(root, "tools", appName)
}

// DefaultConfigPath returns the full path to the default config file.
// This is used as the fallback when neither SAVESYNC_CONFIG nor --config
// is specified.
func DefaultConfigPath() string {
	return inAppDir(configFileName)
}

// LegacyConfigPath returns the path of the YAML config written by older
// releases. It is imported once when no TOML config exists.
func LegacyConfigPath() string {
	return inAppDir(legacyConfigFileName)
}

// MountPoint returns the local directory the remote is mounted on.
func MountPoint() string {
	return inAppDir(mountDirName)
}

// StatePath returns the path of the SQLite session ledger.
func StatePath() string {
	return inAppDir(stateFileName)
}

// PIDFilePath returns the path of the sync service PID file.
func PIDFilePath() string {
	return inAppDir(pidFileName)
}

func inAppDir(name string) string {
	dir := AppDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, name)
}

// RemotePath returns the rclone path of the saves folder on the named
// remote, e.g. "saves:/Emulation/saves/".
func RemotePath(remote string) string {
	return remote + ":" + remoteSavesPath
}

// BinDir returns the bundled tool directory when running from an AppImage
// ($APPDIR/usr/bin), or "" when tools come from PATH.
func BinDir() string {
	appDir := os.Getenv(EnvAppDir)
	if appDir == "" {
		return ""
	}

	return filepath.Join(appDir, "usr", "bin")
}

// ToolPath resolves a tool shipped in the AppImage (rclone, unison): the
// bundled copy when BinDir is set, otherwise a PATH lookup.
func ToolPath(name string) string {
	if dir := BinDir(); dir != "" {
		return filepath.Join(dir, name)
	}

	return SystemToolPath(name)
}

// SystemToolPath resolves a tool the host provides (fusermount, zenity)
// through PATH only, even under an AppImage: fusermount is setuid and never
// bundled. An unresolvable tool is returned by bare name so the eventual
// exec reports a clear "not found" error.
func SystemToolPath(name string) string {
	if p, err := exec.LookPath(name); err == nil {
		return p
	}

	return name
}
