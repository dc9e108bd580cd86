package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEnvOverrides_AllSet(t *testing.T) {
	t.Setenv("SAVESYNC_CONFIG", "/custom/config.toml")
	t.Setenv("RCLONE_ARGS", "--fast-list")
	t.Setenv("UNISON_ARGS", "")

	overrides := ReadEnvOverrides()
	assert.Equal(t, "/custom/config.toml", overrides.ConfigPath)
	require.NotNil(t, overrides.RcloneArgs)
	assert.Equal(t, "--fast-list", *overrides.RcloneArgs)
	require.NotNil(t, overrides.UnisonArgs, "set-but-empty counts as an override")
	assert.Empty(t, *overrides.UnisonArgs)
}

func TestReadEnvOverrides_NoneSet(t *testing.T) {
	t.Setenv("SAVESYNC_CONFIG", "")
	t.Setenv("RCLONE_ARGS", "")
	t.Setenv("UNISON_ARGS", "")
	os.Unsetenv("RCLONE_ARGS")
	os.Unsetenv("UNISON_ARGS")

	overrides := ReadEnvOverrides()
	assert.Empty(t, overrides.ConfigPath)
	assert.Nil(t, overrides.RcloneArgs)
	assert.Nil(t, overrides.UnisonArgs)
}

func TestEnvVarConstants(t *testing.T) {
	assert.Equal(t, "SAVESYNC_CONFIG", EnvConfig)
	assert.Equal(t, "RCLONE_ARGS", EnvRcloneArgs)
	assert.Equal(t, "UNISON_ARGS", EnvUnisonArgs)
	assert.Equal(t, "APPDIR", EnvAppDir)
}
