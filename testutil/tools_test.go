package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFakeTools_RecordCalls(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "usr", "bin")
	system := filepath.Join(dir, "system")
	logPath := filepath.Join(dir, "calls.log")

	require.NoError(t, WriteFakeTools(bin, system))
	assert.NoFileExists(t, filepath.Join(bin, "fusermount"), "fusermount is a host tool")

	run := func(mode, name string, args ...string) error {
		toolDir := bin
		if name == "fusermount" {
			toolDir = system
		}

		cmd := exec.Command(filepath.Join(toolDir, name), args...)
		cmd.Env = append(os.Environ(), EnvCallLog+"="+logPath, EnvUnisonMode+"="+mode)

		return cmd.Run()
	}

	require.NoError(t, run("ok", "rclone", "mkdir", "saves:/Emulation/saves/"))
	require.NoError(t, run("ok", "unison", "a", "b"))
	require.NoError(t, run("ok", "fusermount", "-u", "/mnt"))

	err := run("fail", "unison", "a", "b")

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())

	assert.Equal(t, []string{
		"rclone mkdir saves:/Emulation/saves/",
		"unison a b",
		"fusermount -u /mnt",
		"unison a b",
	}, ReadCallLog(logPath))
}

func TestReadCallLog_Missing(t *testing.T) {
	assert.Nil(t, ReadCallLog(filepath.Join(t.TempDir(), "none.log")))
}
