package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/savesync/internal/config"
	"github.com/tonimelisma/savesync/internal/supervisor"
)

func TestNewSyncCmd_Structure(t *testing.T) {
	cmd := newSyncCmd()

	assert.Equal(t, "sync", cmd.Name())
	assert.NotNil(t, cmd.Flags().Lookup("once"))
	assert.NotNil(t, cmd.Flags().Lookup("cooldown"))
	assert.Error(t, cmd.Args(cmd, nil), "save directory is required")
}

func TestSaveDir_Valid(t *testing.T) {
	dir := t.TempDir()

	got, err := saveDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestSaveDir_RelativeBecomesAbsolute(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "saves"), 0o755))
	t.Chdir(dir)

	got, err := saveDir("saves")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "saves", filepath.Base(got))
}

func TestSaveDir_Missing(t *testing.T) {
	_, err := saveDir(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveDir_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := saveDir(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestNewSession_FromConfig(t *testing.T) {
	home := isolateHome(t)

	cfg := config.DefaultConfig()
	cfg.Remote = "gdrive"
	cfg.SyncCooldown = "30"
	cfg.RcloneArgs = []string{"--vfs-cache-mode", "writes"}
	cfg.UnisonArgs = []string{"-fastcheck", "true"}

	sess := newSession(cfg, "/saves")

	assert.Equal(t, filepath.Join(home, "Emulation", "tools", "savesync", "mount"), sess.MountPoint)
	assert.Equal(t, "/saves", sess.LocalPath)
	assert.Equal(t, "gdrive:/Emulation/saves/", sess.RemotePath)
	assert.Equal(t, "30", sess.Cooldown)
	assert.Equal(t, cfg.RcloneArgs, sess.RcloneArgs)
	assert.Equal(t, cfg.UnisonArgs, sess.UnisonArgs)
	assert.Equal(t, 2*time.Second, sess.PollInterval)
	assert.NoError(t, sess.Validate())
}

func TestSupervisorTools_FusermountFromHostUnderAppImage(t *testing.T) {
	bundle := t.TempDir()
	bin := filepath.Join(bundle, "usr", "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))

	for _, name := range []string{"rclone", "unison"} {
		require.NoError(t, os.WriteFile(filepath.Join(bin, name), []byte("#!/bin/sh\n"), 0o755))
	}

	system := t.TempDir()
	fusermount := filepath.Join(system, "fusermount")
	require.NoError(t, os.WriteFile(fusermount, []byte("#!/bin/sh\n"), 0o755))

	t.Setenv(config.EnvAppDir, bundle)
	t.Setenv("PATH", system)

	tools := supervisorTools()

	assert.Equal(t, filepath.Join(bin, "rclone"), tools.Rclone)
	assert.Equal(t, filepath.Join(bin, "unison"), tools.Unison)
	assert.Equal(t, fusermount, tools.Fusermount)
	assert.FileExists(t, tools.Fusermount)
}

func TestAwaitReload_SupervisorReturns(t *testing.T) {
	done := make(chan error, 1)
	done <- errors.New("boom")

	reload, err := awaitReload(done, make(chan struct{}), make(chan os.Signal))
	assert.False(t, reload)
	assert.EqualError(t, err, "boom")
}

func TestAwaitReload_ConfigChange(t *testing.T) {
	changes := make(chan struct{}, 1)
	changes <- struct{}{}

	reload, err := awaitReload(make(chan error), changes, make(chan os.Signal))
	assert.True(t, reload)
	assert.NoError(t, err)
}

func TestAwaitReload_SIGHUP(t *testing.T) {
	hup := make(chan os.Signal, 1)
	hup <- syscall.SIGHUP

	reload, err := awaitReload(make(chan error), nil, hup)
	assert.True(t, reload)
	assert.NoError(t, err)
}

func TestAwaitReload_ClosedWatcherKeepsWaiting(t *testing.T) {
	changes := make(chan struct{})
	close(changes)

	done := make(chan error, 1)

	go func() {
		time.Sleep(20 * time.Millisecond)
		done <- nil
	}()

	reload, err := awaitReload(done, changes, make(chan os.Signal))
	assert.False(t, reload)
	assert.NoError(t, err)
}

func TestSync_RejectsMissingSaveDir(t *testing.T) {
	isolateHome(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"sync", "--once", filepath.Join(t.TempDir(), "missing")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save directory")
}

// idleTools succeeds every command at once except unison, which runs until
// cancelled.
type idleTools struct{}

func (idleTools) Run(ctx context.Context, c supervisor.Command) error {
	if filepath.Base(c.Path) != "unison" {
		return nil
	}

	<-ctx.Done()

	return ctx.Err()
}

type alwaysConnected struct{}

func (alwaysConnected) Connected(context.Context) bool { return true }

// builtWith is what the supervisor factory was handed on one build.
type builtWith struct {
	address string
	debug   bool
}

func TestRunSyncService_ReloadRebuildsCheckerAndLogger(t *testing.T) {
	isolateHome(t)

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	writeCfg := func(address, level string) {
		body := "remote = \"saves\"\n" +
			"poll_interval = \"10ms\"\n" +
			"connectivity_address = \"" + address + "\"\n" +
			"log_level = \"" + level + "\"\n"
		require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	}

	writeCfg("127.0.0.1:1", "warn")

	cli := config.CLIOverrides{ConfigPath: cfgPath}
	logger := slog.New(slog.DiscardHandler)
	resolved := config.Resolve(config.EnvOverrides{}, cli, logger)

	cc := &CLIContext{
		Flags:     CLIFlags{ConfigPath: cfgPath},
		Overrides: cli,
		Cfg:       resolved,
		Logger:    buildLogger(&resolved.Config, CLIFlags{}),
	}

	builds := make(chan builtWith, 16)
	build := func(cfg *config.Config, logger *slog.Logger) *supervisor.Supervisor {
		select {
		case builds <- builtWith{
			address: newChecker(cfg).Address,
			debug:   logger.Enabled(context.Background(), slog.LevelDebug),
		}:
		default:
		}

		return supervisor.New(&supervisor.Config{
			Tools:   supervisor.Tools{Rclone: "rclone", Unison: "unison", Fusermount: "fusermount"},
			Runner:  idleTools{},
			Checker: alwaysConnected{},
			Logger:  logger,
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- runSyncService(ctx, cc, build, t.TempDir())
	}()

	first := <-builds
	assert.Equal(t, "127.0.0.1:1", first.address)
	assert.False(t, first.debug)

	writeCfg("127.0.0.1:2", "debug")

	deadline := time.After(5 * time.Second)

	for reloaded := false; !reloaded; {
		select {
		case b := <-builds:
			if b.address == "127.0.0.1:2" {
				assert.True(t, b.debug, "log_level applies on reload")

				reloaded = true
			}
		case <-deadline:
			t.Fatal("config change did not rebuild the supervisor")
		}
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sync service did not stop")
	}
}
