package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/savesync/internal/config"
	"github.com/tonimelisma/savesync/internal/ledger"
	"github.com/tonimelisma/savesync/internal/supervisor"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <save-dir>",
		Short: "Keep a save directory in sync with the cloud",
		Long: `Mount the rclone remote and keep <save-dir> in sync with it through
unison until interrupted.

By default sync runs as a service: it waits for the network, restarts the
session after the connection drops, and reloads when the config file changes
or on SIGHUP. A reload applies every setting: remote, cooldown, extra
arguments, poll interval, connectivity check and logging. With --once it
runs a single session and exits.

The remote is unmounted on every exit path. RCLONE_ARGS and UNISON_ARGS
replace the extra arguments from the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: runSync,
	}

	cmd.Flags().Bool("once", false, "run a single mount/sync/unmount session and exit")
	cmd.Flags().String("cooldown", "", `unison -repeat value: "watch" or seconds (overrides sync_cooldown)`)

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())
	logger := cc.Logger

	target, err := saveDir(args[0])
	if err != nil {
		return err
	}

	release, err := claimPIDFile(config.PIDFilePath())
	if err != nil {
		return err
	}
	defer release()

	ctx := shutdownContext(cmd.Context(), logger)

	var recorder supervisor.Recorder

	store, err := ledger.Open(ctx, config.StatePath(), logger)
	if err != nil {
		logger.Warn("session history unavailable", slog.String("error", err.Error()))
	} else {
		defer store.Close()

		recorder = store
	}

	build := func(cfg *config.Config, logger *slog.Logger) *supervisor.Supervisor {
		return supervisor.New(&supervisor.Config{
			Tools:    supervisorTools(),
			Runner:   &supervisor.ExecRunner{Logger: logger},
			Checker:  newChecker(cfg),
			Recorder: recorder,
			Logger:   logger,
		})
	}

	once, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}

	if once {
		return runSyncOnce(ctx, cc, build(&cc.Cfg.Config, logger), newSession(&cc.Cfg.Config, target))
	}

	return runSyncService(ctx, cc, build, target)
}

// saveDir resolves and checks the directory to synchronize.
func saveDir(arg string) (string, error) {
	target, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", arg, err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("save directory: %w", err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("save directory %s is not a directory", target)
	}

	return target, nil
}

func runSyncOnce(ctx context.Context, cc *CLIContext, sup *supervisor.Supervisor, sess supervisor.Session) error {
	report, err := sup.RunOnce(ctx, sess)
	if err != nil {
		return err
	}

	cc.Statusf("Sync %s after %s\n", report.Outcome, formatDuration(report.Duration()))

	return nil
}

// supervisorFactory builds a supervisor from a resolved configuration.
type supervisorFactory func(cfg *config.Config, logger *slog.Logger) *supervisor.Supervisor

// runSyncService runs the supervisor until ctx is cancelled. Whenever the
// config file changes or SIGHUP arrives, the running session is stopped and
// the logger, connectivity checker and session are rebuilt from the new
// configuration.
func runSyncService(ctx context.Context, cc *CLIContext, build supervisorFactory, target string) error {
	logger := cc.Logger
	resolved := cc.Cfg

	changes, err := config.Watch(ctx, resolved.Path, logger)
	if err != nil {
		logger.Warn("config file watching disabled, use SIGHUP to reload", slog.String("error", err.Error()))
	}

	hup := reloadSignals(ctx)

	for {
		runCtx, stop := context.WithCancel(ctx)
		done := make(chan error, 1)

		sup := build(&resolved.Config, logger)
		sess := newSession(&resolved.Config, target)

		go func() {
			done <- sup.RunForever(runCtx, sess)
		}()

		reload, err := awaitReload(done, changes, hup)

		stop()

		if !reload {
			return err
		}

		// Let the current session tear down before the next one mounts.
		if err := <-done; err != nil {
			return err
		}

		resolved = config.Resolve(config.ReadEnvOverrides(), cc.Overrides, logger)
		logger = buildLogger(&resolved.Config, cc.Flags)

		logger.Info("configuration reloaded, restarting sync",
			slog.String("remote", resolved.Remote),
			slog.String("cooldown", resolved.SyncCooldown),
			slog.String("connectivity_address", resolved.ConnectivityAddress),
		)
	}
}

// awaitReload blocks until the supervisor returns (reload false, with its
// error) or a reload is requested (reload true). A closed changes channel
// only disables file-based reloads.
func awaitReload(done <-chan error, changes <-chan struct{}, hup <-chan os.Signal) (bool, error) {
	for {
		select {
		case err := <-done:
			return false, err
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}

			return true, nil
		case <-hup:
			return true, nil
		}
	}
}

func newSession(cfg *config.Config, target string) supervisor.Session {
	return supervisor.Session{
		MountPoint:   config.MountPoint(),
		LocalPath:    target,
		RemotePath:   config.RemotePath(cfg.Remote),
		Cooldown:     cfg.SyncCooldown,
		RcloneArgs:   cfg.RcloneArgs,
		UnisonArgs:   cfg.UnisonArgs,
		PollInterval: cfg.PollEvery(),
	}
}

func supervisorTools() supervisor.Tools {
	return supervisor.Tools{
		Rclone:     config.ToolPath("rclone"),
		Unison:     config.ToolPath("unison"),
		Fusermount: config.SystemToolPath("fusermount"),
	}
}
