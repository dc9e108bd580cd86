package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/savesync/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// skipConfigAnnotation marks commands that do not need the resolved
// configuration. They still get a CLIContext with a flag-based logger.
const skipConfigAnnotation = "savesync/skip-config"

// CLIFlags holds the persistent flag values.
type CLIFlags struct {
	ConfigPath string
	Remote     string
	JSON       bool
	Verbose    bool
	Quiet      bool
}

// CLIContext is built once per invocation by the root pre-run hook and
// carried to subcommands through the command context.
type CLIContext struct {
	Flags     CLIFlags
	Overrides config.CLIOverrides
	Cfg       *config.Resolved // nil for commands annotated with skipConfigAnnotation
	Logger    *slog.Logger
}

type cliContextKey struct{}

// mustCLIContext returns the CLIContext stored by the root pre-run hook.
// A missing context is a programming error.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok {
		panic("savesync: command run without CLIContext")
	}

	return cc
}

// Statusf prints a status message to stderr unless quiet mode is set.
func (cc *CLIContext) Statusf(format string, args ...any) {
	statusf(cc.Flags.Quiet, format, args...)
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	var flags CLIFlags

	cmd := &cobra.Command{
		Use:   "savesync",
		Short: "Cloud sync for emulator save games",
		Long: `Keep emulator save games in sync with cloud storage.

"savesync setup <provider>" registers a cloud backend with rclone.
"savesync sync <dir>" mounts the backend and keeps <dir> in sync with it
through unison, unmounting cleanly when the network drops or on Ctrl-C.`,
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cc := &CLIContext{Flags: flags, Logger: buildLogger(nil, flags)}

			if cmd.Annotations[skipConfigAnnotation] != "true" {
				if err := loadConfig(cmd, cc); err != nil {
					return err
				}
			}

			cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cc))

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flags.Remote, "remote", "", "rclone remote name (overrides the config file)")
	cmd.PersistentFlags().BoolVar(&flags.JSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "only log errors")

	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// loadConfig writes the config file on first run, resolves the effective
// configuration through the four-layer override chain, and rebuilds the
// logger from it.
func loadConfig(cmd *cobra.Command, cc *CLIContext) error {
	cli := config.CLIOverrides{ConfigPath: cc.Flags.ConfigPath}

	if f := cmd.Flags().Lookup("remote"); f != nil && f.Changed {
		remote := cc.Flags.Remote
		cli.Remote = &remote
	}

	if f := cmd.Flags().Lookup("cooldown"); f != nil && f.Changed {
		cooldown := f.Value.String()
		cli.Cooldown = &cooldown
	}

	env := config.ReadEnvOverrides()

	if err := config.Bootstrap(config.ResolvePath(env, cli), cc.Logger); err != nil {
		// Defaults still apply; the file just could not be written.
		cc.Logger.Warn("could not create config file", slog.String("error", err.Error()))
	}

	cc.Overrides = cli
	cc.Cfg = config.Resolve(env, cli, cc.Logger)
	cc.Logger = buildLogger(&cc.Cfg.Config, cc.Flags)

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it because CLI flags always win.
func buildLogger(cfg *config.Config, flags CLIFlags) *slog.Logger {
	level := slog.LevelInfo
	format := "auto"

	// Config-based settings (lower priority than CLI flags).
	if cfg != nil {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}

		format = cfg.LogFormat
	}

	// CLI flags override config (highest priority).
	if flags.Verbose {
		level = slog.LevelDebug
	}

	if flags.Quiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if useJSONLogs(format, os.Stderr) {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// useJSONLogs resolves log_format. "auto" picks text for a terminal and JSON
// otherwise, so a systemd or Steam launcher journal gets structured records.
func useJSONLogs(format string, f *os.File) bool {
	switch format {
	case "json":
		return true
	case "text":
		return false
	}

	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
