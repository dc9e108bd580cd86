package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/savesync/internal/config"
	"github.com/tonimelisma/savesync/internal/prompt"
	"github.com/tonimelisma/savesync/internal/supervisor"
	"github.com/tonimelisma/savesync/internal/wizard"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup <provider>",
		Short: "Register a cloud storage backend with rclone",
		Long: fmt.Sprintf(`Create the rclone remote used for save sync by answering the
"rclone config" wizard automatically.

Providers: %s.

Google Drive, Dropbox, OneDrive and Box authorize in the browser. Nextcloud
asks for the server URL, username and password.

The remote name comes from the config file (default %q) or --remote. An
existing remote of that name is never modified.`, strings.Join(wizard.ProviderNames(), ", "), config.DefaultRemote),
		Args:      cobra.ExactArgs(1),
		ValidArgs: wizard.ProviderNames(),
		RunE:      runSetup,
	}
}

func runSetup(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())
	cfg := &cc.Cfg.Config

	provider, err := wizard.ParseProvider(args[0])
	if err != nil {
		return err
	}

	ctx := shutdownContext(cmd.Context(), cc.Logger)

	if !newChecker(cfg).Connected(ctx) {
		return fmt.Errorf("%w: cannot reach %s", supervisor.ErrNotConnected, cfg.ConnectivityAddress)
	}

	rclone := config.ToolPath("rclone")

	driver := wizard.NewDriver(&wizard.DriverConfig{
		Spawner:       &wizard.PTYSpawner{RclonePath: rclone},
		Lister:        &wizard.RcloneLister{RclonePath: rclone},
		Secrets:       prompt.Auto(os.Stdin, os.Stderr, config.SystemToolPath("zenity")),
		PromptTimeout: cfg.PromptWait(),
		Logger:        cc.Logger,
	})

	cc.Statusf("Configuring %s as rclone remote %q...\n", provider, cfg.Remote)

	if err := driver.Configure(ctx, provider, cfg.Remote); err != nil {
		return fmt.Errorf("setting up %s: %w", provider, err)
	}

	cc.Statusf("Remote %q is ready. Start syncing with: savesync sync <save-dir>\n", cfg.Remote)

	return nil
}

// newChecker builds the connectivity probe from the network settings.
func newChecker(cfg *config.Config) *supervisor.TCPChecker {
	return &supervisor.TCPChecker{
		Address: cfg.ConnectivityAddress,
		Timeout: cfg.ConnectivityDialTimeout(),
	}
}
