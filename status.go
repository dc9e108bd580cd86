package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/savesync/internal/config"
	"github.com/tonimelisma/savesync/internal/ledger"
)

// defaultStatusLimit is how many sessions status shows without --limit.
const defaultStatusLimit = 10

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether sync is running and recent sync sessions",
		Long: `Display whether a sync service is running and the most recent sync
sessions with their outcome: completed, disconnected, interrupted or failed.`,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Args:        cobra.NoArgs,
		RunE:        runStatus,
	}

	cmd.Flags().Int("limit", defaultStatusLimit, "number of sessions to show")

	return cmd
}

// statusReport is the JSON form of the status output.
type statusReport struct {
	Running  bool             `json:"running"`
	PID      int              `json:"pid,omitempty"`
	Sessions []ledger.Session `json:"sessions"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	if limit <= 0 {
		return fmt.Errorf("--limit must be positive, got %d", limit)
	}

	report := statusReport{Sessions: []ledger.Session{}}
	report.PID, report.Running = runningPID(config.PIDFilePath())

	statePath := config.StatePath()

	if _, err := os.Stat(statePath); err == nil {
		store, err := ledger.Open(cmd.Context(), statePath, cc.Logger)
		if err != nil {
			return fmt.Errorf("opening session history: %w", err)
		}
		defer store.Close()

		sessions, err := store.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if sessions != nil {
			report.Sessions = sessions
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking session history: %w", err)
	}

	if cc.Flags.JSON {
		return printStatusJSON(os.Stdout, &report)
	}

	printStatusText(os.Stdout, &report)

	return nil
}

func printStatusJSON(w io.Writer, report *statusReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	return nil
}

func printStatusText(w io.Writer, report *statusReport) {
	if report.Running {
		fmt.Fprintf(w, "Sync: running (PID %d)\n", report.PID)
	} else {
		fmt.Fprintln(w, "Sync: not running")
	}

	if len(report.Sessions) == 0 {
		fmt.Fprintln(w, "No sync sessions recorded yet.")
		return
	}

	fmt.Fprintln(w)

	rows := make([][]string, 0, len(report.Sessions))
	for i := range report.Sessions {
		s := &report.Sessions[i]
		rows = append(rows, []string{
			formatTime(s.StartedAt.Local()),
			formatDuration(s.Duration()),
			s.Outcome,
			s.RemotePath,
			s.LocalPath,
			s.Error,
		})
	}

	printTable(w, []string{"STARTED", "DURATION", "OUTCOME", "REMOTE", "LOCAL", "ERROR"}, rows)
}
