package config

import (
	"fmt"
	"io"
	"strings"
)

// RenderEffective writes the resolved configuration as a human-readable
// annotated summary to w. This powers the "config show" command.
func RenderEffective(r *Resolved, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration (%s)\n\n", r.Path)

	renderSyncSection(ew, &r.SyncConfig)
	renderWizardSection(ew, &r.WizardConfig)
	renderLoggingSection(ew, &r.LoggingConfig)
	renderNetworkSection(ew, &r.NetworkConfig)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, so callers can chain
// printf calls without checking each one individually.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func renderSyncSection(ew *errWriter, s *SyncConfig) {
	ew.printf("[sync]\n")
	ew.printf("  remote        = %q\n", s.Remote)
	ew.printf("  remote_path   = %q\n", RemotePath(s.Remote))
	ew.printf("  sync_cooldown = %q\n", s.SyncCooldown)
	ew.printf("  rclone_args   = [%s]\n", joinQuoted(s.RcloneArgs))
	ew.printf("  unison_args   = [%s]\n", joinQuoted(s.UnisonArgs))
	ew.printf("  poll_interval = %q\n", s.PollInterval)
	ew.printf("\n")
}

func renderWizardSection(ew *errWriter, wc *WizardConfig) {
	ew.printf("[wizard]\n")
	ew.printf("  prompt_timeout = %q\n", wc.PromptTimeout)
	ew.printf("\n")
}

func renderLoggingSection(ew *errWriter, l *LoggingConfig) {
	ew.printf("[logging]\n")
	ew.printf("  log_level  = %q\n", l.LogLevel)
	ew.printf("  log_format = %q\n", l.LogFormat)
	ew.printf("\n")
}

func renderNetworkSection(ew *errWriter, n *NetworkConfig) {
	ew.printf("[network]\n")
	ew.printf("  connectivity_address = %q\n", n.ConnectivityAddress)
	ew.printf("  connectivity_timeout = %q\n", n.ConnectivityTimeout)
}

// joinQuoted formats a string slice as comma-separated quoted values.
func joinQuoted(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}

	return strings.Join(quoted, ", ")
}
