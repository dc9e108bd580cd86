package supervisor

import (
	"context"
	"log/slog"
	"time"
)

// watch probes connectivity every sess.PollInterval until ctx is cancelled.
// On the first failed probe it calls onLost once and returns true. Probes
// that fail because ctx was cancelled do not count.
func (s *Supervisor) watch(ctx context.Context, sess *Session, onLost func()) bool {
	ticker := time.NewTicker(sess.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}

		if s.checker.Connected(ctx) {
			continue
		}

		if ctx.Err() != nil {
			return false
		}

		s.logger.Warn("network connection lost, unmounting",
			slog.String("mount_point", sess.MountPoint),
		)

		onLost()

		return true
	}
}
