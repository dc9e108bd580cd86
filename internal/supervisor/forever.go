package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Backoff for consecutive failed sessions in service mode.
// Threshold: 3 consecutive failures before any backoff is applied.
const (
	backoffThreshold = 3
	backoffMaxCap    = 15 * time.Minute
)

// backoffSteps maps consecutive failure counts (starting at the threshold)
// to their backoff durations: 3→30s, 4→1m, 5→5m, 6+→15m.
var backoffSteps = []time.Duration{
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	backoffMaxCap,
}

// RunForever keeps the session running until ctx is cancelled. While the
// network is down it waits, probing every poll interval; once connected it
// runs a session. A session ending in disconnection is retried when the
// network returns. Failed sessions are logged and retried after the poll
// interval, backing off after repeated failures. Returns nil when ctx is
// cancelled.
func (s *Supervisor) RunForever(ctx context.Context, sess Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	s.logger.Info("sync service started",
		slog.String("remote", sess.RemotePath),
		slog.String("local", sess.LocalPath),
		slog.Duration("poll_interval", sess.PollInterval),
	)

	failures := 0
	waiting := false

	for {
		if ctx.Err() != nil {
			break
		}

		if !s.checker.Connected(ctx) {
			if ctx.Err() != nil {
				break
			}

			if !waiting {
				s.logger.Info("waiting for network connection")
				waiting = true
			}

			if !sleepCtx(ctx, sess.PollInterval) {
				break
			}

			continue
		}

		waiting = false

		report := s.runRecovered(ctx, sess)
		if report.Outcome == OutcomeInterrupted || ctx.Err() != nil {
			break
		}

		delay := sess.PollInterval

		switch {
		case errors.Is(report.Err, ErrNotConnected):
			// Lost between the probe above and the session's own probe.
		case report.Err != nil:
			failures++
			delay = max(delay, backoffDuration(failures))

			s.logger.Warn("sync session will be retried",
				slog.Int("consecutive_failures", failures),
				slog.Duration("retry_in", delay),
			)
		default:
			failures = 0
		}

		if !sleepCtx(ctx, delay) {
			break
		}
	}

	s.logger.Info("sync service stopped")

	return nil
}

// runRecovered runs one session with panic recovery, so a panic in one
// session does not take down the service. Deferred teardown inside RunOnce
// still runs while the panic unwinds.
func (s *Supervisor) runRecovered(ctx context.Context, sess Session) (report *Report) {
	defer func() {
		if r := recover(); r != nil {
			report = &Report{
				ID:         uuid.NewString(),
				RemotePath: sess.RemotePath,
				LocalPath:  sess.LocalPath,
				Outcome:    OutcomeFailed,
				Err:        fmt.Errorf("panic in sync session: %v", r),
				End:        time.Now(),
			}
			report.Start = report.End

			s.logger.Error("sync session panicked", slog.String("error", report.Err.Error()))
			s.record(ctx, report)
		}
	}()

	report, _ = s.RunOnce(ctx, sess)

	return report
}

// backoffDuration returns the backoff duration for the given number of
// consecutive failures. Returns 0 for fewer than backoffThreshold failures.
func backoffDuration(failures int) time.Duration {
	if failures < backoffThreshold {
		return 0
	}

	idx := failures - backoffThreshold
	if idx >= len(backoffSteps) {
		return backoffMaxCap
	}

	return backoffSteps[idx]
}

// sleepCtx waits for d and reports false if ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
