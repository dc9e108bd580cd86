// Package supervisor runs the mount, sync, unmount lifecycle for one save
// directory: rclone mounts the remote, unison keeps the mount and the local
// directory in step, and a connectivity watchdog tears the mount down when
// the network goes away. The mount is released on every exit path.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// mountDirPermissions is used when creating the mount point.
const mountDirPermissions = 0o755

// Recorder persists session reports. Failures are logged and otherwise
// ignored.
type Recorder interface {
	Record(ctx context.Context, r *Report) error
}

// Config holds the collaborators of a Supervisor.
type Config struct {
	Tools    Tools
	Runner   Runner
	Checker  Checker
	Recorder Recorder // optional
	Logger   *slog.Logger
}

// Supervisor runs sync sessions.
type Supervisor struct {
	tools    Tools
	runner   Runner
	checker  Checker
	recorder Recorder
	logger   *slog.Logger
}

// New creates a Supervisor from cfg.
func New(cfg *Config) *Supervisor {
	return &Supervisor{
		tools:    cfg.Tools,
		runner:   cfg.Runner,
		checker:  cfg.Checker,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
	}
}

// RunOnce performs one mount, sync, unmount cycle and blocks until unison
// exits, the network is lost, or ctx is cancelled. Once the mount has been
// attempted, the mount point is unmounted before RunOnce returns, including
// on cancellation.
//
// Losing the network and operator cancellation are normal endings: the
// report says which, and the error is nil. The returned error wraps
// ErrNotConnected, ErrMountFailed, ErrSyncToolFailed or ErrUnmountFailed.
func (s *Supervisor) RunOnce(ctx context.Context, sess Session) (*Report, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		ID:         uuid.NewString(),
		RemotePath: sess.RemotePath,
		LocalPath:  sess.LocalPath,
		Start:      time.Now(),
	}

	s.logger.Info("sync session starting",
		slog.String("session", report.ID),
		slog.String("remote", sess.RemotePath),
		slog.String("local", sess.LocalPath),
		slog.String("cooldown", sess.Cooldown),
	)

	lost, err := s.runOnce(ctx, &sess)
	s.finish(ctx, report, lost, err)

	return report, report.Err
}

// finish classifies the session outcome, logs it and records it.
func (s *Supervisor) finish(ctx context.Context, report *Report, lost bool, err error) {
	report.End = time.Now()

	switch {
	case err != nil && !isInterruption(ctx, err):
		report.Outcome = OutcomeFailed
		report.Err = err
	case ctx.Err() != nil:
		report.Outcome = OutcomeInterrupted
	case lost:
		report.Outcome = OutcomeDisconnected
	default:
		report.Outcome = OutcomeCompleted
	}

	attrs := []any{
		slog.String("session", report.ID),
		slog.String("outcome", report.Outcome.String()),
		slog.Duration("duration", report.Duration()),
	}

	if report.Err != nil {
		s.logger.Error("sync session failed", append(attrs, slog.String("error", report.Err.Error()))...)
	} else {
		s.logger.Info("sync session ended", attrs...)
	}

	s.record(ctx, report)
}

// isInterruption reports whether err is only the consequence of ctx being
// cancelled. A failed teardown is never hidden behind an interruption.
func isInterruption(ctx context.Context, err error) bool {
	return ctx.Err() != nil && !errors.Is(err, ErrUnmountFailed) && !errors.Is(err, ErrNotConnected)
}

func (s *Supervisor) record(ctx context.Context, report *Report) {
	if s.recorder == nil {
		return
	}

	if err := s.recorder.Record(context.WithoutCancel(ctx), report); err != nil {
		s.logger.Warn("could not record sync session",
			slog.String("session", report.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Supervisor) runOnce(ctx context.Context, sess *Session) (lost bool, err error) {
	if !s.checker.Connected(ctx) {
		return false, ErrNotConnected
	}

	if err := os.MkdirAll(sess.MountPoint, mountDirPermissions); err != nil {
		return false, fmt.Errorf("%w: creating mount point: %w", ErrMountFailed, err)
	}

	if err := s.runner.Run(ctx, s.tools.ensureRemoteDir(sess)); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMountFailed, err)
	}

	// From here on the mount may exist, so teardown runs on every path,
	// including panics, and is not subject to cancellation.
	teardown := context.WithoutCancel(ctx)

	defer func() {
		if uerr := s.unmount(teardown, sess); uerr != nil && err == nil {
			err = uerr
		}
	}()

	if err := s.runner.Run(ctx, s.tools.mount(sess)); err != nil {
		return false, fmt.Errorf("%w: %w", ErrMountFailed, err)
	}

	s.logger.Info("remote mounted", slog.String("mount_point", sess.MountPoint))

	return s.syncWatched(ctx, sess)
}

// syncWatched runs unison while the watchdog probes connectivity. When the
// watchdog sees the network go, it force-unmounts and terminates unison.
// The watchdog is stopped and joined before syncWatched returns, so the
// caller's final unmount never overlaps the watchdog's.
func (s *Supervisor) syncWatched(ctx context.Context, sess *Session) (bool, error) {
	syncCtx, cancelSync := context.WithCancel(ctx)
	defer cancelSync()

	watchCtx, stopWatch := context.WithCancel(ctx)

	var (
		g    errgroup.Group
		lost atomic.Bool
	)

	g.Go(func() error {
		s.watch(watchCtx, sess, func() {
			lost.Store(true)

			if err := s.unmount(context.WithoutCancel(watchCtx), sess); err != nil {
				s.logger.Error("forced unmount failed", slog.String("error", err.Error()))
			}

			cancelSync()
		})

		return nil
	})

	join := sync.OnceFunc(func() {
		stopWatch()
		_ = g.Wait()
	})
	defer join()

	err := s.runner.Run(syncCtx, s.tools.sync(sess))

	join()

	switch {
	case lost.Load():
		if err != nil {
			s.logger.Debug("unison stopped after network loss", slog.String("error", err.Error()))
		}

		return true, nil
	case err != nil && ctx.Err() == nil:
		return false, fmt.Errorf("%w: %w", ErrSyncToolFailed, err)
	}

	return false, err
}

// unmount releases the mount point. A mount point that is already gone is
// not an error.
func (s *Supervisor) unmount(ctx context.Context, sess *Session) error {
	err := s.runner.Run(ctx, s.tools.unmount(sess))

	switch {
	case err == nil:
		s.logger.Info("remote unmounted", slog.String("mount_point", sess.MountPoint))
		return nil
	case isNotMounted(err):
		s.logger.Debug("mount point already unmounted", slog.String("mount_point", sess.MountPoint))
		return nil
	}

	return fmt.Errorf("%w: %w", ErrUnmountFailed, err)
}
