package wizard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/text/unicode/norm"
)

// DriverConfig holds the collaborators of a Driver.
type DriverConfig struct {
	Spawner       Spawner
	Lister        RemoteLister
	Secrets       SecretSource
	PromptTimeout time.Duration // per prompt; zero waits for the process to exit
	Logger        *slog.Logger
}

// Driver answers the rclone config wizard on the operator's behalf.
type Driver struct {
	spawner Spawner
	lister  RemoteLister
	secrets SecretSource
	timeout time.Duration
	logger  *slog.Logger
}

// NewDriver creates a Driver from cfg.
func NewDriver(cfg *DriverConfig) *Driver {
	return &Driver{
		spawner: cfg.Spawner,
		lister:  cfg.Lister,
		secrets: cfg.Secrets,
		timeout: cfg.PromptTimeout,
		logger:  cfg.Logger,
	}
}

// Configure creates a remote named remoteName for provider p. It refuses to
// touch an existing remote of the same name and returns ErrAlreadyConfigured
// before sending anything to rclone. Nothing is persisted by rclone unless
// the run reaches the confirmation step.
func (d *Driver) Configure(ctx context.Context, p Provider, remoteName string) error {
	if _, ok := transcripts[p]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownProvider, p)
	}

	d.logger.Info("starting rclone config wizard",
		slog.String("provider", p.String()),
		slog.String("remote", remoteName),
	)

	console, err := d.spawner.Spawn(ctx)
	if err != nil {
		return fmt.Errorf("wizard: %w", err)
	}
	defer console.Close()

	exp := newExpecter(console, d.timeout)
	defer exp.stop()

	idx, err := exp.expect(ctx, promptExistingRemotes, promptNoRemotes)
	if err != nil {
		return err
	}

	if idx == 0 {
		if err := d.checkNotConfigured(ctx, remoteName); err != nil {
			return err
		}
	}

	if err := sendLine(console, replyNewRemote); err != nil {
		return err
	}

	rs := &replySession{secrets: d.secrets}

	for i, step := range script(p, remoteName) {
		if err := d.runStep(ctx, exp, console, rs, i, step); err != nil {
			return err
		}
	}

	if err := exp.waitEOF(ctx); err != nil {
		return err
	}

	if err := console.Wait(); err != nil {
		return fmt.Errorf("wizard: rclone config exited: %w", err)
	}

	d.logger.Info("remote configured",
		slog.String("provider", p.String()),
		slog.String("remote", remoteName),
	)

	return nil
}

// checkNotConfigured fails when rclone already lists remoteName.
func (d *Driver) checkNotConfigured(ctx context.Context, remoteName string) error {
	remotes, err := d.lister.ListRemotes(ctx)
	if err != nil {
		return fmt.Errorf("wizard: listing existing remotes: %w", err)
	}

	want := norm.NFC.String(remoteName)
	if slices.ContainsFunc(remotes, func(r string) bool { return norm.NFC.String(r) == want }) {
		return fmt.Errorf("%w: %q exists; remove it with 'rclone config delete %s' and try again",
			ErrAlreadyConfigured, remoteName, remoteName)
	}

	return nil
}

func (d *Driver) runStep(ctx context.Context, exp *expecter, w io.Writer, rs *replySession, i int, step Step) error {
	if _, err := exp.expect(ctx, step.Expect); err != nil {
		return err
	}

	reply, err := step.Reply(ctx, rs)
	if err != nil {
		return err
	}

	if step.Sensitive {
		d.logger.Debug("answering prompt", slog.Int("step", i), slog.String("prompt", step.Expect))
	} else {
		d.logger.Debug("answering prompt",
			slog.Int("step", i),
			slog.String("prompt", step.Expect),
			slog.String("reply", reply),
		)
	}

	return sendLine(w, reply)
}

func sendLine(w io.Writer, line string) error {
	if _, err := io.WriteString(w, line+"\n"); err != nil {
		return fmt.Errorf("wizard: writing to rclone config: %w", err)
	}

	return nil
}
