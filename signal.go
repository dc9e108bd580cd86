package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// shutdownContext returns a context that cancels on the first SIGINT/SIGTERM.
// Cancellation asks the running tool to terminate and teardown then runs to
// completion. Later signals are logged and otherwise ignored: exiting early
// would leave the remote mounted.
func shutdownContext(parent context.Context, logger *slog.Logger) context.Context {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down",
				slog.String("signal", sig.String()),
			)
			cancel()
		case <-ctx.Done():
			return
		}

		for {
			select {
			case sig := <-sigCh:
				logger.Warn("already shutting down, waiting for cleanup to finish",
					slog.String("signal", sig.String()),
				)
			case <-parent.Done():
				return
			}
		}
	}()

	return ctx
}

// reloadSignals delivers SIGHUP, which asks a running sync service to
// re-read its config file, until ctx is done.
func reloadSignals(ctx context.Context) <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)

	go func() {
		<-ctx.Done()
		signal.Stop(ch)
	}()

	return ch
}
