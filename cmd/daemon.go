package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Tiliavir/time-keeper/internal/daemon"
	"github.com/Tiliavir/time-keeper/internal/lock"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Round the previous day automatically every night",
	Long: `Run in the foreground, rounding the previous UTC day for the configured
users at daemon.round_at. /health and /metrics are served on daemon.listen.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	unlock, err := env.locker.TryLock("daemon")
	if errors.Is(err, lock.ErrLocked) {
		fmt.Fprintln(os.Stderr, "Another tk daemon is already running.")
		os.Exit(1)
	}
	if err != nil {
		exitStorage(err)
	}
	defer unlock()

	cfg := env.cfg.Daemon
	roundAt, err := cfg.RoundAtTime()
	if err != nil {
		return err
	}

	users := env.cfg.RoundUsers()
	if userFlag != "" {
		users = []string{userFlag}
	}
	d := daemon.New(newService(), users, roundAt, daemon.WithLogger(env.logger))

	var gatherer prometheus.Gatherer
	if cfg.Metrics {
		env.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		gatherer = env.registry
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.Run(ctx) })
	g.Go(func() error {
		env.logger.Info("serving health endpoint", "addr", cfg.Listen, "metrics", cfg.Metrics)
		return daemon.Serve(ctx, cfg.Listen, d.Handler(gatherer))
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
