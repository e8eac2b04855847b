package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/time-keeper/internal/config"
	"github.com/Tiliavir/time-keeper/internal/lock"
	"github.com/Tiliavir/time-keeper/internal/logging"
	"github.com/Tiliavir/time-keeper/internal/metrics"
	"github.com/Tiliavir/time-keeper/internal/storage"
	"github.com/Tiliavir/time-keeper/internal/summary"
	"github.com/Tiliavir/time-keeper/internal/timer"
)

var (
	configPath string
	userFlag   string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "tk",
	Short: "Time keeper – track work time and round it at the end of the day",
	Long: `tk is a single-binary command-line work-time tracker.
Entries are stored in SQLite under ~/.tk/; each day's time is rounded up per
category to whole increments without pushing the week past its goal.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $TK_CONFIG or ~/.tk/config.toml)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User id to act for (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(roundCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(daemonCmd)
}

// appEnv is what every command works with once setup has run.
type appEnv struct {
	cfg      config.Config
	dataDir  string
	logger   *slog.Logger
	store    *storage.Store
	locker   *lock.Locker
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

var env *appEnv

func setup(cmd *cobra.Command, args []string) error {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		if dataDir, err = storage.BaseDir(); err != nil {
			exitStorage(err)
		}
	}
	store, err := storage.Open(storage.DBPath(dataDir))
	if err != nil {
		exitStorage(err)
	}

	reg := prometheus.NewRegistry()
	env = &appEnv{
		cfg:      cfg,
		dataDir:  dataDir,
		logger:   logger,
		store:    store,
		locker:   lock.New(filepath.Join(dataDir, "locks")),
		registry: reg,
		metrics:  metrics.New(reg),
	}
	cmd.SetContext(logging.ContextWithLogger(cmd.Context(), logger))
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if env == nil || env.store == nil {
		return nil
	}
	return env.store.Close()
}

// currentUser is the --user flag, falling back to the configured user.
func currentUser() string {
	if userFlag != "" {
		return userFlag
	}
	return env.cfg.User
}

func newService() *summary.Service {
	return summary.NewService(env.store,
		summary.WithLocker(env.locker),
		summary.WithLogger(env.logger),
		summary.WithMetrics(env.metrics))
}

func newTimer() *timer.Timer {
	return timer.New(env.store, timer.WithLogger(env.logger))
}

// exitStorage reports a storage failure and exits with status 2.
func exitStorage(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}
