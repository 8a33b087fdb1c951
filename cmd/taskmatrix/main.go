package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/taskmatrix/internal/alarm"
	"github.com/sandeepkv93/taskmatrix/internal/config"
	"github.com/sandeepkv93/taskmatrix/internal/storage"
	"github.com/sandeepkv93/taskmatrix/internal/update"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskmatrix failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("taskmatrix", flag.ExitOnError)
	cfg, err := config.Load(fs, os.Args[1:])
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := storage.MigrateUp(repo.DB()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store := update.NewStore(repo, logger)

	poller := alarm.NewPoller(store,
		alarm.WithInterval(time.Duration(cfg.PollIntervalSeconds)*time.Second),
		alarm.WithLogger(logger),
	)
	poller.Start()
	defer poller.Stop()

	sounder := alarm.NewSounder(store, store, alarm.ExecPlayer{}, alarm.ExecToneSink{}, logger)

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}

	m := update.NewModelWithRuntime(store, poller, sounder, notifier, update.RuntimeConfig{
		DesktopNotifications: cfg.DesktopNotifications,
		HorizonDays:          30,
		TimeFormat:           cfg.TimeFormat,
	}).WithLogger(logger)

	logger.Info("starting", "db", cfg.DBPath, "poll_interval_s", cfg.PollIntervalSeconds)

	program := tea.NewProgram(m)
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}

func newLogger(cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Formatter:       formatterFor(cfg.LogFormat),
	})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

func formatterFor(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
