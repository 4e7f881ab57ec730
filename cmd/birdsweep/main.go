package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"birdsweep/internal/config"
	"birdsweep/internal/notify"
	"birdsweep/internal/runner"
	"birdsweep/internal/storage"
	logx "birdsweep/pkg/logx"
)

func main() {
	var (
		cfgPath string
		dryRun  bool
	)
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config (json or yaml)")
	flag.BoolVar(&dryRun, "dry-run", false, "preview what would be removed without touching the API")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	if dryRun {
		cfg.DryRun = true
	}

	log, closeLog := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer closeLog()

	if err := run(ctx, cfg, log); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("interrupted; progress saved, re-run to continue")
			return
		}
		log.Error("fatal", logx.Err(err))
		closeLog()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logx.Logger) error {
	var store storage.Store
	if cfg.Storage != nil {
		busy, _ := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
		st, err := storage.Open(storage.Config{
			Driver:      cfg.Storage.Driver,
			Path:        cfg.Storage.Path,
			BusyTimeout: busy,
		}, log)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		store = st
		if store != nil {
			defer store.Close()
		}
	}

	var notifier *notify.Notifier
	if cfg.Notify != nil {
		n, err := notify.New(notify.Config{
			Enabled:    cfg.Notify.Enabled,
			Token:      cfg.Notify.Token,
			ChatID:     cfg.Notify.ChatID,
			RatePerSec: cfg.Notify.RatePerSec,
		}, log)
		if err != nil {
			return err
		}
		notifier = n
	}

	r := runner.New(cfg, log, store, notifier)

	started := time.Now()
	log.Info("birdsweep starting",
		logx.String("mode", cfg.Input.Mode),
		logx.Bool("dry_run", cfg.DryRun),
		logx.Bool("scheduled", cfg.Schedule != nil),
	)

	var err error
	if cfg.Schedule != nil {
		err = r.RunScheduled(ctx)
	} else {
		err = r.RunOnce(ctx)
	}
	if err == nil {
		log.Info("done", logx.Duration("took", time.Since(started).Round(time.Second)))
	}
	return err
}
