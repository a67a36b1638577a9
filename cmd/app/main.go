package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"WatchPull/internal/di"
	"WatchPull/internal/usecase"
	"WatchPull/pkg/config"
	applogger "WatchPull/pkg/logger"
	"WatchPull/pkg/util"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	debug := flag.Bool("debug", false, "debug logging")
	dryRun := flag.Bool("dry-run", false, "fetch data only, no analysis or notifications")
	symbols := flag.String("symbols", "", "comma-separated symbols overriding the configured watch list")
	noNotify := flag.Bool("no-notify", false, "suppress all notifications for this run")
	notifyEach := flag.Bool("notify-each", false, "notify per symbol instead of one batched message")
	workers := flag.Int("workers", 0, "concurrent analysis workers (0 = configured value)")
	reviewOnly := flag.Bool("review-only", false, "run only the market review")
	skipReview := flag.Bool("skip-review", false, "skip the market review")
	serve := flag.Bool("serve", false, "run as a long-lived service")
	flag.Parse()

	// optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *debug {
		cfg.Logging.Level = "debug"
	}
	if *notifyEach {
		cfg.Notify.Mode = "per_unit"
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	logger.Info("starting",
		applogger.String("env", cfg.Environment),
		applogger.Bool("serve", *serve),
		applogger.Bool("dry_run", *dryRun))

	app, err := di.InitializeApp(cfg, logger)
	if err != nil {
		logger.Error("app initialization failed", applogger.Error(err))
		os.Exit(1)
	}

	if *serve {
		if err := app.Serve(context.Background(), cron.New()); err != nil {
			logger.Error("serve error", applogger.Error(err))
			os.Exit(1)
		}
		return
	}

	opts := usecase.RunOptions{
		Workers:    *workers,
		DryRun:     *dryRun,
		ReviewOnly: *reviewOnly,
		SkipReview: *skipReview,
		NoNotify:   *noNotify,
	}
	if *symbols != "" {
		opts.Symbols = strings.Split(*symbols, ",")
	}

	// A faulted run still exits 0: the report records the fault, and a
	// scheduler retry is preferable to alerting on every transient error.
	report, err := app.RunOnce(context.Background(), opts)
	if err != nil {
		logger.Error("run finished with fault", applogger.String("cause", report.FaultCause))
	}
}

// newLogger builds the process logger: console on stdout, or a date-stamped
// file when logging.dir is set.
func newLogger(cfg *config.Config) (*applogger.Logger, error) {
	out := "stdout"
	if cfg.Logging.Dir != "" {
		if err := os.MkdirAll(cfg.Logging.Dir, 0o755); err != nil {
			return nil, err
		}
		out = filepath.Join(cfg.Logging.Dir, "watchpull-"+util.DateStamp(time.Now())+".log")
	}
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})
}
