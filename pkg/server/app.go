package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"WatchPull/internal/domain/models"
	domrepo "WatchPull/internal/domain/repository"
	"WatchPull/internal/handler/api"
	"WatchPull/internal/usecase"
	"WatchPull/pkg/config"
	xhttp "WatchPull/pkg/http"
	pkgkafka "WatchPull/pkg/kafka"
	applogger "WatchPull/pkg/logger"

	"github.com/robfig/cron/v3"
)

// App encapsulates the application lifecycle: one-shot runs and serve mode.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	pipeline  *usecase.Pipeline
	collector *usecase.QuoteCollector
	consumer  *pkgkafka.Consumer
	producer  *pkgkafka.Producer
	store     domrepo.ResultStore
	metrics   domrepo.Metrics

	httpServer *xhttp.Server
	running    atomic.Bool
}

// New creates a new App instance with all dependencies. collector, consumer,
// producer and store may be nil when their backends are unconfigured.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	pipeline *usecase.Pipeline,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	producer *pkgkafka.Producer,
	store domrepo.ResultStore,
	metrics domrepo.Metrics,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		pipeline:  pipeline,
		collector: collector,
		consumer:  consumer,
		producer:  producer,
		store:     store,
		metrics:   metrics,
	}
}

// RunOnce executes a single analysis run and returns its report.
func (a *App) RunOnce(ctx context.Context, opts usecase.RunOptions) (*models.RunReport, error) {
	a.running.Store(true)
	defer a.running.Store(false)
	return a.pipeline.Run(ctx, opts)
}

// TriggerRun starts a run in the background. At most one run is in flight;
// concurrent triggers are rejected.
func (a *App) TriggerRun(_ context.Context, opts usecase.RunOptions) error {
	if !a.running.CompareAndSwap(false, true) {
		return fmt.Errorf("a run is already in progress")
	}
	go func() {
		defer a.running.Store(false)
		if _, err := a.pipeline.Run(context.Background(), opts); err != nil {
			a.logger.Error("triggered run fault", applogger.Error(err))
		}
	}()
	return nil
}

// Serve runs the long-lived mode: cron-scheduled runs, the HTTP API, the
// run-request consumer, and the quote feed. Blocks until interrupted.
func (a *App) Serve(ctx context.Context, sched *cron.Cron) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.producer != nil && a.cfg.Kafka.LogTopic != "" {
		a.logger.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          a.cfg.Kafka.LogTopic,
			Publisher:      &logPublisher{producer: a.producer},
		})
		defer a.logger.RemoveCollector()
	}

	handler := api.NewRunsEchoHandler(a.logger, a, a.store)
	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)

	if sched != nil && a.cfg.Schedule.Cron != "" {
		if _, err := sched.AddFunc(a.cfg.Schedule.Cron, func() {
			if err := a.TriggerRun(context.Background(), usecase.RunOptions{}); err != nil {
				a.logger.Warn("scheduled run skipped", applogger.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule %q: %w", a.cfg.Schedule.Cron, err)
		}
		sched.Start()
		a.logger.Info("schedule active", applogger.String("cron", a.cfg.Schedule.Cron))
	}

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.logger.Error("quote collector error", applogger.Error(err))
			}
		}()
		a.logger.Info("quote collector started", applogger.Strings("symbols", a.cfg.Watchlist.Symbols))
	}

	if a.consumer != nil {
		rh := usecase.NewRunRequestHandler(a.cfg.Kafka.RequestsTopic, a, a.metrics, a.logger)
		a.consumer.RegisterHandler(rh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.logger.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.logger.Info("kafka consumer started", applogger.String("topic", rh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received")
	if sched != nil {
		sched.Stop()
	}
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.logger.Warn("quote collector stop error", applogger.Error(err))
		}
	}
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("result store close error", applogger.Error(err))
		}
	}

	// let async log writers drain
	time.Sleep(100 * time.Millisecond)
	a.logger.Info("shutdown complete")
	return nil
}

// logPublisher adapts the Kafka producer to the log collector's sink.
type logPublisher struct {
	producer *pkgkafka.Producer
}

func (p *logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}
