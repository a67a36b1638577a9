package usecase

import (
	"context"
	"encoding/json"

	"WatchPull/internal/domain/models"
	domrepo "WatchPull/internal/domain/repository"
	pkgkafka "WatchPull/pkg/kafka"
	xlogger "WatchPull/pkg/logger"
)

// RunTrigger starts an analysis run on demand. The app satisfies it in serve
// mode; requests while a run is in flight are rejected.
type RunTrigger interface {
	TriggerRun(ctx context.Context, opts RunOptions) error
}

// RunRequestHandler consumes run requests from Kafka and triggers runs.
type RunRequestHandler struct {
	topic   string
	trigger RunTrigger
	metrics domrepo.Metrics
	logger  *xlogger.Logger
}

func NewRunRequestHandler(topic string, trigger RunTrigger, metrics domrepo.Metrics, logger *xlogger.Logger) *RunRequestHandler {
	return &RunRequestHandler{topic: topic, trigger: trigger, metrics: metrics, logger: logger}
}

func (h *RunRequestHandler) Topic() string { return h.topic }

// Handle parses one request message and fires a run. A malformed message is
// an error (so the consumer can dead-letter it); a rejected trigger is not.
func (h *RunRequestHandler) Handle(ctx context.Context, b []byte) error {
	var req models.RunRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	opts := RunOptions{
		Symbols:    models.NormalizeSymbols(req.Symbols),
		Workers:    req.Workers,
		DryRun:     req.DryRun,
		SkipReview: req.SkipReview,
	}
	if err := h.trigger.TriggerRun(ctx, opts); err != nil {
		h.logger.Warn("run request rejected", xlogger.Error(err))
		h.metrics.RecordError("run_request_rejected")
		return nil
	}
	h.logger.Info("run request accepted", xlogger.Int("symbols", len(opts.Symbols)))
	return nil
}

var _ pkgkafka.MessageHandler = (*RunRequestHandler)(nil)
