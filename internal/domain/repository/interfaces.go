package repository

import (
	"context"

	"WatchPull/internal/domain/models"
)

// QuoteStream is a realtime market quote feed (serve mode only).
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Notifier delivers a notification payload. Transport failures are the
// caller's concern to swallow; Send reports them but never panics.
type Notifier interface {
	Send(ctx context.Context, text string) error
	Close() error
}

// ResultStore persists per-run analysis results.
type ResultStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreRun(ctx context.Context, runID string, results []*models.AnalysisResult) error
	LatestResults(ctx context.Context, limit int) ([]*models.AnalysisResult, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordRun(outcome string)
	RecordUnitAdvice(advice string)
	RecordUnitFailure(symbol string)
	RecordError(kind string)
	RecordPhaseLatency(phase string, seconds float64)
	RecordLastPrice(symbol string, price float64)
	RecordLastScore(symbol string, score float64)
}
