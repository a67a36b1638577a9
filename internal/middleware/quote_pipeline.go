package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"WatchPull/internal/domain/models"
	domrepo "WatchPull/internal/domain/repository"
)

// QuoteSink is the downstream a pipeline feeds.
type QuoteSink interface {
	Apply(ctx context.Context, q *models.Quote) error
}

// QuotePipeline sits between the WebSocket feed and the quote board. It
// validates every quote and throttles per symbol, so a bursty feed cannot
// dominate the board with redundant updates.
type QuotePipeline struct {
	sink    QuoteSink
	metrics domrepo.Metrics
	maxRPS  int

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

type PipelineOption func(*QuotePipeline)

// WithMaxRPS caps accepted quotes per second per symbol.
func WithMaxRPS(n int) PipelineOption {
	return func(p *QuotePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// NewQuotePipeline creates a pipeline with a default per-symbol cap of 20/s.
func NewQuotePipeline(sink QuoteSink, metrics domrepo.Metrics, opts ...PipelineOption) *QuotePipeline {
	p := &QuotePipeline{
		sink:     sink,
		metrics:  metrics,
		maxRPS:   20,
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates and throttles one quote, then forwards it. Throttled
// quotes are dropped silently; invalid ones are rejected with an error.
func (p *QuotePipeline) Process(ctx context.Context, q *models.Quote) error {
	if err := validateQuote(q); err != nil {
		p.metrics.RecordError("quote_validate")
		return err
	}
	if !p.allow(q.Symbol, time.Now()) {
		return nil
	}
	if err := p.sink.Apply(ctx, q); err != nil {
		p.metrics.RecordError("quote_apply")
		return fmt.Errorf("quote sink: %w", err)
	}
	return nil
}

func validateQuote(q *models.Quote) error {
	if q == nil {
		return fmt.Errorf("quote nil")
	}
	if q.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if q.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if q.Price < 0 || q.Volume < 0 {
		return fmt.Errorf("negative price/volume")
	}
	return nil
}

func (p *QuotePipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[symbol]
	if !last.IsZero() && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[symbol] = now
	return true
}
