package usecase

import (
	"context"

	"WatchPull/internal/domain/models"
	drepo "WatchPull/internal/domain/repository"
	mid "WatchPull/internal/middleware"
)

// QuoteCollector consumes the realtime quote stream and keeps the quote
// board current. Serve mode only; one-shot runs never start it.
type QuoteCollector struct {
	stream  drepo.QuoteStream
	board   *QuoteBoard
	pipe    *mid.QuotePipeline
	metrics drepo.Metrics
}

// NewQuoteCollector creates a collector.
func NewQuoteCollector(stream drepo.QuoteStream, board *QuoteBoard, pipe *mid.QuotePipeline, metrics drepo.Metrics) *QuoteCollector {
	return &QuoteCollector{stream: stream, board: board, pipe: pipe, metrics: metrics}
}

// IsConnected reports whether the quote stream is up.
func (c *QuoteCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes, and launches the consume loop.
func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	qCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, qCh, errCh)
	return nil
}

// consume drains the stream's channel pair. The stream closes both channels
// when its read loop dies; once both are drained, consume reconnects and
// swaps in a fresh pair from Read. A nil channel blocks its select case.
func (c *QuoteCollector) consume(ctx context.Context, qCh <-chan *models.Quote, errCh <-chan error) {
	for {
		if qCh == nil && errCh == nil {
			var ok bool
			if qCh, errCh, ok = c.reopen(ctx); !ok {
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case err, open := <-errCh:
			if !open {
				errCh = nil
				continue
			}
			if err != nil {
				c.metrics.RecordError("stream")
			}
		case q, open := <-qCh:
			if !open {
				qCh = nil
				continue
			}
			if q == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, q)
			} else {
				_ = c.board.Apply(ctx, q)
			}
			c.metrics.RecordLastPrice(q.Symbol, q.Price)
		}
	}
}

// reopen re-dials the stream and restarts its read loop. Retries until the
// context is cancelled; the stream's own reconnect delay throttles the loop.
func (c *QuoteCollector) reopen(ctx context.Context) (<-chan *models.Quote, <-chan error, bool) {
	for {
		if ctx.Err() != nil {
			return nil, nil, false
		}
		if err := c.stream.Reconnect(ctx); err != nil {
			c.metrics.RecordError("stream_reconnect")
			continue
		}
		qCh, errCh := c.stream.Read(ctx)
		return qCh, errCh, true
	}
}

// Stop closes the underlying stream.
func (c *QuoteCollector) Stop() error { return c.stream.Close() }
