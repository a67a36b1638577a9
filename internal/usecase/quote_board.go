package usecase

import (
	"context"
	"sync"
	"time"

	"WatchPull/internal/domain/models"
)

// QuoteBoard holds the latest quote per symbol. The scanner consults it for
// live prices in serve mode; entries past maxAge are treated as absent.
type QuoteBoard struct {
	mu     sync.RWMutex
	quotes map[string]*models.Quote
	maxAge time.Duration
}

// NewQuoteBoard creates a board. maxAge <= 0 disables staleness checks.
func NewQuoteBoard(maxAge time.Duration) *QuoteBoard {
	return &QuoteBoard{quotes: make(map[string]*models.Quote), maxAge: maxAge}
}

// Apply records the quote, replacing any previous entry for its symbol.
func (b *QuoteBoard) Apply(_ context.Context, q *models.Quote) error {
	b.mu.Lock()
	b.quotes[q.Symbol] = q
	b.mu.Unlock()
	return nil
}

// LastPrice returns the freshest known price for symbol, if any.
func (b *QuoteBoard) LastPrice(symbol string) (float64, bool) {
	b.mu.RLock()
	q, ok := b.quotes[symbol]
	b.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if b.maxAge > 0 && time.Since(time.Unix(q.Timestamp, 0)) > b.maxAge {
		return 0, false
	}
	return q.Price, true
}

// Len reports how many symbols currently have a quote.
func (b *QuoteBoard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.quotes)
}
