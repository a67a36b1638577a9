package service

import (
	"context"

	"WatchPull/internal/domain/models"
)

// Analyzer produces a structured result for one symbol. Implementations own
// their network I/O, retries and rate-limit handling; the batch runner only
// isolates their failures.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (*models.AnalysisResult, error)
	// Fetch retrieves market data without scoring it (dry-run path).
	Fetch(ctx context.Context, symbol string) (*models.Snapshot, error)
}

// ScanProbe surfaces symbols exhibiting notable market conditions as extra
// analysis candidates.
type ScanProbe interface {
	Scan(ctx context.Context, limit int) ([]string, error)
}

// SearchService returns recent headlines for a query.
type SearchService interface {
	Search(ctx context.Context, query string, limit int) ([]models.NewsItem, error)
}

// MarketReviewer runs the single whole-market review step. The returned
// report may be empty when the reviewer has nothing to say.
type MarketReviewer interface {
	Review(ctx context.Context) (string, error)
}

// DocPublisher publishes a document and returns its reference URL.
// A nil DocPublisher means publishing is unconfigured and the phase is skipped.
type DocPublisher interface {
	Publish(ctx context.Context, title, content string) (string, error)
}
