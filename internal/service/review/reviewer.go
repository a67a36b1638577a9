package review

import (
	"context"
	"fmt"
	"strings"

	domservice "WatchPull/internal/domain/service"
	"WatchPull/internal/service/marketdata"
	xlogger "WatchPull/pkg/logger"
)

// promptRunner is the slice of the analyzer the reviewer needs.
type promptRunner interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Reviewer produces the single whole-market report: index snapshots plus
// recent headlines, summarized by the model.
type Reviewer struct {
	md           *marketdata.Client
	search       domservice.SearchService
	llm          promptRunner
	logger       *xlogger.Logger
	indexSymbols []string
	newsLimit    int
}

// New creates a market reviewer.
func New(md *marketdata.Client, search domservice.SearchService, llm promptRunner, logger *xlogger.Logger, indexSymbols []string, newsLimit int) *Reviewer {
	if newsLimit <= 0 {
		newsLimit = 5
	}
	return &Reviewer{
		md:           md,
		search:       search,
		llm:          llm,
		logger:       logger,
		indexSymbols: indexSymbols,
		newsLimit:    newsLimit,
	}
}

// Review runs once per eligible run; it is strictly sequential.
func (r *Reviewer) Review(ctx context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("You are a market strategist. Write a short end-of-day market review ")
	b.WriteString("(tone: factual, no hype) from the index data and headlines below. ")
	b.WriteString("Close with one line on overall risk appetite for tomorrow.\n\n")

	for _, idx := range r.indexSymbols {
		snap, err := r.md.Snapshot(ctx, idx)
		if err != nil {
			// A missing index degrades the report, it does not abort it.
			r.logger.Warn("review index fetch failed", xlogger.String("symbol", idx), xlogger.Error(err))
			continue
		}
		fmt.Fprintf(&b, "index %s (%s): close=%.2f change=%.2f%% turnover=%.0f\n",
			snap.Symbol, snap.Name, snap.Price, snap.ChangePct, snap.Turnover)
	}

	if r.search != nil {
		items, err := r.search.Search(ctx, "stock market today close summary", r.newsLimit)
		if err != nil {
			r.logger.Warn("review headline search failed", xlogger.Error(err))
		}
		for _, it := range items {
			fmt.Fprintf(&b, "headline: %s (%s)\n", it.Title, it.Source)
		}
	}

	report, err := r.llm.Complete(ctx, b.String())
	if err != nil {
		return "", fmt.Errorf("market review: %w", err)
	}
	return strings.TrimSpace(report), nil
}
