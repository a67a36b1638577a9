package usecase

import (
	"context"
	"sync"
	"time"

	"WatchPull/internal/domain/models"
	domrepo "WatchPull/internal/domain/repository"
	domservice "WatchPull/internal/domain/service"
	xlogger "WatchPull/pkg/logger"
)

// BatchRunner executes one analysis unit per work-list symbol under a fixed
// worker bound. A unit failing (error or panic) is logged with its symbol and
// dropped from the output; it never affects other units or the batch itself.
// Result order follows completion, not submission.
type BatchRunner struct {
	analyzer domservice.Analyzer
	metrics  domrepo.Metrics
	logger   *xlogger.Logger
	workers  int
}

// NewBatchRunner creates a runner with the given worker bound (min 1).
func NewBatchRunner(analyzer domservice.Analyzer, metrics domrepo.Metrics, logger *xlogger.Logger, workers int) *BatchRunner {
	if workers < 1 {
		workers = 1
	}
	return &BatchRunner{analyzer: analyzer, metrics: metrics, logger: logger, workers: workers}
}

// Run submits every work-list symbol exactly once and blocks until all units
// complete or fail. An empty work-list yields an empty result set without
// touching the analyzer.
func (r *BatchRunner) Run(ctx context.Context, worklist []string, dryRun bool) []*models.AnalysisResult {
	if len(worklist) == 0 {
		return nil
	}

	workers := r.workers
	if workers > len(worklist) {
		workers = len(worklist)
	}

	jobs := make(chan string)
	results := make(chan *models.AnalysisResult, len(worklist))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				if res := r.runOne(ctx, sym, dryRun); res != nil {
					results <- res
				}
			}
		}()
	}

	for _, sym := range worklist {
		jobs <- sym
	}
	close(jobs)

	wg.Wait()
	close(results)

	collected := make([]*models.AnalysisResult, 0, len(worklist))
	for res := range results {
		collected = append(collected, res)
	}
	return collected
}

// runOne executes a single unit. Panics are confined here so one misbehaving
// analyzer call cannot take the batch down.
func (r *BatchRunner) runOne(ctx context.Context, symbol string, dryRun bool) (res *models.AnalysisResult) {
	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			r.metrics.RecordUnitFailure(symbol)
			r.logger.Error("analysis unit panicked",
				xlogger.String("symbol", symbol), xlogger.Any("panic", rec))
		}
	}()

	start := time.Now()

	if dryRun {
		if _, err := r.analyzer.Fetch(ctx, symbol); err != nil {
			r.metrics.RecordUnitFailure(symbol)
			r.logger.Error("dry-run fetch failed", xlogger.String("symbol", symbol), xlogger.Error(err))
			return nil
		}
		r.logger.Info("data fetched, analysis skipped", xlogger.String("symbol", symbol))
		return nil
	}

	out, err := r.analyzer.Analyze(ctx, symbol)
	if err != nil {
		r.metrics.RecordUnitFailure(symbol)
		r.logger.Error("analysis unit failed", xlogger.String("symbol", symbol), xlogger.Error(err))
		return nil
	}

	r.metrics.RecordUnitAdvice(out.Advice)
	r.metrics.RecordLastScore(symbol, out.Score)
	r.logger.Info("analysis unit completed",
		xlogger.String("symbol", symbol),
		xlogger.String("advice", out.Advice),
		xlogger.Duration("took", time.Since(start)))
	return out
}
