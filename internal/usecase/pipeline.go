package usecase

import (
	"context"
	"fmt"
	"time"

	"WatchPull/internal/domain/models"
	domrepo "WatchPull/internal/domain/repository"
	domservice "WatchPull/internal/domain/service"
	xlogger "WatchPull/pkg/logger"
)

// Pipeline phases, in run order.
const (
	PhaseAssembling  = "assembling"
	PhaseAnalyzing   = "analyzing"
	PhaseCooldown    = "cooldown"
	PhaseReviewing   = "reviewing"
	PhaseSummarizing = "summarizing"
)

// PipelineDeps are the collaborators a pipeline drives. Reviewer, Notifier,
// Store and Docs are optional; a nil collaborator skips its phase.
type PipelineDeps struct {
	Assembler *Assembler
	Analyzer  domservice.Analyzer
	Reviewer  domservice.MarketReviewer
	Notifier  domrepo.Notifier
	Store     domrepo.ResultStore
	Docs      domservice.DocPublisher
	Metrics   domrepo.Metrics
	Logger    *xlogger.Logger
}

// PipelineSettings is the immutable per-process configuration slice the
// pipeline reads. Nothing here changes during a run.
type PipelineSettings struct {
	Symbols       []string
	ScanLimit     int
	Workers       int
	Cooldown      time.Duration
	ReviewEnabled bool
	NotifyEnabled bool
	NotifyMode    string
}

// RunOptions are per-run overrides (CLI flags, API requests). Zero values
// defer to the settings.
type RunOptions struct {
	Symbols    []string
	Workers    int
	DryRun     bool
	ReviewOnly bool
	SkipReview bool
	NoNotify   bool
}

// Pipeline sequences one run: assemble, analyze, cooldown, review, summarize,
// dispatch. Every phase fault is contained at its boundary; a fault in one
// phase never crashes the process and independent later phases still run.
type Pipeline struct {
	deps     PipelineDeps
	settings PipelineSettings
}

// NewPipeline creates a phase sequencer.
func NewPipeline(deps PipelineDeps, settings PipelineSettings) *Pipeline {
	return &Pipeline{deps: deps, settings: settings}
}

// Run executes one full run and always produces a report. The returned error
// is non-nil only for a caught top-level fault; unit and phase faults are
// reflected in the report, not the error.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (report *models.RunReport, err error) {
	log := p.deps.Logger
	started := time.Now()
	rep := &models.RunReport{
		RunID:     started.Format("20060102-150405.000"),
		StartedAt: started,
		DryRun:    opts.DryRun,
		Phases:    make(map[string]string),
	}
	report = rep

	defer func() {
		rep.Duration = time.Since(started)
		if rec := recover(); rec != nil {
			rep.FaultCause = fmt.Sprint(rec)
			p.deps.Metrics.RecordRun("fault")
			log.Error("run aborted by fault", xlogger.Any("panic", rec))
			err = fmt.Errorf("run fault: %v", rec)
			return
		}
		log.Info("run complete",
			xlogger.String("run_id", rep.RunID),
			xlogger.Int("assembled", rep.Assembled),
			xlogger.Int("analyzed", rep.Analyzed),
			xlogger.Int("failed", rep.Failed),
			xlogger.Bool("review", rep.ReviewRan),
			xlogger.Duration("took", rep.Duration))
	}()

	symbols := opts.Symbols
	if len(symbols) == 0 {
		symbols = p.settings.Symbols
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = p.settings.Workers
	}
	reviewWill := p.deps.Reviewer != nil && !opts.DryRun &&
		(opts.ReviewOnly || (p.settings.ReviewEnabled && !opts.SkipReview))

	var results []*models.AnalysisResult

	if opts.ReviewOnly {
		rep.Phases[PhaseAssembling] = models.PhaseSkipped
		rep.Phases[PhaseAnalyzing] = models.PhaseSkipped
	} else {
		// ASSEMBLING: an empty work-list is valid and yields an empty batch.
		phaseStart := time.Now()
		worklist := p.deps.Assembler.Assemble(ctx, symbols, p.settings.ScanLimit, opts.DryRun)
		rep.Assembled = len(worklist)
		rep.Phases[PhaseAssembling] = models.PhaseOK
		p.deps.Metrics.RecordPhaseLatency(PhaseAssembling, time.Since(phaseStart).Seconds())
		log.Info("work-list assembled", xlogger.Int("symbols", len(worklist)))

		// ANALYZING
		phaseStart = time.Now()
		runner := NewBatchRunner(p.deps.Analyzer, p.deps.Metrics, log, workers)
		results = runner.Run(ctx, worklist, opts.DryRun)
		rep.Analyzed = len(results)
		if !opts.DryRun {
			rep.Failed = rep.Assembled - rep.Analyzed
		}
		rep.Phases[PhaseAnalyzing] = models.PhaseOK
		p.deps.Metrics.RecordPhaseLatency(PhaseAnalyzing, time.Since(phaseStart).Seconds())
	}

	// COOLDOWN: applies only when the review phase will actually run, to
	// stay clear of third-party rate limits right after the batch.
	var reviewReport string
	if reviewWill {
		if p.settings.Cooldown > 0 {
			log.Debug("cooldown before review", xlogger.Duration("wait", p.settings.Cooldown))
			select {
			case <-time.After(p.settings.Cooldown):
			case <-ctx.Done():
			}
		}
		rep.Phases[PhaseCooldown] = models.PhaseOK

		rep.ReviewRan = true
		reviewReport = p.runReview(ctx, rep)
	} else {
		rep.Phases[PhaseCooldown] = models.PhaseSkipped
		rep.Phases[PhaseReviewing] = models.PhaseSkipped
	}

	// SUMMARIZING is always reached; its own faults cannot block completion.
	p.summarize(results)
	rep.Phases[PhaseSummarizing] = models.PhaseOK

	p.persist(ctx, rep, results)
	p.publishReport(ctx, rep, reviewReport)

	suppressed := opts.NoNotify || !p.settings.NotifyEnabled
	gate := NewNotifyGate(p.deps.Notifier, log, p.settings.NotifyMode, suppressed)
	if opts.DryRun {
		log.Debug("dry run: nothing to dispatch")
	} else {
		gate.Dispatch(ctx, results, reviewReport)
	}

	p.deps.Metrics.RecordRun("ok")
	return rep, nil
}

// runReview isolates the review phase: an error or panic is logged, marked
// on the report, and the run proceeds.
func (p *Pipeline) runReview(ctx context.Context, rep *models.RunReport) (report string) {
	log := p.deps.Logger
	defer func() {
		if rec := recover(); rec != nil {
			report = ""
			rep.Phases[PhaseReviewing] = models.PhaseFailed
			p.deps.Metrics.RecordError("review_panic")
			log.Error("market review panicked", xlogger.Any("panic", rec))
		}
	}()

	start := time.Now()
	out, err := p.deps.Reviewer.Review(ctx)
	p.deps.Metrics.RecordPhaseLatency(PhaseReviewing, time.Since(start).Seconds())
	if err != nil {
		rep.Phases[PhaseReviewing] = models.PhaseFailed
		p.deps.Metrics.RecordError("review")
		log.Error("market review failed", xlogger.Error(err))
		return ""
	}
	rep.Phases[PhaseReviewing] = models.PhaseOK
	log.Info("market review complete", xlogger.Int("chars", len(out)))
	return out
}

// summarize logs a human-readable listing of every surviving result.
func (p *Pipeline) summarize(results []*models.AnalysisResult) {
	log := p.deps.Logger
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("summary failed", xlogger.Any("panic", rec))
		}
	}()

	if len(results) == 0 {
		log.Info("summary: no surviving results")
		return
	}
	log.Info("summary", xlogger.Int("results", len(results)))
	for _, r := range results {
		log.Info("result",
			xlogger.String("symbol", r.Symbol),
			xlogger.String("name", r.Name),
			xlogger.String("advice", r.Advice),
			xlogger.Float64("score", r.Score))
	}
}

func (p *Pipeline) persist(ctx context.Context, rep *models.RunReport, results []*models.AnalysisResult) {
	if p.deps.Store == nil || rep.DryRun || len(results) == 0 {
		return
	}
	if err := p.deps.Store.StoreRun(ctx, rep.RunID, results); err != nil {
		p.deps.Metrics.RecordError("store_run")
		p.deps.Logger.Error("result persistence failed", xlogger.Error(err))
	}
}

func (p *Pipeline) publishReport(ctx context.Context, rep *models.RunReport, report string) {
	if p.deps.Docs == nil || report == "" {
		return
	}
	title := "Market Review " + rep.StartedAt.Format("2006-01-02")
	url, err := p.deps.Docs.Publish(ctx, title, report)
	if err != nil {
		p.deps.Metrics.RecordError("doc_publish")
		p.deps.Logger.Error("review doc publish failed", xlogger.Error(err))
		return
	}
	rep.ReviewDoc = url
	p.deps.Logger.Info("review doc published", xlogger.String("url", url))
}
