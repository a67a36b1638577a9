package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"WatchPull/internal/domain/models"
)

func testPipeline(t *testing.T, deps PipelineDeps, settings PipelineSettings) *Pipeline {
	t.Helper()
	if deps.Metrics == nil {
		deps.Metrics = newFakeMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = newTestLogger(t)
	}
	if deps.Assembler == nil {
		deps.Assembler = NewAssembler(nil, deps.Logger)
	}
	if settings.Workers == 0 {
		settings.Workers = 2
	}
	return NewPipeline(deps, settings)
}

func TestPipelineFullRun(t *testing.T) {
	an := &fakeAnalyzer{failOn: map[string]bool{"CCC": true}}
	n := &fakeNotifier{}
	rev := &fakeReviewer{report: "indexes closed mixed"}
	store := newFakeStore()
	m := newFakeMetrics()

	p := testPipeline(t, PipelineDeps{
		Analyzer: an,
		Reviewer: rev,
		Notifier: n,
		Store:    store,
		Metrics:  m,
	}, PipelineSettings{
		Symbols:       []string{"AAA", "BBB", "CCC", "DDD", "EEE"},
		Workers:       2,
		Cooldown:      time.Millisecond,
		ReviewEnabled: true,
		NotifyEnabled: true,
		NotifyMode:    NotifyBatched,
	})

	report, err := p.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Assembled != 5 || report.Analyzed != 4 || report.Failed != 1 {
		t.Fatalf("report = %d assembled, %d analyzed, %d failed", report.Assembled, report.Analyzed, report.Failed)
	}
	if !report.ReviewRan {
		t.Fatalf("review did not run")
	}
	for _, phase := range []string{PhaseAssembling, PhaseAnalyzing, PhaseCooldown, PhaseReviewing, PhaseSummarizing} {
		if report.Phases[phase] != models.PhaseOK {
			t.Fatalf("phase %s = %s, want ok", phase, report.Phases[phase])
		}
	}
	if n.sendCount() != 1 {
		t.Fatalf("sent %d notifications, want 1 batched", n.sendCount())
	}
	if len(store.runs[report.RunID]) != 4 {
		t.Fatalf("stored %d results, want 4", len(store.runs[report.RunID]))
	}
	if m.runs["ok"] != 1 {
		t.Fatalf("run outcomes = %v", m.runs)
	}
}

func TestPipelineEmptyWorklist(t *testing.T) {
	an := &fakeAnalyzer{}
	n := &fakeNotifier{}

	p := testPipeline(t, PipelineDeps{Analyzer: an, Notifier: n}, PipelineSettings{
		NotifyEnabled: true,
		NotifyMode:    NotifyBatched,
	})

	report, err := p.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Assembled != 0 || report.Analyzed != 0 {
		t.Fatalf("report = %+v, want empty run", report)
	}
	if an.analyzeCalls() != 0 {
		t.Fatalf("analyzer called on empty work-list")
	}
	if n.sendCount() != 0 {
		t.Fatalf("empty run sent %d notifications", n.sendCount())
	}
}

func TestPipelineDryRun(t *testing.T) {
	an := &fakeAnalyzer{}
	n := &fakeNotifier{}
	rev := &fakeReviewer{report: "should not run"}
	probe := &fakeProbe{symbols: []string{"CCC"}}

	p := testPipeline(t, PipelineDeps{
		Analyzer:  an,
		Notifier:  n,
		Reviewer:  rev,
		Assembler: NewAssembler(probe, newTestLogger(t)),
	}, PipelineSettings{
		Symbols:       []string{"AAA", "BBB"},
		ReviewEnabled: true,
		NotifyEnabled: true,
	})

	report, err := p.Run(context.Background(), RunOptions{DryRun: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if probe.scanCalls() != 0 {
		t.Fatalf("probe called on dry run")
	}
	if an.fetchCalls() != 2 || an.analyzeCalls() != 0 {
		t.Fatalf("dry run: %d fetches, %d analyses", an.fetchCalls(), an.analyzeCalls())
	}
	if report.ReviewRan || rev.calls != 0 {
		t.Fatalf("review ran on dry run")
	}
	if n.sendCount() != 0 {
		t.Fatalf("dry run sent %d notifications", n.sendCount())
	}
}

func TestPipelineReviewOnly(t *testing.T) {
	an := &fakeAnalyzer{}
	rev := &fakeReviewer{report: "quiet session"}

	p := testPipeline(t, PipelineDeps{Analyzer: an, Reviewer: rev}, PipelineSettings{
		Symbols: []string{"AAA"},
	})

	report, err := p.Run(context.Background(), RunOptions{ReviewOnly: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if an.analyzeCalls() != 0 {
		t.Fatalf("analyzer called on review-only run")
	}
	if !report.ReviewRan || rev.calls != 1 {
		t.Fatalf("review did not run")
	}
	if report.Phases[PhaseAssembling] != models.PhaseSkipped {
		t.Fatalf("assembling = %s, want skipped", report.Phases[PhaseAssembling])
	}
}

func TestPipelineSkipReview(t *testing.T) {
	rev := &fakeReviewer{report: "should not run"}

	p := testPipeline(t, PipelineDeps{Analyzer: &fakeAnalyzer{}, Reviewer: rev}, PipelineSettings{
		Symbols:       []string{"AAA"},
		ReviewEnabled: true,
	})

	report, err := p.Run(context.Background(), RunOptions{SkipReview: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.ReviewRan || rev.calls != 0 {
		t.Fatalf("review ran despite skip")
	}
	if report.Phases[PhaseReviewing] != models.PhaseSkipped {
		t.Fatalf("reviewing = %s, want skipped", report.Phases[PhaseReviewing])
	}
}

func TestPipelineReviewFailureDoesNotAbortRun(t *testing.T) {
	rev := &fakeReviewer{err: fmt.Errorf("llm unavailable")}
	n := &fakeNotifier{}

	p := testPipeline(t, PipelineDeps{Analyzer: &fakeAnalyzer{}, Reviewer: rev, Notifier: n}, PipelineSettings{
		Symbols:       []string{"AAA", "BBB"},
		ReviewEnabled: true,
		NotifyEnabled: true,
		NotifyMode:    NotifyBatched,
	})

	report, err := p.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Phases[PhaseReviewing] != models.PhaseFailed {
		t.Fatalf("reviewing = %s, want failed", report.Phases[PhaseReviewing])
	}
	if report.Phases[PhaseSummarizing] != models.PhaseOK {
		t.Fatalf("summarizing did not complete after review failure")
	}
	if n.sendCount() != 1 {
		t.Fatalf("results not dispatched after review failure")
	}
}

func TestPipelineReviewPanicContained(t *testing.T) {
	rev := &fakeReviewer{panics: true}

	p := testPipeline(t, PipelineDeps{Analyzer: &fakeAnalyzer{}, Reviewer: rev}, PipelineSettings{
		Symbols:       []string{"AAA"},
		ReviewEnabled: true,
	})

	report, err := p.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Phases[PhaseReviewing] != models.PhaseFailed {
		t.Fatalf("reviewing = %s, want failed", report.Phases[PhaseReviewing])
	}
	if report.FaultCause != "" {
		t.Fatalf("review panic escalated to run fault: %s", report.FaultCause)
	}
}

func TestPipelineTopLevelFaultCaught(t *testing.T) {
	m := newFakeMetrics()
	// nil assembler dereference inside Run is a top-level fault
	p := NewPipeline(PipelineDeps{
		Analyzer: &fakeAnalyzer{},
		Metrics:  m,
		Logger:   newTestLogger(t),
	}, PipelineSettings{Symbols: []string{"AAA"}, Workers: 1})

	report, err := p.Run(context.Background(), RunOptions{})
	if err == nil {
		t.Fatalf("expected fault error")
	}
	if report == nil || report.FaultCause == "" {
		t.Fatalf("fault not captured in report")
	}
	if m.runs["fault"] != 1 {
		t.Fatalf("run outcomes = %v, want one fault", m.runs)
	}
}

func TestPipelineSymbolOverride(t *testing.T) {
	an := &fakeAnalyzer{}

	p := testPipeline(t, PipelineDeps{Analyzer: an}, PipelineSettings{
		Symbols: []string{"AAA", "BBB", "CCC"},
	})

	report, err := p.Run(context.Background(), RunOptions{Symbols: []string{"ZZZ"}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Assembled != 1 || an.analyzeCalls() != 1 {
		t.Fatalf("override not honored: assembled=%d calls=%d", report.Assembled, an.analyzeCalls())
	}
}
