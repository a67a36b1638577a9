package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"WatchPull/internal/domain/models"
	xlogger "WatchPull/pkg/logger"
)

func newTestLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type fakeMetrics struct {
	mu       sync.Mutex
	runs     map[string]int
	advice   map[string]int
	failures map[string]int
	errors   map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		runs:     make(map[string]int),
		advice:   make(map[string]int),
		failures: make(map[string]int),
		errors:   make(map[string]int),
	}
}

func (m *fakeMetrics) RecordRun(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[outcome]++
}

func (m *fakeMetrics) RecordUnitAdvice(advice string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advice[advice]++
}

func (m *fakeMetrics) RecordUnitFailure(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[symbol]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordPhaseLatency(string, float64) {}
func (m *fakeMetrics) RecordLastPrice(string, float64)    {}
func (m *fakeMetrics) RecordLastScore(string, float64)    {}

func (m *fakeMetrics) failureCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.failures {
		n += c
	}
	return n
}

type fakeAnalyzer struct {
	mu          sync.Mutex
	analyzed    []string
	fetched     []string
	failOn      map[string]bool
	panicOn     map[string]bool
	delay       time.Duration
	inFlight    int
	maxInFlight int
}

func (a *fakeAnalyzer) Analyze(_ context.Context, symbol string) (*models.AnalysisResult, error) {
	a.mu.Lock()
	a.analyzed = append(a.analyzed, symbol)
	a.inFlight++
	if a.inFlight > a.maxInFlight {
		a.maxInFlight = a.inFlight
	}
	a.mu.Unlock()

	if a.delay > 0 {
		time.Sleep(a.delay)
	}

	a.mu.Lock()
	a.inFlight--
	a.mu.Unlock()

	if a.panicOn[symbol] {
		panic("analyzer blew up on " + symbol)
	}
	if a.failOn[symbol] {
		return nil, fmt.Errorf("analysis failed for %s", symbol)
	}
	return &models.AnalysisResult{
		Symbol:     symbol,
		Name:       symbol,
		Advice:     models.AdviceHold,
		Score:      50,
		AnalyzedAt: time.Now(),
	}, nil
}

func (a *fakeAnalyzer) Fetch(_ context.Context, symbol string) (*models.Snapshot, error) {
	a.mu.Lock()
	a.fetched = append(a.fetched, symbol)
	a.mu.Unlock()
	if a.failOn[symbol] {
		return nil, fmt.Errorf("fetch failed for %s", symbol)
	}
	return &models.Snapshot{Symbol: symbol, Price: 100}, nil
}

func (a *fakeAnalyzer) analyzeCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.analyzed)
}

func (a *fakeAnalyzer) fetchCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.fetched)
}

type fakeProbe struct {
	mu      sync.Mutex
	calls   int
	symbols []string
	err     error
}

func (p *fakeProbe) Scan(context.Context, int) ([]string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.symbols, nil
}

func (p *fakeProbe) scanCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, text string) error {
	n.mu.Lock()
	n.sent = append(n.sent, text)
	n.mu.Unlock()
	return n.err
}

func (n *fakeNotifier) Close() error { return nil }

func (n *fakeNotifier) sendCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeReviewer struct {
	report string
	err    error
	panics bool
	calls  int
}

func (r *fakeReviewer) Review(context.Context) (string, error) {
	r.calls++
	if r.panics {
		panic("reviewer blew up")
	}
	return r.report, r.err
}

type fakeStore struct {
	mu   sync.Mutex
	runs map[string][]*models.AnalysisResult
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: make(map[string][]*models.AnalysisResult)}
}

func (s *fakeStore) Init(context.Context) error { return nil }

func (s *fakeStore) StoreRun(_ context.Context, runID string, results []*models.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = results
	return nil
}

func (s *fakeStore) LatestResults(context.Context, int) ([]*models.AnalysisResult, error) {
	return nil, nil
}

func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }
