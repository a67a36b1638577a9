package usecase

import (
	"context"
	"sort"
	"testing"
	"time"
)

func TestBatchRunsEverySymbolExactlyOnce(t *testing.T) {
	an := &fakeAnalyzer{}
	r := NewBatchRunner(an, newFakeMetrics(), newTestLogger(t), 2)

	worklist := []string{"AAA", "BBB", "CCC", "DDD", "EEE"}
	results := r.Run(context.Background(), worklist, false)

	if len(results) != len(worklist) {
		t.Fatalf("got %d results, want %d", len(results), len(worklist))
	}
	got := append([]string(nil), an.analyzed...)
	sort.Strings(got)
	for i, sym := range worklist {
		if got[i] != sym {
			t.Fatalf("analyzed symbols = %v, want %v", got, worklist)
		}
	}
}

func TestBatchRespectsWorkerBound(t *testing.T) {
	an := &fakeAnalyzer{delay: 20 * time.Millisecond}
	r := NewBatchRunner(an, newFakeMetrics(), newTestLogger(t), 2)

	r.Run(context.Background(), []string{"A", "B", "C", "D", "E", "F"}, false)

	if an.maxInFlight > 2 {
		t.Fatalf("max concurrent units = %d, want <= 2", an.maxInFlight)
	}
}

func TestBatchUnitFailureIsolated(t *testing.T) {
	an := &fakeAnalyzer{failOn: map[string]bool{"BBB": true, "DDD": true}}
	m := newFakeMetrics()
	r := NewBatchRunner(an, m, newTestLogger(t), 2)

	results := r.Run(context.Background(), []string{"AAA", "BBB", "CCC", "DDD", "EEE"}, false)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, res := range results {
		if res.Symbol == "BBB" || res.Symbol == "DDD" {
			t.Fatalf("failed symbol %s leaked into results", res.Symbol)
		}
	}
	if m.failureCount() != 2 {
		t.Fatalf("recorded %d failures, want 2", m.failureCount())
	}
}

func TestBatchUnitPanicIsolated(t *testing.T) {
	an := &fakeAnalyzer{panicOn: map[string]bool{"BBB": true}}
	m := newFakeMetrics()
	r := NewBatchRunner(an, m, newTestLogger(t), 2)

	results := r.Run(context.Background(), []string{"AAA", "BBB", "CCC"}, false)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if m.failureCount() != 1 {
		t.Fatalf("recorded %d failures, want 1", m.failureCount())
	}
}

func TestBatchEmptyWorklist(t *testing.T) {
	an := &fakeAnalyzer{}
	r := NewBatchRunner(an, newFakeMetrics(), newTestLogger(t), 2)

	results := r.Run(context.Background(), nil, false)

	if len(results) != 0 {
		t.Fatalf("got %d results for empty work-list", len(results))
	}
	if an.analyzeCalls() != 0 || an.fetchCalls() != 0 {
		t.Fatalf("analyzer touched on empty work-list")
	}
}

func TestBatchDryRunFetchesOnly(t *testing.T) {
	an := &fakeAnalyzer{}
	r := NewBatchRunner(an, newFakeMetrics(), newTestLogger(t), 2)

	results := r.Run(context.Background(), []string{"AAA", "BBB"}, true)

	if len(results) != 0 {
		t.Fatalf("dry run produced %d results", len(results))
	}
	if an.fetchCalls() != 2 {
		t.Fatalf("fetch called %d times, want 2", an.fetchCalls())
	}
	if an.analyzeCalls() != 0 {
		t.Fatalf("analyze called %d times on dry run", an.analyzeCalls())
	}
}
