package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"WatchPull/internal/domain/models"
)

func sampleResults(symbols ...string) []*models.AnalysisResult {
	out := make([]*models.AnalysisResult, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, &models.AnalysisResult{
			Symbol: s,
			Name:   s + " Corp",
			Advice: models.AdviceBuy,
			Score:  70,
		})
	}
	return out
}

func TestGateSuppressedSendsNothing(t *testing.T) {
	n := &fakeNotifier{}
	g := NewNotifyGate(n, newTestLogger(t), NotifyBatched, true)

	g.Dispatch(context.Background(), sampleResults("AAA", "BBB"), "report")

	if n.sendCount() != 0 {
		t.Fatalf("suppressed gate sent %d messages", n.sendCount())
	}
}

func TestGateBatchedSendsOne(t *testing.T) {
	n := &fakeNotifier{}
	g := NewNotifyGate(n, newTestLogger(t), NotifyBatched, false)

	g.Dispatch(context.Background(), sampleResults("AAA", "BBB", "CCC"), "")

	if n.sendCount() != 1 {
		t.Fatalf("batched gate sent %d messages, want 1", n.sendCount())
	}
	for _, sym := range []string{"AAA", "BBB", "CCC"} {
		if !strings.Contains(n.sent[0], sym) {
			t.Fatalf("batched message missing %s:\n%s", sym, n.sent[0])
		}
	}
}

func TestGatePerUnitSendsEach(t *testing.T) {
	n := &fakeNotifier{}
	g := NewNotifyGate(n, newTestLogger(t), NotifyPerUnit, false)

	g.Dispatch(context.Background(), sampleResults("AAA", "BBB"), "market looked calm")

	// one per result plus one for the review report
	if n.sendCount() != 3 {
		t.Fatalf("per-unit gate sent %d messages, want 3", n.sendCount())
	}
}

func TestGateEmptyInputSendsNothing(t *testing.T) {
	n := &fakeNotifier{}
	g := NewNotifyGate(n, newTestLogger(t), NotifyBatched, false)

	g.Dispatch(context.Background(), nil, "")

	if n.sendCount() != 0 {
		t.Fatalf("empty dispatch sent %d messages", n.sendCount())
	}
}

func TestGateSwallowsTransportErrors(t *testing.T) {
	n := &fakeNotifier{err: fmt.Errorf("webhook 500")}
	g := NewNotifyGate(n, newTestLogger(t), NotifyPerUnit, false)

	// must not panic or abort between sends
	g.Dispatch(context.Background(), sampleResults("AAA", "BBB"), "")

	if n.sendCount() != 2 {
		t.Fatalf("gate stopped after a transport error: %d sends", n.sendCount())
	}
}

func TestGateNilNotifier(t *testing.T) {
	g := NewNotifyGate(nil, newTestLogger(t), NotifyBatched, false)
	g.Dispatch(context.Background(), sampleResults("AAA"), "")
}
