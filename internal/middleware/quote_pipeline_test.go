package middleware

import (
	"context"
	"sync"
	"testing"
	"time"

	"WatchPull/internal/domain/models"
)

type captureSink struct {
	mu     sync.Mutex
	quotes []*models.Quote
}

func (s *captureSink) Apply(_ context.Context, q *models.Quote) error {
	s.mu.Lock()
	s.quotes = append(s.quotes, q)
	s.mu.Unlock()
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quotes)
}

type nopMetrics struct{}

func (nopMetrics) RecordRun(string)                   {}
func (nopMetrics) RecordUnitAdvice(string)            {}
func (nopMetrics) RecordUnitFailure(string)           {}
func (nopMetrics) RecordError(string)                 {}
func (nopMetrics) RecordPhaseLatency(string, float64) {}
func (nopMetrics) RecordLastPrice(string, float64)    {}
func (nopMetrics) RecordLastScore(string, float64)    {}

func TestPipelineRejectsInvalidQuotes(t *testing.T) {
	sink := &captureSink{}
	p := NewQuotePipeline(sink, nopMetrics{})

	cases := []*models.Quote{
		nil,
		{Symbol: "", Price: 1, Timestamp: 1},
		{Symbol: "AAA", Price: 1, Timestamp: 0},
		{Symbol: "AAA", Price: -1, Timestamp: 1},
	}
	for _, q := range cases {
		if err := p.Process(context.Background(), q); err == nil {
			t.Fatalf("quote %+v accepted", q)
		}
	}
	if sink.count() != 0 {
		t.Fatalf("invalid quotes reached the sink")
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	sink := &captureSink{}
	p := NewQuotePipeline(sink, nopMetrics{}, WithMaxRPS(1))

	q := &models.Quote{Symbol: "AAA", Price: 1, Timestamp: time.Now().Unix()}
	for i := 0; i < 5; i++ {
		if err := p.Process(context.Background(), q); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	// first quote accepted, the burst throttled
	if sink.count() != 1 {
		t.Fatalf("sink saw %d quotes, want 1", sink.count())
	}

	// different symbols are throttled independently
	other := &models.Quote{Symbol: "BBB", Price: 2, Timestamp: time.Now().Unix()}
	if err := p.Process(context.Background(), other); err != nil {
		t.Fatalf("process: %v", err)
	}
	if sink.count() != 2 {
		t.Fatalf("sink saw %d quotes, want 2", sink.count())
	}
}
