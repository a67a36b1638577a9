package usecase

import (
	"context"
	"fmt"
	"testing"
)

type fakeTrigger struct {
	opts []RunOptions
	err  error
}

func (f *fakeTrigger) TriggerRun(_ context.Context, opts RunOptions) error {
	f.opts = append(f.opts, opts)
	return f.err
}

func TestRunRequestHandlerTriggersRun(t *testing.T) {
	trig := &fakeTrigger{}
	h := NewRunRequestHandler("runs", trig, newFakeMetrics(), newTestLogger(t))

	msg := []byte(`{"symbols":[" AAA ","BBB"],"dry_run":true,"workers":4}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(trig.opts) != 1 {
		t.Fatalf("triggered %d runs, want 1", len(trig.opts))
	}
	opts := trig.opts[0]
	if len(opts.Symbols) != 2 || opts.Symbols[0] != "AAA" {
		t.Fatalf("symbols = %v", opts.Symbols)
	}
	if !opts.DryRun || opts.Workers != 4 {
		t.Fatalf("opts = %+v", opts)
	}
}

func TestRunRequestHandlerMalformedMessage(t *testing.T) {
	trig := &fakeTrigger{}
	h := NewRunRequestHandler("runs", trig, newFakeMetrics(), newTestLogger(t))

	if err := h.Handle(context.Background(), []byte("not json")); err == nil {
		t.Fatalf("expected unmarshal error")
	}
	if len(trig.opts) != 0 {
		t.Fatalf("malformed message triggered a run")
	}
}

func TestRunRequestHandlerRejectedTriggerNotAnError(t *testing.T) {
	trig := &fakeTrigger{err: fmt.Errorf("a run is already in progress")}
	h := NewRunRequestHandler("runs", trig, newFakeMetrics(), newTestLogger(t))

	// a busy trigger must not dead-letter the message
	if err := h.Handle(context.Background(), []byte(`{}`)); err != nil {
		t.Fatalf("handle: %v", err)
	}
}
