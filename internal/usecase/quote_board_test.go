package usecase

import (
	"context"
	"testing"
	"time"

	"WatchPull/internal/domain/models"
)

func TestQuoteBoardLastPrice(t *testing.T) {
	b := NewQuoteBoard(0)
	ctx := context.Background()

	if _, ok := b.LastPrice("AAA"); ok {
		t.Fatalf("empty board returned a price")
	}

	_ = b.Apply(ctx, &models.Quote{Symbol: "AAA", Price: 101.5, Timestamp: time.Now().Unix()})
	_ = b.Apply(ctx, &models.Quote{Symbol: "AAA", Price: 102.0, Timestamp: time.Now().Unix()})

	price, ok := b.LastPrice("AAA")
	if !ok || price != 102.0 {
		t.Fatalf("LastPrice = %v, %v; want 102.0, true", price, ok)
	}
	if b.Len() != 1 {
		t.Fatalf("board has %d symbols, want 1", b.Len())
	}
}

func TestQuoteBoardStaleEntry(t *testing.T) {
	b := NewQuoteBoard(time.Minute)
	ctx := context.Background()

	old := time.Now().Add(-2 * time.Minute).Unix()
	_ = b.Apply(ctx, &models.Quote{Symbol: "AAA", Price: 99, Timestamp: old})

	if _, ok := b.LastPrice("AAA"); ok {
		t.Fatalf("stale quote returned as live price")
	}
}
