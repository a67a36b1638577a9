package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"WatchPull/internal/domain/models"
)

// fakeStream follows the quote stream contract: the read error is delivered
// on the error channel and then both channels close; a new pair comes from
// the next Read call.
type fakeStream struct {
	mu           sync.Mutex
	reads        int
	reconnects   int
	qCh          chan *models.Quote
	errCh        chan error
	reconnectErr error
}

func (s *fakeStream) Connect(context.Context) error   { return nil }
func (s *fakeStream) Subscribe(context.Context) error { return nil }
func (s *fakeStream) Close() error                    { return nil }
func (s *fakeStream) IsConnected() bool               { return true }

func (s *fakeStream) Read(context.Context) (<-chan *models.Quote, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	s.qCh = make(chan *models.Quote, 8)
	s.errCh = make(chan error, 1)
	return s.qCh, s.errCh
}

func (s *fakeStream) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	return s.reconnectErr
}

func (s *fakeStream) push(q *models.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qCh <- q
}

func (s *fakeStream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errCh <- err
	close(s.errCh)
	close(s.qCh)
}

func (s *fakeStream) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *fakeStream) reconnectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnects
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestQuoteCollectorFeedsBoard(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &fakeStream{}
	board := NewQuoteBoard(time.Minute)
	c := NewQuoteCollector(stream, board, nil, newFakeMetrics())
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	stream.push(&models.Quote{Symbol: "AAA", Price: 10, Timestamp: time.Now().Unix()})
	waitFor(t, "quote on board", func() bool {
		p, ok := board.LastPrice("AAA")
		return ok && p == 10
	})
}

func TestQuoteCollectorReconnectsAfterStreamFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &fakeStream{}
	board := NewQuoteBoard(time.Minute)
	metrics := newFakeMetrics()
	c := NewQuoteCollector(stream, board, nil, metrics)
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	stream.push(&models.Quote{Symbol: "AAA", Price: 10, Timestamp: time.Now().Unix()})
	waitFor(t, "first quote on board", func() bool {
		p, ok := board.LastPrice("AAA")
		return ok && p == 10
	})

	// the stream dies: error delivered, both channels closed
	stream.fail(fmt.Errorf("connection reset"))

	// the collector must reconnect and restart the read loop
	waitFor(t, "read loop restart", func() bool { return stream.readCount() == 2 })
	if n := stream.reconnectCount(); n != 1 {
		t.Fatalf("reconnects = %d, want 1", n)
	}

	// quotes from the reconnected stream still reach the board
	stream.push(&models.Quote{Symbol: "AAA", Price: 11, Timestamp: time.Now().Unix()})
	waitFor(t, "post-reconnect quote on board", func() bool {
		p, _ := board.LastPrice("AAA")
		return p == 11
	})
}
