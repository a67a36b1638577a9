package scanner

import (
	"context"
	"fmt"

	"WatchPull/internal/domain/models"
	"WatchPull/internal/service/marketdata"
	xlogger "WatchPull/pkg/logger"
)

// Breakdown thresholds. A mover is flagged when it plunges hard, or breaks
// below MA20 on a volume surge (distribution pattern).
const (
	plungePct      = -5.0
	volumeSurge    = 2.0
	oversampleMult = 5
)

// Scanner is the production ScanProbe: it pulls the decliners board and
// flags symbols showing breakdown behavior.
type Scanner struct {
	md        *marketdata.Client
	logger    *xlogger.Logger
	lastPrice func(symbol string) (float64, bool) // optional live feed
}

type Option func(*Scanner)

// WithLivePrices lets the scanner prefer a realtime price over the board
// snapshot when one is available (serve mode).
func WithLivePrices(fn func(symbol string) (float64, bool)) Option {
	return func(s *Scanner) { s.lastPrice = fn }
}

// New creates a market scanner.
func New(md *marketdata.Client, logger *xlogger.Logger, opts ...Option) *Scanner {
	s := &Scanner{md: md, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns up to limit symbols flagged as breakdown candidates.
func (s *Scanner) Scan(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	movers, err := s.md.Movers(ctx, limit*oversampleMult)
	if err != nil {
		return nil, fmt.Errorf("scan movers: %w", err)
	}

	found := make([]string, 0, limit)
	for _, m := range movers {
		if len(found) >= limit {
			break
		}
		price := m.Price
		if s.lastPrice != nil {
			if live, ok := s.lastPrice(m.Symbol); ok && live > 0 {
				price = live
			}
		}
		if !breakdown(m, price) {
			continue
		}
		sym := models.NormalizeSymbol(m.Symbol)
		if sym == "" {
			continue
		}
		s.logger.Debug("scanner flagged symbol",
			xlogger.String("symbol", sym),
			xlogger.Float64("change_pct", m.ChangePct),
			xlogger.Float64("volume_ratio", m.VolumeRatio))
		found = append(found, sym)
	}
	return found, nil
}

// breakdown reports whether a mover row matches the risk pattern.
func breakdown(m marketdata.Mover, price float64) bool {
	if m.ChangePct <= plungePct {
		return true
	}
	return m.MA20 > 0 && price < m.MA20 && m.VolumeRatio >= volumeSurge
}
