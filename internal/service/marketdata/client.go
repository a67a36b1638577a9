package marketdata

import (
	"context"
	"fmt"
	"time"

	"WatchPull/internal/domain/models"
	"WatchPull/pkg/cache"
	xhttp "WatchPull/pkg/http"
)

// Mover is one row of the exchange movers board (decliners, volume spikes).
type Mover struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	ChangePct   float64 `json:"change_pct"`
	VolumeRatio float64 `json:"volume_ratio"`
	MA20        float64 `json:"ma20"`
}

// Client fetches per-symbol snapshots and market movers over HTTP.
// Snapshots are cached with a short TTL to keep repeated phases (dry-run
// fetch, analysis, review) from hammering the quote provider.
type Client struct {
	baseURL string
	client  *xhttp.Client
	cache   cache.Service
	ttl     time.Duration
}

type snapshotResp struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	PrevClose float64 `json:"prev_close"`
	ChangePct float64 `json:"change_pct"`
	Volume    float64 `json:"volume"`
	Turnover  float64 `json:"turnover"`
	MA5       float64 `json:"ma5"`
	MA10      float64 `json:"ma10"`
	MA20      float64 `json:"ma20"`
}

type moversResp struct {
	Movers []Mover `json:"movers"`
}

// NewClient creates a market data client. cacheSvc may be nil to disable caching.
func NewClient(baseURL string, timeout time.Duration, cacheSvc cache.Service, ttl time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		cache:   cacheSvc,
		ttl:     ttl,
	}
}

// Snapshot returns the current market state for one symbol.
func (c *Client) Snapshot(ctx context.Context, symbol string) (*models.Snapshot, error) {
	key := "snapshot:" + symbol
	if c.cache != nil {
		var cached models.Snapshot
		if err := c.cache.Get(ctx, key, &cached); err == nil && cached.Symbol != "" {
			return &cached, nil
		}
	}

	var sr snapshotResp
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/quote",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &sr)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", symbol, err)
	}
	if sr.Symbol == "" {
		sr.Symbol = symbol
	}

	snap := &models.Snapshot{
		Symbol:    sr.Symbol,
		Name:      sr.Name,
		Price:     sr.Price,
		PrevClose: sr.PrevClose,
		ChangePct: sr.ChangePct,
		Volume:    sr.Volume,
		Turnover:  sr.Turnover,
		MA5:       sr.MA5,
		MA10:      sr.MA10,
		MA20:      sr.MA20,
		FetchedAt: time.Now(),
	}
	if c.cache != nil {
		_ = c.cache.Set(ctx, key, snap, c.ttl)
	}
	return snap, nil
}

// Movers returns up to limit rows from the decliners/volume board.
func (c *Client) Movers(ctx context.Context, limit int) ([]Mover, error) {
	if limit <= 0 {
		limit = 20
	}
	var mr moversResp
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/movers",
		QueryParams: map[string][]string{
			"sort":  {"change_pct"},
			"order": {"asc"},
			"limit": {fmt.Sprintf("%d", limit)},
		},
	}, &mr)
	if err != nil {
		return nil, fmt.Errorf("movers: %w", err)
	}
	if len(mr.Movers) > limit {
		mr.Movers = mr.Movers[:limit]
	}
	return mr.Movers, nil
}
