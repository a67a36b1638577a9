package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"WatchPull/internal/domain/models"
	"WatchPull/internal/domain/repository"
)

// ClickHouseResultStore persists per-run analysis results for later querying.
type ClickHouseResultStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseResultStore creates a ClickHouse-backed result store.
func NewClickHouseResultStore(db *sql.DB, table string) repository.ResultStore {
	return &ClickHouseResultStore{db: db, table: table}
}

func (s *ClickHouseResultStore) Init(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id String,
		analyzed_at DateTime,
		symbol String,
		name String,
		advice LowCardinality(String),
		score Float64,
		sentiment String,
		summary String,
		risks String
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(analyzed_at)
	ORDER BY (symbol, analyzed_at)`, s.table)
	_, err := s.db.ExecContext(ctx, q)
	return err
}

func (s *ClickHouseResultStore) StoreRun(ctx context.Context, runID string, results []*models.AnalysisResult) error {
	if len(results) == 0 {
		return nil
	}
	values := make([]string, 0, len(results))
	args := make([]interface{}, 0, len(results)*9)
	for _, r := range results {
		if r == nil || r.Symbol == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			runID,
			r.AnalyzedAt,
			r.Symbol,
			r.Name,
			r.Advice,
			r.Score,
			r.Sentiment,
			r.Summary,
			strings.Join(r.Risks, "\n"),
		)
	}
	if len(values) == 0 {
		return nil
	}
	q := fmt.Sprintf("INSERT INTO %s (run_id, analyzed_at, symbol, name, advice, score, sentiment, summary, risks) VALUES %s",
		s.table, strings.Join(values, ","))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *ClickHouseResultStore) LatestResults(ctx context.Context, limit int) ([]*models.AnalysisResult, error) {
	if limit <= 0 {
		limit = 50
	}
	q := fmt.Sprintf(`SELECT symbol, name, advice, score, sentiment, summary, risks, analyzed_at
		FROM %s ORDER BY analyzed_at DESC LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.AnalysisResult
	for rows.Next() {
		var r models.AnalysisResult
		var risks string
		var at time.Time
		if err := rows.Scan(&r.Symbol, &r.Name, &r.Advice, &r.Score, &r.Sentiment, &r.Summary, &risks, &at); err != nil {
			return nil, err
		}
		r.AnalyzedAt = at
		if risks != "" {
			r.Risks = strings.Split(risks, "\n")
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *ClickHouseResultStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseResultStore) Close() error {
	return nil // Managed by pkg
}
