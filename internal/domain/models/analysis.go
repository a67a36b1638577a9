package models

import "time"

// Advice classifications produced by the analyzer.
const (
	AdviceBuy       = "buy"
	AdviceHold      = "hold"
	AdviceSell      = "sell"
	AdviceAvoid     = "avoid"
	AdviceRiskAlert = "risk_alert" // scan-probe captures default here
)

// Snapshot is the raw market state for one symbol at fetch time.
type Snapshot struct {
	Symbol    string
	Name      string
	Price     float64
	PrevClose float64
	ChangePct float64
	Volume    float64
	Turnover  float64
	MA5       float64
	MA10      float64
	MA20      float64
	FetchedAt time.Time
}

// AnalysisResult is the per-symbol output of one analysis unit.
// Immutable once produced; the batch runner owns it until summarization.
type AnalysisResult struct {
	Symbol     string    `json:"symbol"`
	Name       string    `json:"name"`
	Advice     string    `json:"advice"`
	Score      float64   `json:"score"`
	Sentiment  string    `json:"sentiment,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Risks      []string  `json:"risks,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// NewsItem is one headline returned by the search collaborator.
type NewsItem struct {
	Title       string
	Source      string
	URL         string
	PublishedAt time.Time
}

// Quote is one realtime tick from the quote stream.
type Quote struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp int64 // unix seconds
}
