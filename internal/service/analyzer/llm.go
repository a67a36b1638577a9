package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"WatchPull/internal/domain/models"
	"WatchPull/internal/service/marketdata"
	"WatchPull/internal/service/ratelimit"
	xhttp "WatchPull/pkg/http"
	xlogger "WatchPull/pkg/logger"
)

// LLMAnalyzer scores one symbol by feeding its market snapshot to a chat
// completion endpoint. Latency, retries and rate limiting live here, not in
// the batch runner.
type LLMAnalyzer struct {
	md       *marketdata.Client
	client   *xhttp.Client
	limiter  *ratelimit.Limiter
	logger   *xlogger.Logger
	apiURL   string
	apiKey   string
	model    string
	attempts int
	maxRPS   float64
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// verdict is the JSON document the model is instructed to emit.
type verdict struct {
	Advice    string   `json:"advice"`
	Score     float64  `json:"score"`
	Sentiment string   `json:"sentiment"`
	Summary   string   `json:"summary"`
	Risks     []string `json:"risks"`
}

// New creates an LLM-backed analyzer.
func New(md *marketdata.Client, logger *xlogger.Logger, apiURL, apiKey, model string, timeout time.Duration, attempts int, maxRPS float64) *LLMAnalyzer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if attempts <= 0 {
		attempts = 3
	}
	return &LLMAnalyzer{
		md:       md,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:  ratelimit.New(),
		logger:   logger,
		apiURL:   apiURL,
		apiKey:   apiKey,
		model:    model,
		attempts: attempts,
		maxRPS:   maxRPS,
	}
}

// Fetch retrieves market data for a symbol without scoring it (dry-run path).
func (a *LLMAnalyzer) Fetch(ctx context.Context, symbol string) (*models.Snapshot, error) {
	return a.md.Snapshot(ctx, symbol)
}

// Analyze fetches the snapshot, asks the model for a verdict, and maps it
// into an AnalysisResult.
func (a *LLMAnalyzer) Analyze(ctx context.Context, symbol string) (*models.AnalysisResult, error) {
	snap, err := a.md.Snapshot(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	out, err := a.Complete(ctx, buildPrompt(snap))
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", symbol, err)
	}

	v, err := parseVerdict(out)
	if err != nil {
		return nil, fmt.Errorf("parse verdict %s: %w", symbol, err)
	}

	name := snap.Name
	if name == "" {
		name = symbol
	}
	return &models.AnalysisResult{
		Symbol:     symbol,
		Name:       name,
		Advice:     normalizeAdvice(v.Advice),
		Score:      v.Score,
		Sentiment:  v.Sentiment,
		Summary:    v.Summary,
		Risks:      v.Risks,
		AnalyzedAt: time.Now(),
	}, nil
}

// Complete sends one prompt and returns the model's text answer. Shared with
// the market reviewer, which builds its own prompts.
func (a *LLMAnalyzer) Complete(ctx context.Context, prompt string) (string, error) {
	if err := a.waitForSlot(ctx); err != nil {
		return "", err
	}

	req := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}

	var resp chatResponse
	var err error
	for i := 1; i <= a.attempts; i++ {
		err = a.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    a.apiURL + "/chat/completions",
			Headers: map[string]string{
				"Content-Type":  "application/json",
				"Authorization": "Bearer " + a.apiKey,
			},
			Body: req,
		}, &resp)
		if err == nil {
			break
		}
		a.logger.Warn("llm request failed", xlogger.Int("attempt", i), xlogger.Error(err))
		select {
		case <-time.After(time.Duration(i) * 500 * time.Millisecond):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// waitForSlot blocks until the token bucket admits one request.
func (a *LLMAnalyzer) waitForSlot(ctx context.Context) error {
	if a.maxRPS <= 0 {
		return nil
	}
	for {
		if a.limiter.Allow("llm", a.maxRPS, a.maxRPS) {
			return nil
		}
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func buildPrompt(s *models.Snapshot) string {
	var b strings.Builder
	b.WriteString("You are a cautious equity analyst. Given the market snapshot below, ")
	b.WriteString("reply with a single JSON object: ")
	b.WriteString(`{"advice":"buy|hold|sell|avoid|risk_alert","score":0-100,"sentiment":"...","summary":"...","risks":["..."]}.`)
	b.WriteString(" Rules: never chase strength more than 5% above MA5; prefer symbols with MA5>MA10>MA20; ")
	b.WriteString("flag risk_alert on breakdowns below MA20 with rising volume.\n\n")
	fmt.Fprintf(&b, "symbol=%s name=%s price=%.2f prev_close=%.2f change_pct=%.2f%%\n",
		s.Symbol, s.Name, s.Price, s.PrevClose, s.ChangePct)
	fmt.Fprintf(&b, "volume=%.0f turnover=%.0f ma5=%.2f ma10=%.2f ma20=%.2f\n",
		s.Volume, s.Turnover, s.MA5, s.MA10, s.MA20)
	return b.String()
}

// parseVerdict tolerates code fences and leading prose around the JSON body.
func parseVerdict(out string) (*verdict, error) {
	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no json object in model output")
	}
	var v verdict
	if err := json.Unmarshal([]byte(out[start:end+1]), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func normalizeAdvice(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.AdviceBuy:
		return models.AdviceBuy
	case models.AdviceSell:
		return models.AdviceSell
	case models.AdviceAvoid:
		return models.AdviceAvoid
	case models.AdviceRiskAlert, "risk", "alert":
		return models.AdviceRiskAlert
	default:
		return models.AdviceHold
	}
}
