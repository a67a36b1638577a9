package analyzer

import (
	"testing"

	"WatchPull/internal/domain/models"
)

func TestParseVerdictPlainJSON(t *testing.T) {
	out := `{"advice":"buy","score":72,"sentiment":"positive","summary":"steady uptrend","risks":["earnings next week"]}`
	v, err := parseVerdict(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Advice != "buy" || v.Score != 72 {
		t.Fatalf("verdict = %+v", v)
	}
	if len(v.Risks) != 1 {
		t.Fatalf("risks = %v", v.Risks)
	}
}

func TestParseVerdictCodeFence(t *testing.T) {
	out := "Here is my assessment:\n```json\n{\"advice\":\"sell\",\"score\":30}\n```\n"
	v, err := parseVerdict(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v.Advice != "sell" || v.Score != 30 {
		t.Fatalf("verdict = %+v", v)
	}
}

func TestParseVerdictNoJSON(t *testing.T) {
	if _, err := parseVerdict("I cannot help with that."); err == nil {
		t.Fatalf("expected error for missing json")
	}
}

func TestNormalizeAdvice(t *testing.T) {
	cases := map[string]string{
		"BUY":        models.AdviceBuy,
		" sell ":     models.AdviceSell,
		"avoid":      models.AdviceAvoid,
		"risk_alert": models.AdviceRiskAlert,
		"risk":       models.AdviceRiskAlert,
		"":           models.AdviceHold,
		"whatever":   models.AdviceHold,
	}
	for in, want := range cases {
		if got := normalizeAdvice(in); got != want {
			t.Fatalf("normalizeAdvice(%q) = %q, want %q", in, got, want)
		}
	}
}
