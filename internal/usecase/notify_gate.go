package usecase

import (
	"context"
	"fmt"
	"strings"

	"WatchPull/internal/domain/models"
	domrepo "WatchPull/internal/domain/repository"
	xlogger "WatchPull/pkg/logger"
)

// Notification dispatch modes, selected once per run from configuration.
const (
	NotifyBatched = "batched"
	NotifyPerUnit = "per_unit"
)

// NotifyGate decides whether and how results reach the notification
// transport. Transport failures are logged and swallowed; they never turn a
// completed analysis run into a failed process.
type NotifyGate struct {
	notifier   domrepo.Notifier
	logger     *xlogger.Logger
	mode       string
	suppressed bool
}

// NewNotifyGate creates a gate. A nil notifier behaves like suppression.
func NewNotifyGate(notifier domrepo.Notifier, logger *xlogger.Logger, mode string, suppressed bool) *NotifyGate {
	if mode != NotifyPerUnit {
		mode = NotifyBatched
	}
	return &NotifyGate{notifier: notifier, logger: logger, mode: mode, suppressed: suppressed}
}

// Dispatch forwards results and the optional review report. Empty input
// produces no notification traffic.
func (g *NotifyGate) Dispatch(ctx context.Context, results []*models.AnalysisResult, report string) {
	if g.suppressed {
		g.logger.Info("notifications suppressed", xlogger.Int("results", len(results)))
		return
	}
	if g.notifier == nil {
		return
	}

	switch g.mode {
	case NotifyPerUnit:
		for _, res := range results {
			g.send(ctx, formatResult(res))
		}
		if report != "" {
			g.send(ctx, formatReport(report))
		}
	default:
		if text := formatBatch(results, report); text != "" {
			g.send(ctx, text)
		}
	}
}

func (g *NotifyGate) send(ctx context.Context, text string) {
	if err := g.notifier.Send(ctx, text); err != nil {
		g.logger.Error("notification send failed", xlogger.Error(err))
	}
}

func formatResult(r *models.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s (%s)\n", strings.ToUpper(r.Advice), r.Name, r.Symbol)
	fmt.Fprintf(&b, "score: %.0f", r.Score)
	if r.Sentiment != "" {
		fmt.Fprintf(&b, " | sentiment: %s", r.Sentiment)
	}
	if r.Summary != "" {
		fmt.Fprintf(&b, "\n%s", r.Summary)
	}
	for _, risk := range r.Risks {
		fmt.Fprintf(&b, "\n- %s", risk)
	}
	return b.String()
}

func formatReport(report string) string {
	return "Market Review\n" + report
}

func formatBatch(results []*models.AnalysisResult, report string) string {
	if len(results) == 0 && report == "" {
		return ""
	}
	var b strings.Builder
	if len(results) > 0 {
		fmt.Fprintf(&b, "Watchlist Analysis (%d symbols)\n", len(results))
		for _, r := range results {
			fmt.Fprintf(&b, "%s %s (%s) score=%.0f\n", strings.ToUpper(r.Advice), r.Name, r.Symbol, r.Score)
		}
	}
	if report != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(formatReport(report))
	}
	return strings.TrimRight(b.String(), "\n")
}
