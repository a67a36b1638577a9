package models

import "time"

// Run phase outcomes recorded in the RunReport.
const (
	PhaseOK      = "ok"
	PhaseFailed  = "failed"
	PhaseSkipped = "skipped"
)

// RunReport summarizes one pipeline run. Returned by the sequencer and
// exposed through the serve-mode API.
type RunReport struct {
	RunID      string            `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	Duration   time.Duration     `json:"duration"`
	Assembled  int               `json:"assembled"`
	Analyzed   int               `json:"analyzed"`
	Failed     int               `json:"failed"`
	ReviewRan  bool              `json:"review_ran"`
	DryRun     bool              `json:"dry_run"`
	Phases     map[string]string `json:"phases"`
	ReviewDoc  string            `json:"review_doc,omitempty"`
	FaultCause string            `json:"fault_cause,omitempty"`
}
