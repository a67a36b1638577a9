package models

// Requests for the serve-mode HTTP endpoints. Defined in domain for consistency and reuse.

type RunRequest struct {
	Symbols    []string `json:"symbols" validate:"omitempty,dive,min=1,max=16"`
	DryRun     bool     `json:"dry_run" default:"false"`
	SkipReview bool     `json:"skip_review" default:"false"`
	Workers    int      `json:"workers" default:"0" validate:"gte=0,lte=16"`
}

type LatestResultsRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}
