package model

import "time"

// RunStatus represents the state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// SiteSummary counts the outcome of one site within a run.
type SiteSummary struct {
	SiteID            string       `json:"site_id"`
	SiteName          string       `json:"site_name,omitempty"`
	RecordsFound      int          `json:"records_found"`
	RecordsWritten    int          `json:"records_written"`
	DuplicatesSkipped int          `json:"duplicates_skipped"`
	Tiers             map[Tier]int `json:"tiers"`
}

// RunSummary is handed to the entrypoint after a run completes.
type RunSummary struct {
	RunID             string        `json:"run_id,omitempty"`
	RecordsFound      int           `json:"records_found"`
	RecordsWritten    int           `json:"records_written"`
	DuplicatesSkipped int           `json:"duplicates_skipped"`
	Sites             []SiteSummary `json:"sites"`
	StartedAt         time.Time     `json:"started_at"`
	FinishedAt        time.Time     `json:"finished_at"`
}

// Run is a persisted run summary.
type Run struct {
	ID        string      `json:"id"`
	Sites     []string    `json:"sites"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
