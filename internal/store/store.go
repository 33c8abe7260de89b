// Package store persists run summaries and accepted dedupe keys so that
// duplicate suppression holds across runs.
package store

import (
	"context"

	"github.com/sells-group/lien-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	SiteID string          `json:"site_id,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the lien pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, sites []string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, summary *model.RunSummary) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Dedupe keys. Keys satisfies dedupe.KeySource.
	Keys(ctx context.Context) ([]string, error)
	AddKeys(ctx context.Context, runID string, keys []string) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100
