// Package store persists research runs and their per-source progress.
package store

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/gimiv/stayfull-research/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status    model.RunStatus `json:"status,omitempty"`
	HotelName string          `json:"hotel_name,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

const defaultListLimit = 100

// Store defines the persistence interface for research runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, q model.Query) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, confidence float64, profile json.RawMessage) error
	FailRun(ctx context.Context, runID string, msg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Progress, one row per (run, source). Later updates replace earlier ones.
	UpsertProgress(ctx context.Context, runID string, p model.SourceProgress) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
