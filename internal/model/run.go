package model

import (
	"encoding/json"
	"time"
)

// RunStatus represents the current state of a research run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusResearch RunStatus = "researching"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one persisted research request.
type Run struct {
	ID         string           `json:"id"`
	Query      Query            `json:"query"`
	Status     RunStatus        `json:"status"`
	Confidence float64          `json:"confidence"`
	Profile    json.RawMessage  `json:"profile,omitempty"`
	Progress   []SourceProgress `json:"progress,omitempty"`
	Error      string           `json:"error,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
