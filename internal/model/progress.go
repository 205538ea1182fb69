package model

import "time"

// Status is the lifecycle state of one provider call.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether no further transitions are expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// SourceProgress tracks a single provider during a research run.
type SourceProgress struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Status       Status    `json:"status"`
	DataFound    []string  `json:"data_found"`
	ErrorMessage string    `json:"error_message,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// sourceNames are display names for the known providers.
var sourceNames = map[string]string{
	"perplexity":    "Perplexity AI",
	"openai":        "OpenAI GPT-4",
	"anthropic":     "Anthropic Claude",
	"gemini":        "Google Gemini",
	"google_places": "Google Places",
	"website":       "Website Scraping",
}

// SourceDisplayName returns a human label for a provider id.
func SourceDisplayName(id string) string {
	if n, ok := sourceNames[id]; ok {
		return n
	}
	return id
}
