// Package research gathers hotel facts from several providers concurrently
// and resolves them into one annotated profile.
package research

import (
	"context"
	"sync"

	"github.com/gimiv/stayfull-research/internal/model"
)

// Provider identifiers.
const (
	SourcePerplexity = "perplexity"
	SourceOpenAI     = "openai"
	SourceAnthropic  = "anthropic"
	SourceGemini     = "gemini"
	SourcePlaces     = "google_places"
	SourceWebsite    = "website"
)

// Adapter fetches hotel facts from a single provider.
type Adapter interface {
	// ID returns the stable provider identifier used in progress and provenance.
	ID() string
	// Fetch researches the hotel. A returned error marks the source as failed.
	Fetch(ctx context.Context, q model.Query) (model.SourceResult, error)
}

// WebsiteAdapter is implemented by adapters that can only run once a
// website URL is known. The coordinator defers them until discovery
// sources report one.
type WebsiteAdapter interface {
	Adapter
	NeedsWebsite() bool
}

func needsWebsite(a Adapter) bool {
	wa, ok := a.(WebsiteAdapter)
	return ok && wa.NeedsWebsite()
}

// Registry holds the configured adapters in registration order.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// Register adds an adapter. Registering an existing id replaces it in place.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[a.ID()]; !ok {
		r.order = append(r.order, a.ID())
	}
	r.adapters[a.ID()] = a
}

// Get returns an adapter by id, or nil if not found.
func (r *Registry) Get(id string) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapters[id]
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Adapters returns the registered adapters in registration order.
func (r *Registry) Adapters() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.adapters[id])
	}
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
