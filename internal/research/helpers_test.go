package research

import (
	"context"
	"time"

	"github.com/gimiv/stayfull-research/internal/model"
)

// stubAdapter returns a canned result after an optional delay.
type stubAdapter struct {
	id          string
	fields      model.HotelFields
	confidence  *float64
	err         error
	delay       time.Duration
	ignoreCtx   bool
	panicMsg    string
	website     bool
	gotWebsites chan string
}

func (s *stubAdapter) ID() string { return s.id }

func (s *stubAdapter) NeedsWebsite() bool { return s.website }

func (s *stubAdapter) Fetch(ctx context.Context, q model.Query) (model.SourceResult, error) {
	if s.gotWebsites != nil {
		s.gotWebsites <- q.Website
	}
	if s.delay > 0 {
		if s.ignoreCtx {
			time.Sleep(s.delay)
		} else {
			select {
			case <-time.After(s.delay):
			case <-ctx.Done():
				return model.SourceResult{}, ctx.Err()
			}
		}
	}
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.err != nil {
		return model.SourceResult{}, s.err
	}
	return model.SourceResult{Source: s.id, Fields: s.fields, Confidence: s.confidence}, nil
}

func ok(source string, f model.HotelFields) model.SourceResult {
	return model.SourceResult{Source: source, Fields: f}
}

func str(s string) *string { return &s }

func testQuery() model.Query {
	return model.NewQuery("Seaside Inn", "Miami", "FL")
}

func adapters(as ...*stubAdapter) []Adapter {
	out := make([]Adapter, 0, len(as))
	for _, a := range as {
		out = append(out, a)
	}
	return out
}
