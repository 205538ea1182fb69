// Package adapters implements the research providers: web-grounded search,
// three general LLMs, the business directory and the hotel's own website.
package adapters

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gimiv/stayfull-research/internal/model"
	"github.com/gimiv/stayfull-research/internal/resilience"
)

// completeFunc sends one system/user prompt and returns the raw answer.
type completeFunc func(ctx context.Context, system, user string) (string, error)

// LLM is a research adapter backed by a language model that answers from
// its own knowledge or live search.
type LLM struct {
	id       string
	guard    *resilience.Guard
	complete completeFunc
}

// ID returns the provider identifier.
func (a *LLM) ID() string { return a.id }

// Fetch asks the model about the hotel and parses its JSON answer.
func (a *LLM) Fetch(ctx context.Context, q model.Query) (model.SourceResult, error) {
	text, err := resilience.Call(ctx, a.guard, func(ctx context.Context) (string, error) {
		return a.complete(ctx, researchSystemPrompt, researchPrompt(q))
	})
	if err != nil {
		return model.SourceResult{}, eris.Wrapf(err, "%s: research", a.id)
	}

	fields, conf, err := ParseHotel(text)
	if err != nil {
		zap.L().Debug("adapters: unparseable answer",
			zap.String("source", a.id),
			zap.Int("length", len(text)),
		)
		return model.SourceResult{}, eris.Wrapf(err, "%s: parse answer", a.id)
	}
	return model.SourceResult{Fields: fields, Confidence: conf}, nil
}
