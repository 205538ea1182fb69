package research

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gimiv/stayfull-research/internal/model"
)

// Outcome is everything a research run produced.
type Outcome struct {
	Profile  *model.Profile
	Results  []model.SourceResult
	Progress []model.SourceProgress
	Score    ScoreBreakdown
	Duration time.Duration
}

// Researcher runs the full gather, merge, default and score pipeline.
type Researcher struct {
	coord    *Coordinator
	merger   *Merger
	defaults *DefaultsApplier
}

// New creates a researcher over the registered adapters.
func New(reg *Registry, rules Rules, tz TimezoneLookup, opts ...CoordinatorOption) *Researcher {
	opts = append([]CoordinatorOption{WithDiscoveryOrder(rules.WebsiteDiscovery...)}, opts...)
	return &Researcher{
		coord:    NewCoordinator(reg.Adapters(), opts...),
		merger:   NewMerger(rules),
		defaults: NewDefaultsApplier(tz),
	}
}

// Sources returns the configured adapter ids.
func (r *Researcher) Sources() []string {
	return r.coord.SourceIDs()
}

// Research researches q, reporting progress to tracker (which may be nil).
// Provider failures lower confidence but never produce an error; only an
// invalid query does.
func (r *Researcher) Research(ctx context.Context, q model.Query, tracker *Tracker) (*Outcome, error) {
	if tracker == nil {
		tracker = NewTracker()
	}
	log := zap.L().With(zap.String("hotel", q.Name), zap.String("location", q.Location()))
	start := time.Now()

	results, err := r.coord.Gather(ctx, q, tracker)
	if err != nil {
		return nil, eris.Wrap(err, "research: run")
	}

	profile := r.merger.Merge(q, results)
	r.defaults.Apply(ctx, profile, q)

	score := Score(profile, results, len(results))
	profile.OverallConfidence = score.Total
	for _, res := range results {
		if res.Usable() {
			profile.SourcesUsed = append(profile.SourcesUsed, res.Source)
		}
	}

	out := &Outcome{
		Profile:  profile,
		Results:  results,
		Progress: tracker.Snapshot(),
		Score:    score,
		Duration: time.Since(start),
	}

	log.Info("research: complete",
		zap.Strings("sources_used", profile.SourcesUsed),
		zap.Int("fields", profile.FieldCount()),
		zap.Float64("confidence", score.Total),
		zap.Duration("duration", out.Duration),
	)
	return out, nil
}
