package research

import (
	"math"

	"github.com/gimiv/stayfull-research/internal/model"
)

// Score weights. Each component is capped at its weight before summing.
const (
	YieldWeight        = 0.4
	CompletenessWeight = 0.4
	SelfReportWeight   = 0.2
)

// ScoreBreakdown exposes the three confidence components.
type ScoreBreakdown struct {
	Yield        float64 `json:"yield"`
	Completeness float64 `json:"completeness"`
	SelfReported float64 `json:"self_reported"`
	Total        float64 `json:"total"`
}

// Score computes the overall confidence of p given the raw results from
// configured sources. The result is always in [0, 1].
func Score(p *model.Profile, results []model.SourceResult, configured int) ScoreBreakdown {
	var b ScoreBreakdown
	if configured <= 0 {
		return b
	}

	usable := 0
	var confSum float64
	confN := 0
	for _, r := range results {
		if !r.Usable() {
			continue
		}
		usable++
		// Non-finite self-reports are ignored rather than clamped.
		if c := r.Confidence; c != nil && !math.IsNaN(*c) && !math.IsInf(*c, 0) {
			confSum += clamp01(*r.Confidence)
			confN++
		}
	}

	b.Yield = min(float64(usable)/float64(configured), 1) * YieldWeight

	present := 0
	for _, f := range model.CriticalFields {
		if p.Has(f) {
			present++
		}
	}
	b.Completeness = float64(present) / float64(len(model.CriticalFields)) * CompletenessWeight

	if confN > 0 {
		b.SelfReported = confSum / float64(confN) * SelfReportWeight
	}

	b.Total = clamp01(b.Yield + b.Completeness + b.SelfReported)
	return b
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
