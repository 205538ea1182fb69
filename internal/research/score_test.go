package research

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gimiv/stayfull-research/internal/model"
)

func fullProfile() *model.Profile {
	p := model.NewProfile(testQuery())
	p.Name = str("Seaside Inn")
	p.Address = str("1 Ocean Dr")
	p.Phone = str("+1 305 555 0100")
	p.Website = str("https://seaside.example")
	p.Description = str("A small inn on the beach.")
	p.RoomTypes = []model.RoomType{{Name: "King"}}
	p.Amenities = []string{"Pool"}
	return p
}

func TestScore(t *testing.T) {
	t.Parallel()

	name := model.HotelFields{Name: str("Seaside Inn")}
	withConf := func(source string, c float64) model.SourceResult {
		r := ok(source, name)
		r.Confidence = &c
		return r
	}

	tests := []struct {
		name       string
		profile    *model.Profile
		results    []model.SourceResult
		configured int
		want       ScoreBreakdown
	}{
		{
			name:       "nothing configured",
			profile:    model.NewProfile(testQuery()),
			configured: 0,
			want:       ScoreBreakdown{},
		},
		{
			name:    "all sources failed",
			profile: model.NewProfile(testQuery()),
			results: []model.SourceResult{
				model.ErrorResult(SourceOpenAI, "x"),
				model.ErrorResult(SourceGemini, "y"),
			},
			configured: 2,
			want:       ScoreBreakdown{},
		},
		{
			name:       "everything present",
			profile:    fullProfile(),
			results:    []model.SourceResult{withConf(SourcePerplexity, 1), withConf(SourceWebsite, 1)},
			configured: 2,
			want:       ScoreBreakdown{Yield: 0.4, Completeness: 0.4, SelfReported: 0.2, Total: 1},
		},
		{
			name:    "half yield, no self reports",
			profile: fullProfile(),
			results: []model.SourceResult{
				ok(SourceOpenAI, name),
				model.ErrorResult(SourceGemini, "y"),
			},
			configured: 2,
			want:       ScoreBreakdown{Yield: 0.2, Completeness: 0.4, Total: 0.6000000000000001},
		},
		{
			name:    "failed source confidence ignored",
			profile: model.NewProfile(testQuery()),
			results: []model.SourceResult{
				withConf(SourcePerplexity, 0.5),
				{Source: SourceWebsite, Err: "boom", Confidence: model.FloatPtr(1)},
			},
			configured: 2,
			want:       ScoreBreakdown{Yield: 0.2, SelfReported: 0.1, Total: 0.30000000000000004},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Score(tt.profile, tt.results, tt.configured)
			assert.InDelta(t, tt.want.Yield, got.Yield, 1e-9)
			assert.InDelta(t, tt.want.Completeness, got.Completeness, 1e-9)
			assert.InDelta(t, tt.want.SelfReported, got.SelfReported, 1e-9)
			assert.InDelta(t, tt.want.Total, got.Total, 1e-9)
		})
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	t.Parallel()

	over := 7.5
	under := -3.0
	results := []model.SourceResult{
		{Source: SourcePerplexity, Fields: model.HotelFields{Name: str("A")}, Confidence: &over},
		{Source: SourceWebsite, Fields: model.HotelFields{Name: str("A")}, Confidence: &under},
	}
	for configured := 1; configured <= 6; configured++ {
		got := Score(fullProfile(), results, configured)
		assert.GreaterOrEqual(t, got.Total, 0.0)
		assert.LessOrEqual(t, got.Total, 1.0)
		assert.LessOrEqual(t, got.Yield, YieldWeight)
	}
}

func TestScore_NonFiniteSelfReport(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	inf := math.Inf(1)
	good := 0.8
	results := []model.SourceResult{
		{Source: SourcePerplexity, Fields: model.HotelFields{Name: str("A")}, Confidence: &nan},
		{Source: SourceOpenAI, Fields: model.HotelFields{Name: str("A")}, Confidence: &inf},
		{Source: SourceGemini, Fields: model.HotelFields{Name: str("A")}, Confidence: &good},
	}

	got := Score(fullProfile(), results, 3)
	assert.False(t, math.IsNaN(got.Total))
	assert.GreaterOrEqual(t, got.Total, 0.0)
	assert.LessOrEqual(t, got.Total, 1.0)
	assert.InDelta(t, 0.8*SelfReportWeight, got.SelfReported, 1e-9, "only the finite report counts")

	only := Score(fullProfile(), results[:1], 1)
	assert.Equal(t, 0.0, only.SelfReported)
	assert.False(t, math.IsNaN(only.Total))
}

func TestClamp01(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, clamp01(math.NaN()))
	assert.Equal(t, 0.0, clamp01(-1))
	assert.Equal(t, 1.0, clamp01(math.Inf(1)))
	assert.Equal(t, 0.5, clamp01(0.5))
}

func TestScore_PartialCompleteness(t *testing.T) {
	t.Parallel()

	p := model.NewProfile(testQuery())
	p.Name = str("Seaside Inn")
	p.Phone = str("555")
	// Defaulted fields are not on the critical checklist.
	p.Currency = str("USD")

	got := Score(p, nil, 6)
	assert.InDelta(t, 2.0/7.0*0.4, got.Completeness, 1e-9)
	assert.Equal(t, 0.0, got.Yield)
}
