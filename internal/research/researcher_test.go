package research

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gimiv/stayfull-research/internal/model"
)

func registry(as ...*stubAdapter) *Registry {
	r := NewRegistry()
	for _, a := range as {
		r.Register(a)
	}
	return r
}

func TestResearch_EndToEnd(t *testing.T) {
	t.Parallel()

	desc := strings.Repeat("Beachfront inn with ocean views. ", 3)
	conf := 0.9
	reg := registry(
		&stubAdapter{id: SourcePerplexity, confidence: &conf, fields: model.HotelFields{
			Name: str("Seaside Inn"), Website: str("https://seaside.example"),
			Description: &desc, Amenities: []string{"Pool"},
			RoomTypes: []model.RoomType{{Name: "King"}},
		}},
		&stubAdapter{id: SourceOpenAI, fields: model.HotelFields{Name: str("Seaside Inn"), Amenities: []string{"WiFi"}}},
		&stubAdapter{id: SourcePlaces, fields: model.HotelFields{
			Address: str("1 Ocean Dr, Miami, FL"), Phone: str("+1 305-555-0100"),
			Latitude: model.FloatPtr(25.79), Longitude: model.FloatPtr(-80.13),
		}},
		&stubAdapter{id: SourceGemini, err: errors.New("gemini: quota exceeded")},
		&stubAdapter{id: SourceWebsite, website: true, fields: model.HotelFields{Photos: []string{"https://seaside.example/1.jpg"}}},
	)

	r := New(reg, DefaultRules(), nil, WithTimeout(time.Second))
	tracker := NewTracker()
	out, err := r.Research(context.Background(), testQuery(), tracker)
	require.NoError(t, err)

	p := out.Profile
	assert.Equal(t, "Seaside Inn", *p.Name)
	assert.Equal(t, "1 Ocean Dr, Miami, FL", *p.Address)
	assert.Equal(t, []string{"Pool", "WiFi"}, p.Amenities)
	assert.Equal(t, []string{SourcePerplexity, SourceOpenAI, SourcePlaces, SourceWebsite}, p.SourcesUsed)
	assert.Equal(t, 13.0, *p.TaxRate)

	// 4/5 usable, 7/7 critical fields, one self-report of 0.9.
	assert.InDelta(t, 0.4*4/5+0.4+0.2*0.9, p.OverallConfidence, 1e-9)
	assert.Len(t, out.Progress, 5)
	assert.Len(t, out.Results, 5)

	flat := p.Flatten()
	for key, v := range flat {
		if strings.HasPrefix(key, "_") {
			continue
		}
		if p.Has(model.Field(key)) {
			assert.Contains(t, flat, "_source_"+key, "value without provenance: %s=%v", key, v)
		}
	}
}

func TestResearch_NoUsableSources(t *testing.T) {
	t.Parallel()

	reg := registry(
		&stubAdapter{id: SourceOpenAI, err: errors.New("down")},
		&stubAdapter{id: SourceAnthropic, fields: model.HotelFields{}, confidence: model.FloatPtr(0.8)},
	)
	out, err := New(reg, DefaultRules(), nil).Research(context.Background(), testQuery(), nil)
	require.NoError(t, err)

	p := out.Profile
	assert.Equal(t, 0.0, p.OverallConfidence)
	assert.Empty(t, p.SourcesUsed)
	assert.Nil(t, p.Name)
	assert.Nil(t, p.Amenities)
	assert.Equal(t, "USD", *p.Currency)
	assert.Equal(t, 13.0, *p.TaxRate)
	assert.Equal(t, "15:00", *p.CheckInTime)
	assert.Equal(t, "11:00", *p.CheckOutTime)
	assert.Equal(t, "en", *p.Language)
	assert.NotNil(t, p.Timezone)
}

func TestResearch_NaNSelfReportKeepsProfileEncodable(t *testing.T) {
	t.Parallel()

	reg := registry(&stubAdapter{id: SourcePerplexity, confidence: model.FloatPtr(math.NaN()), fields: model.HotelFields{Name: str("Seaside Inn")}})
	out, err := New(reg, DefaultRules(), nil).Research(context.Background(), testQuery(), nil)
	require.NoError(t, err)

	c := out.Profile.OverallConfidence
	assert.False(t, math.IsNaN(c))
	assert.True(t, c >= 0 && c <= 1, "confidence %v out of range", c)

	_, err = json.Marshal(out.Profile)
	assert.NoError(t, err)
}

func TestResearch_ZeroAdapters(t *testing.T) {
	t.Parallel()

	out, err := New(NewRegistry(), DefaultRules(), nil).Research(context.Background(), testQuery(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out.Profile.OverallConfidence)
	assert.Empty(t, out.Results)
	assert.Empty(t, out.Progress)
}

func TestResearch_InvalidQuery(t *testing.T) {
	t.Parallel()

	_, err := New(NewRegistry(), DefaultRules(), nil).Research(context.Background(), model.Query{Name: "X"}, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrInvalidQuery))
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	a := &stubAdapter{id: SourceOpenAI}
	b := &stubAdapter{id: SourceGemini}
	reg.Register(a)
	reg.Register(b)
	reg.Register(&stubAdapter{id: SourceOpenAI, err: errors.New("replaced")})

	assert.Equal(t, []string{SourceOpenAI, SourceGemini}, reg.IDs())
	assert.Equal(t, 2, reg.Len())
	assert.NotSame(t, a, reg.Get(SourceOpenAI))
	assert.Nil(t, reg.Get("missing"))
	assert.Len(t, reg.Adapters(), 2)
}
