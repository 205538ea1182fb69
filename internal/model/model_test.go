package model

import (
	"encoding/json"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{"valid", NewQuery("Seaside Inn", "Miami", "fl"), false},
		{"no state", NewQuery("Seaside Inn", "Miami", ""), false},
		{"missing name", NewQuery("  ", "Miami", "FL"), true},
		{"missing city", NewQuery("Seaside Inn", "", "FL"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.query.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, eris.Is(err, ErrInvalidQuery))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewQueryNormalizes(t *testing.T) {
	t.Parallel()

	q := NewQuery(" Seaside Inn ", " Miami", "fl ")
	assert.Equal(t, "Seaside Inn", q.Name)
	assert.Equal(t, "Miami", q.City)
	assert.Equal(t, "FL", q.State)
	assert.Equal(t, "US", q.CountryCode())
	assert.Equal(t, "Miami, FL", q.Location())

	q2 := q.WithWebsite("https://seaside.example")
	assert.Empty(t, q.Website)
	assert.Equal(t, "https://seaside.example", q2.Website)

	assert.Equal(t, "GB", Query{Country: "gb"}.CountryCode())
	assert.Equal(t, "London", Query{City: "London"}.Location())
}

func TestHotelFieldsCategories(t *testing.T) {
	t.Parallel()

	var empty HotelFields
	assert.True(t, empty.IsEmpty())

	f := HotelFields{
		Name:      StringPtr("Seaside Inn"),
		Phone:     StringPtr(""),
		Amenities: []string{"Pool"},
		Latitude:  FloatPtr(25.76),
	}
	assert.False(t, f.IsEmpty())
	// Empty phone and a latitude without longitude do not count.
	assert.Equal(t, []string{"Name", "Amenities"}, f.Categories())
}

func TestSourceResultUsable(t *testing.T) {
	t.Parallel()

	ok := SourceResult{Source: "perplexity", Fields: HotelFields{Name: StringPtr("X")}}
	assert.True(t, ok.Usable())
	assert.False(t, ok.Failed())

	blank := SourceResult{Source: "openai"}
	assert.False(t, blank.Usable())
	assert.False(t, blank.Failed())

	failed := ErrorResult("website", "no website URL found")
	assert.True(t, failed.Failed())
	assert.False(t, failed.Usable())
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusError.Terminal())

	assert.Equal(t, "Google Places", SourceDisplayName("google_places"))
	assert.Equal(t, "custom", SourceDisplayName("custom"))
}

func TestProvenanceString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prov Provenance
		want string
	}{
		{Discovered(StrategyConsensus, "openai", "perplexity"), "consensus:openai+perplexity"},
		{Discovered(StrategyAuthority, "google_places"), "authority:google_places"},
		{Discovered(StrategyUnion), "union"},
		{DefaultedBy(ReasonIndustryStandard), "industry standard"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.prov.String())
		})
	}

	assert.True(t, DefaultedBy(ReasonDefault).Defaulted())
	assert.False(t, Discovered(StrategyMedian, "openai").Defaulted())
}

func TestProfileFlatten(t *testing.T) {
	t.Parallel()

	p := NewProfile(NewQuery("Seaside Inn", "Miami", "FL"))
	p.Name = StringPtr("Seaside Inn")
	p.Tag(FieldName, Discovered(StrategyConsensus, "openai", "perplexity"))
	p.Currency = StringPtr("USD")
	p.Tag(FieldCurrency, DefaultedBy(ReasonLocationInference))
	p.OverallConfidence = 0.5
	p.SourcesUsed = []string{"openai", "perplexity"}

	flat := p.Flatten()
	assert.Equal(t, "consensus:openai+perplexity", flat["_source_name"])
	assert.Equal(t, "location inference", flat["_source_currency"])
	assert.Equal(t, 0.5, flat["_overall_confidence"])
	assert.Equal(t, "Seaside Inn", flat["_hotel_name_searched"])
	assert.Equal(t, "Miami", flat["_city_searched"])
	assert.Equal(t, "FL", flat["_state_searched"])
	assert.NotContains(t, flat, "_source_address")

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "Seaside Inn", decoded["name"])
	assert.Nil(t, decoded["address"])
	assert.Contains(t, decoded, "address")
	assert.Equal(t, []any{"openai", "perplexity"}, decoded["_sources_used"])

	assert.Equal(t, 2, p.FieldCount())
	assert.True(t, p.Has(FieldCurrency))
	assert.False(t, p.Has(FieldPhotos))
	assert.Equal(t, []Field{FieldCurrency, FieldName}, p.ProvenanceFields())
}

func TestProfileFlattenEmpty(t *testing.T) {
	t.Parallel()

	p := &Profile{}
	flat := p.Flatten()
	assert.Equal(t, []string{}, flat["_sources_used"])
	assert.Equal(t, 0.0, flat["_overall_confidence"])
}
