package research

import (
	"maps"
	"slices"
	"sort"

	"github.com/gimiv/stayfull-research/internal/model"
)

// Merger resolves per-source answers into one profile.
type Merger struct {
	rules Rules
}

// NewMerger creates a merger using rules.
func NewMerger(rules Rules) *Merger {
	return &Merger{rules: rules}
}

// Merge resolves every field from results. Failed results contribute
// nothing. The output does not depend on the order of results.
func (m *Merger) Merge(q model.Query, results []model.SourceResult) *model.Profile {
	p := model.NewProfile(q)

	// Sort by source id so every strategy sees a stable order.
	ok := make([]model.SourceResult, 0, len(results))
	for _, r := range results {
		if !r.Failed() {
			ok = append(ok, r)
		}
	}
	sort.SliceStable(ok, func(i, j int) bool { return ok[i].Source < ok[j].Source })

	for _, field := range []model.Field{
		model.FieldName,
		model.FieldAddress,
		model.FieldPhone,
		model.FieldWebsite,
		model.FieldCheckInTime,
		model.FieldCheckOutTime,
	} {
		cands := scalarCandidates(ok, field)
		if v, prov, found := consensusWithAuthority(cands, m.rules.AuthorityOrder(field), m.rules.ConsensusThreshold); found {
			setScalar(p, field, v)
			p.Tag(field, prov)
		}
	}

	if v, prov, found := longestValid(scalarCandidates(ok, model.FieldDescription), m.rules.MinDescriptionLength); found {
		p.Description = &v
		p.Tag(model.FieldDescription, prov)
	}

	var amenities []candidate[[]string]
	for _, r := range ok {
		if len(r.Fields.Amenities) > 0 {
			amenities = append(amenities, candidate[[]string]{r.Source, r.Fields.Amenities})
		}
	}
	if v, prov, found := union(amenities); found {
		p.Amenities = v
		p.Tag(model.FieldAmenities, prov)
	}

	if v, prov, found := m.mergeRooms(ok); found {
		p.RoomTypes = v
		p.Tag(model.FieldRoomTypes, prov)
	}

	var totals []candidate[int]
	for _, r := range ok {
		if r.Fields.TotalRooms != nil {
			totals = append(totals, candidate[int]{r.Source, *r.Fields.TotalRooms})
		}
	}
	if v, prov, found := median(totals); found {
		p.TotalRooms = &v
		p.Tag(model.FieldTotalRooms, prov)
	}

	for _, r := range ok {
		if r.Source != m.rules.GeoSource {
			continue
		}
		if r.Fields.Latitude != nil {
			lat := *r.Fields.Latitude
			p.Latitude = &lat
			p.Tag(model.FieldLatitude, model.Discovered(model.StrategyGroundTruth, r.Source))
		}
		if r.Fields.Longitude != nil {
			lng := *r.Fields.Longitude
			p.Longitude = &lng
			p.Tag(model.FieldLongitude, model.Discovered(model.StrategyGroundTruth, r.Source))
		}
	}

	var policies []candidate[map[string]any]
	var photos []candidate[[]string]
	for _, r := range ok {
		if len(r.Fields.Policies) > 0 {
			policies = append(policies, candidate[map[string]any]{r.Source, r.Fields.Policies})
		}
		if len(r.Fields.Photos) > 0 {
			photos = append(photos, candidate[[]string]{r.Source, r.Fields.Photos})
		}
	}
	if v, prov, found := firstInOrder(policies, m.rules.PolicySources); found {
		p.Policies = maps.Clone(v)
		p.Tag(model.FieldPolicies, prov)
	}
	if v, prov, found := firstInOrder(photos, m.rules.PhotoSources); found {
		p.Photos = slices.Clone(v)
		p.Tag(model.FieldPhotos, prov)
	}

	return p
}

// mergeRooms uses the web-search source's list exclusively when it has one
// and otherwise aggregates the remaining sources.
func (m *Merger) mergeRooms(ok []model.SourceResult) ([]model.RoomType, model.Provenance, bool) {
	var rest []candidate[[]model.RoomType]
	for _, r := range ok {
		if len(r.Fields.RoomTypes) == 0 {
			continue
		}
		if r.Source == m.rules.WebSearchSource {
			return slices.Clone(r.Fields.RoomTypes), model.Discovered(model.StrategyExclusive, r.Source), true
		}
		rest = append(rest, candidate[[]model.RoomType]{r.Source, r.Fields.RoomTypes})
	}
	return aggregateRooms(rest)
}

func scalarCandidates(results []model.SourceResult, field model.Field) []candidate[string] {
	var out []candidate[string]
	for _, r := range results {
		if v := r.Fields.Scalar(field); v != nil && *v != "" {
			out = append(out, candidate[string]{r.Source, *v})
		}
	}
	return out
}

func setScalar(p *model.Profile, field model.Field, v string) {
	switch field {
	case model.FieldName:
		p.Name = &v
	case model.FieldAddress:
		p.Address = &v
	case model.FieldPhone:
		p.Phone = &v
	case model.FieldWebsite:
		p.Website = &v
	case model.FieldCheckInTime:
		p.CheckInTime = &v
	case model.FieldCheckOutTime:
		p.CheckOutTime = &v
	}
}
