package model

import (
	"encoding/json"
	"sort"
)

// Profile is the merged, annotated result of a research run.
type Profile struct {
	Name         *string
	Address      *string
	Phone        *string
	Website      *string
	Description  *string
	Amenities    []string
	RoomTypes    []RoomType
	TotalRooms   *int
	CheckInTime  *string
	CheckOutTime *string
	Policies     map[string]any
	Latitude     *float64
	Longitude    *float64
	Photos       []string

	Timezone *string
	Currency *string
	TaxRate  *float64 // percent, e.g. 13.0
	Language *string

	Provenance        map[Field]Provenance
	OverallConfidence float64
	SourcesUsed       []string
	Searched          Query
}

// NewProfile returns an empty profile for q.
func NewProfile(q Query) *Profile {
	return &Profile{
		Provenance:  make(map[Field]Provenance),
		SourcesUsed: []string{},
		Searched:    q,
	}
}

// Tag records provenance for field.
func (p *Profile) Tag(field Field, prov Provenance) {
	if p.Provenance == nil {
		p.Provenance = make(map[Field]Provenance)
	}
	p.Provenance[field] = prov
}

// Has reports whether field holds a non-empty value.
func (p *Profile) Has(field Field) bool {
	switch field {
	case FieldName:
		return present(p.Name)
	case FieldAddress:
		return present(p.Address)
	case FieldPhone:
		return present(p.Phone)
	case FieldWebsite:
		return present(p.Website)
	case FieldDescription:
		return present(p.Description)
	case FieldAmenities:
		return len(p.Amenities) > 0
	case FieldRoomTypes:
		return len(p.RoomTypes) > 0
	case FieldTotalRooms:
		return p.TotalRooms != nil
	case FieldCheckInTime:
		return present(p.CheckInTime)
	case FieldCheckOutTime:
		return present(p.CheckOutTime)
	case FieldPolicies:
		return len(p.Policies) > 0
	case FieldLatitude:
		return p.Latitude != nil
	case FieldLongitude:
		return p.Longitude != nil
	case FieldPhotos:
		return len(p.Photos) > 0
	case FieldTimezone:
		return present(p.Timezone)
	case FieldCurrency:
		return present(p.Currency)
	case FieldTaxRate:
		return p.TaxRate != nil
	case FieldLanguage:
		return present(p.Language)
	}
	return false
}

// FieldCount counts populated, non-metadata fields.
func (p *Profile) FieldCount() int {
	n := 0
	for _, f := range allFields {
		if p.Has(f) {
			n++
		}
	}
	return n
}

var allFields = []Field{
	FieldName, FieldAddress, FieldPhone, FieldWebsite, FieldDescription,
	FieldAmenities, FieldRoomTypes, FieldTotalRooms, FieldCheckInTime,
	FieldCheckOutTime, FieldPolicies, FieldLatitude, FieldLongitude,
	FieldPhotos, FieldTimezone, FieldCurrency, FieldTaxRate, FieldLanguage,
}

// Flatten renders the profile as the flat wire map consumed by the
// onboarding UI: field values, _source_<field> tags and run metadata.
func (p *Profile) Flatten() map[string]any {
	out := map[string]any{
		string(FieldName):         p.Name,
		string(FieldAddress):      p.Address,
		string(FieldPhone):        p.Phone,
		string(FieldWebsite):      p.Website,
		string(FieldDescription):  p.Description,
		string(FieldAmenities):    p.Amenities,
		string(FieldRoomTypes):    p.RoomTypes,
		string(FieldTotalRooms):   p.TotalRooms,
		string(FieldCheckInTime):  p.CheckInTime,
		string(FieldCheckOutTime): p.CheckOutTime,
		string(FieldPolicies):     p.Policies,
		string(FieldLatitude):     p.Latitude,
		string(FieldLongitude):    p.Longitude,
		string(FieldPhotos):       p.Photos,
		string(FieldTimezone):     p.Timezone,
		string(FieldCurrency):     p.Currency,
		string(FieldTaxRate):      p.TaxRate,
		string(FieldLanguage):     p.Language,
	}
	for field, prov := range p.Provenance {
		out["_source_"+string(field)] = prov.String()
	}
	sources := p.SourcesUsed
	if sources == nil {
		sources = []string{}
	}
	out["_overall_confidence"] = p.OverallConfidence
	out["_sources_used"] = sources
	out["_hotel_name_searched"] = p.Searched.Name
	out["_city_searched"] = p.Searched.City
	out["_state_searched"] = p.Searched.State
	return out
}

// MarshalJSON encodes the flattened form.
func (p *Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Flatten())
}

// ProvenanceFields returns the tagged fields in sorted order.
func (p *Profile) ProvenanceFields() []Field {
	out := make([]Field, 0, len(p.Provenance))
	for f := range p.Provenance {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
