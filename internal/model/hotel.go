package model

import "time"

// Field names a canonical hotel profile field.
type Field string

const (
	FieldName         Field = "name"
	FieldAddress      Field = "address"
	FieldPhone        Field = "phone"
	FieldWebsite      Field = "website"
	FieldDescription  Field = "description"
	FieldAmenities    Field = "amenities"
	FieldRoomTypes    Field = "room_types"
	FieldTotalRooms   Field = "total_rooms"
	FieldCheckInTime  Field = "check_in_time"
	FieldCheckOutTime Field = "check_out_time"
	FieldPolicies     Field = "policies"
	FieldLatitude     Field = "latitude"
	FieldLongitude    Field = "longitude"
	FieldPhotos       Field = "photos"

	// Fields only ever filled by the defaults applier.
	FieldTimezone Field = "timezone"
	FieldCurrency Field = "currency"
	FieldTaxRate  Field = "tax_rate"
	FieldLanguage Field = "language"
)

// CriticalFields are the fields the completeness score checks.
var CriticalFields = []Field{
	FieldName,
	FieldAddress,
	FieldPhone,
	FieldWebsite,
	FieldDescription,
	FieldRoomTypes,
	FieldAmenities,
}

// RoomType is one room category offered by a hotel.
type RoomType struct {
	Name        string `json:"name"`
	Beds        string `json:"beds,omitempty"`
	Capacity    int    `json:"capacity,omitempty"`
	Description string `json:"description,omitempty"`
}

// HotelFields is the sparse set of fields a single provider returned.
// Nil pointers and nil slices mean "not provided".
type HotelFields struct {
	Name         *string        `json:"name,omitempty"`
	Address      *string        `json:"address,omitempty"`
	Phone        *string        `json:"phone,omitempty"`
	Website      *string        `json:"website,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Amenities    []string       `json:"amenities,omitempty"`
	RoomTypes    []RoomType     `json:"room_types,omitempty"`
	TotalRooms   *int           `json:"total_rooms,omitempty"`
	CheckInTime  *string        `json:"check_in_time,omitempty"`
	CheckOutTime *string        `json:"check_out_time,omitempty"`
	Policies     map[string]any `json:"policies,omitempty"`
	Latitude     *float64       `json:"latitude,omitempty"`
	Longitude    *float64       `json:"longitude,omitempty"`
	Photos       []string       `json:"photos,omitempty"`
}

// Scalar returns the value of a string-valued identity field.
func (f HotelFields) Scalar(field Field) *string {
	switch field {
	case FieldName:
		return f.Name
	case FieldAddress:
		return f.Address
	case FieldPhone:
		return f.Phone
	case FieldWebsite:
		return f.Website
	case FieldDescription:
		return f.Description
	case FieldCheckInTime:
		return f.CheckInTime
	case FieldCheckOutTime:
		return f.CheckOutTime
	default:
		return nil
	}
}

// IsEmpty reports whether no field carries a value.
func (f HotelFields) IsEmpty() bool {
	return len(f.Categories()) == 0
}

// Categories lists the human-readable data categories present, in a
// fixed order. Used for progress reporting only.
func (f HotelFields) Categories() []string {
	var out []string
	if present(f.Name) {
		out = append(out, "Name")
	}
	if present(f.Address) {
		out = append(out, "Address")
	}
	if present(f.Phone) {
		out = append(out, "Phone")
	}
	if present(f.Website) {
		out = append(out, "Website")
	}
	if present(f.Description) {
		out = append(out, "Description")
	}
	if len(f.Amenities) > 0 {
		out = append(out, "Amenities")
	}
	if len(f.RoomTypes) > 0 {
		out = append(out, "Room Types")
	}
	if f.TotalRooms != nil {
		out = append(out, "Total Rooms")
	}
	if present(f.CheckInTime) || present(f.CheckOutTime) {
		out = append(out, "Check-in/out")
	}
	if len(f.Policies) > 0 {
		out = append(out, "Policies")
	}
	if f.Latitude != nil && f.Longitude != nil {
		out = append(out, "Location")
	}
	if len(f.Photos) > 0 {
		out = append(out, "Photos")
	}
	return out
}

func present(s *string) bool {
	return s != nil && *s != ""
}

// SourceResult is one provider's answer to a query. It is never mutated
// after the adapter returns it.
type SourceResult struct {
	Source string      `json:"source"`
	Fields HotelFields `json:"fields"`
	// Confidence is the provider's self-reported certainty in [0,1], if any.
	Confidence *float64      `json:"confidence,omitempty"`
	Err        string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns,omitempty"`
}

// Failed reports whether the provider call errored.
func (r SourceResult) Failed() bool {
	return r.Err != ""
}

// Usable reports whether the result carries data the merge can use.
func (r SourceResult) Usable() bool {
	return !r.Failed() && !r.Fields.IsEmpty()
}

// ErrorResult builds an error-tagged result for source.
func ErrorResult(source, msg string) SourceResult {
	return SourceResult{Source: source, Err: msg}
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }
