package adapters

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/gimiv/stayfull-research/internal/model"
)

// hotelJSON is the shape every research prompt asks for. The flex types
// accept the variations models actually produce.
type hotelJSON struct {
	Name         flexString   `json:"name"`
	Address      flexString   `json:"address"`
	Phone        flexString   `json:"phone"`
	Website      flexString   `json:"website"`
	Description  flexString   `json:"description"`
	Amenities    flexStrings  `json:"amenities"`
	RoomTypes    flexRooms    `json:"room_types"`
	TotalRooms   flexInt      `json:"total_rooms"`
	CheckInTime  flexString   `json:"check_in_time"`
	CheckOutTime flexString   `json:"check_out_time"`
	Policies     flexPolicies `json:"policies"`
	Latitude     flexFloat    `json:"latitude"`
	Longitude    flexFloat    `json:"longitude"`
	Photos       flexStrings  `json:"photos"`
	Confidence   flexFloat    `json:"confidence"`
}

type roomJSON struct {
	Name        flexString `json:"name"`
	Beds        flexString `json:"beds"`
	Capacity    flexInt    `json:"capacity"`
	Description flexString `json:"description"`
}

// ParseHotel decodes a model's JSON answer into hotel fields and the
// self-reported confidence, if any.
func ParseHotel(text string) (model.HotelFields, *float64, error) {
	raw := cleanJSON(text)
	if raw == "" {
		return model.HotelFields{}, nil, eris.New("adapters: empty response")
	}

	var h hotelJSON
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return model.HotelFields{}, nil, eris.Wrap(err, "adapters: decode hotel json")
	}

	f := model.HotelFields{
		Name:         h.Name.v,
		Address:      h.Address.v,
		Phone:        h.Phone.v,
		Website:      normalizeURL(h.Website.v),
		Description:  h.Description.v,
		Amenities:    h.Amenities.v,
		TotalRooms:   h.TotalRooms.v,
		CheckInTime:  normalizeClock(h.CheckInTime.v),
		CheckOutTime: normalizeClock(h.CheckOutTime.v),
		Latitude:     h.Latitude.v,
		Longitude:    h.Longitude.v,
		Photos:       h.Photos.v,
		Policies:     h.Policies.v,
		RoomTypes:    h.RoomTypes.v,
	}
	return f, normalizeConfidence(h.Confidence.v), nil
}

// cleanJSON extracts a JSON object from text that may carry markdown code
// fences or prose around it.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

// placeholders models emit instead of null.
var placeholders = map[string]bool{
	"":              true,
	"null":          true,
	"none":          true,
	"n/a":           true,
	"na":            true,
	"unknown":       true,
	"not available": true,
}

type flexString struct{ v *string }

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Numbers and booleans are rendered as text.
		s = string(b)
	}
	s = strings.TrimSpace(s)
	if placeholders[strings.ToLower(s)] {
		return nil
	}
	f.v = &s
	return nil
}

type flexStrings struct{ v []string }

func (f *flexStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(b, &list); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); !placeholders[strings.ToLower(part)] {
				f.v = append(f.v, part)
			}
		}
		return nil
	}

	for _, item := range list {
		var s flexString
		if err := s.UnmarshalJSON(item); err == nil && s.v != nil && !strings.HasPrefix(*s.v, "{") {
			f.v = append(f.v, *s.v)
		}
	}
	return nil
}

type flexRooms struct{ v []model.RoomType }

func (f *flexRooms) UnmarshalJSON(b []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(b, &list); err != nil {
		return nil
	}
	for _, item := range list {
		var r roomJSON
		if err := json.Unmarshal(item, &r); err != nil {
			// A bare string is just the room name.
			if err := r.Name.UnmarshalJSON(item); err != nil {
				continue
			}
		}
		if r.Name.v == nil {
			continue
		}
		rt := model.RoomType{Name: *r.Name.v}
		if r.Beds.v != nil {
			rt.Beds = *r.Beds.v
		}
		if r.Capacity.v != nil {
			rt.Capacity = *r.Capacity.v
		}
		if r.Description.v != nil {
			rt.Description = *r.Description.v
		}
		f.v = append(f.v, rt)
	}
	return nil
}

type flexPolicies struct{ v map[string]any }

func (f *flexPolicies) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err == nil {
		for k, v := range m {
			if v == nil {
				delete(m, k)
			}
		}
		if len(m) > 0 {
			f.v = m
		}
		return nil
	}
	var s flexString
	if err := s.UnmarshalJSON(b); err == nil && s.v != nil {
		f.v = map[string]any{"summary": *s.v}
	}
	return nil
}

var leadingInt = regexp.MustCompile(`-?\d[\d,]*`)

type flexInt struct{ v *int }

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		i := int(math.Round(n))
		f.v = &i
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	m := leadingInt.FindString(s)
	if m == "" {
		return nil
	}
	i, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return nil
	}
	f.v = &i
	return nil
}

type flexFloat struct{ v *float64 }

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		f.v = &n
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if strings.HasSuffix(strings.TrimSpace(string(b)), `%"`) {
			n /= 100
		}
		f.v = &n
	}
	return nil
}

// normalizeConfidence maps percentages onto [0,1] and discards nonsense.
func normalizeConfidence(c *float64) *float64 {
	if c == nil || math.IsNaN(*c) || *c < 0 {
		return nil
	}
	v := *c
	if v > 1 {
		if v > 100 {
			return nil
		}
		v /= 100
	}
	return &v
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04PM",
	"3:04 PM",
	"3PM",
	"3 PM",
	"15.04",
	"1504",
}

// normalizeClock renders recognizable times as 24-hour "HH:MM" so that
// "3:00 PM" and "15:00" agree during consensus. Unrecognized text is kept.
func normalizeClock(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.ToUpper(strings.TrimSpace(*s))
	t = strings.NewReplacer("A.M.", "AM", "P.M.", "PM", "NOON", "12:00 PM").Replace(t)
	for _, layout := range clockLayouts {
		if parsed, err := time.Parse(layout, t); err == nil {
			out := parsed.Format("15:04")
			return &out
		}
	}
	return s
}

// normalizeURL trims whitespace and adds a scheme to bare domains.
func normalizeURL(s *string) *string {
	if s == nil {
		return nil
	}
	u := strings.TrimSpace(*s)
	if !strings.Contains(u, "://") && strings.Contains(u, ".") && !strings.Contains(u, " ") {
		u = "https://" + u
	}
	return &u
}
