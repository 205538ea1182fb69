package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// DefaultCountry is assumed when a query does not name one.
const DefaultCountry = "US"

// ErrInvalidQuery is returned when a query lacks a hotel name or city.
var ErrInvalidQuery = eris.New("invalid research query")

// Query identifies the hotel to research. It is a value type: callers
// derive variants with the With* helpers instead of mutating fields.
type Query struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	// Website is a site the caller already knows. When set, website
	// extraction starts immediately instead of waiting for discovery.
	Website string `json:"website,omitempty"`
}

// NewQuery builds a normalized query.
func NewQuery(name, city, state string) Query {
	return Query{
		Name:    strings.TrimSpace(name),
		City:    strings.TrimSpace(city),
		State:   strings.ToUpper(strings.TrimSpace(state)),
		Country: DefaultCountry,
	}
}

// Validate rejects queries missing the required name or city.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return eris.Wrap(ErrInvalidQuery, "name is required")
	}
	if strings.TrimSpace(q.City) == "" {
		return eris.Wrap(ErrInvalidQuery, "city is required")
	}
	return nil
}

// WithWebsite returns a copy of q with Website set.
func (q Query) WithWebsite(url string) Query {
	q.Website = url
	return q
}

// CountryCode returns the query country, defaulting to the US.
func (q Query) CountryCode() string {
	if c := strings.TrimSpace(q.Country); c != "" {
		return strings.ToUpper(c)
	}
	return DefaultCountry
}

// Location renders "City, ST" (or just the city when no state is known).
func (q Query) Location() string {
	if q.State != "" {
		return q.City + ", " + q.State
	}
	return q.City
}
