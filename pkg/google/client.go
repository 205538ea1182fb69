// Package google wraps the Google Places (v1) and Time Zone APIs used to
// look up business-directory facts about a hotel.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultPlacesURL = "https://places.googleapis.com/v1"
	defaultMapsURL   = "https://maps.googleapis.com/maps/api"
)

// placeFields is the field mask sent with every text search.
var placeFields = []string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.internationalPhoneNumber",
	"places.nationalPhoneNumber",
	"places.websiteUri",
	"places.location",
	"places.photos",
	"places.rating",
	"places.userRatingCount",
	"places.editorialSummary",
	"places.types",
}

// Client performs Google Places and Time Zone API operations.
type Client interface {
	TextSearch(ctx context.Context, req TextSearchRequest) (*TextSearchResponse, error)
	TimeZone(ctx context.Context, lat, lng float64) (*TimeZoneResponse, error)
	PhotoURL(photoName string, maxWidthPx int) string
}

// TextSearchRequest is the body for POST /places:searchText.
type TextSearchRequest struct {
	TextQuery      string `json:"textQuery"`
	IncludedType   string `json:"includedType,omitempty"`
	MaxResultCount int    `json:"maxResultCount,omitempty"`
	LanguageCode   string `json:"languageCode,omitempty"`
}

// TextSearchResponse is the response from Places Text Search.
type TextSearchResponse struct {
	Places []Place `json:"places"`
}

// Place is a place returned by the API, limited to placeFields.
type Place struct {
	ID                       string        `json:"id"`
	DisplayName              LocalizedText `json:"displayName"`
	FormattedAddress         string        `json:"formattedAddress"`
	InternationalPhoneNumber string        `json:"internationalPhoneNumber"`
	NationalPhoneNumber      string        `json:"nationalPhoneNumber"`
	WebsiteURI               string        `json:"websiteUri"`
	Location                 *LatLng       `json:"location"`
	Photos                   []Photo       `json:"photos"`
	Rating                   float64       `json:"rating"`
	UserRatingCount          int           `json:"userRatingCount"`
	EditorialSummary         LocalizedText `json:"editorialSummary"`
	Types                    []string      `json:"types"`
}

// Phone returns the international number, falling back to the national one.
func (p Place) Phone() string {
	if p.InternationalPhoneNumber != "" {
		return p.InternationalPhoneNumber
	}
	return p.NationalPhoneNumber
}

// LocalizedText is a text value with its language.
type LocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Photo references a place photo resource.
type Photo struct {
	Name     string `json:"name"`
	WidthPx  int    `json:"widthPx"`
	HeightPx int    `json:"heightPx"`
}

// TimeZoneResponse is the response from the Time Zone API.
type TimeZoneResponse struct {
	Status       string `json:"status"`
	TimeZoneID   string `json:"timeZoneId"`
	TimeZoneName string `json:"timeZoneName"`
	RawOffset    int    `json:"rawOffset"`
	DstOffset    int    `json:"dstOffset"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("google: unexpected status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the Places API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.placesURL = url
	}
}

// WithMapsBaseURL overrides the Maps web services base URL (Time Zone API).
func WithMapsBaseURL(url string) Option {
	return func(c *httpClient) {
		c.mapsURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithClock overrides the time source used for Time Zone timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *httpClient) {
		c.now = now
	}
}

type httpClient struct {
	apiKey    string
	placesURL string
	mapsURL   string
	http      *http.Client
	now       func() time.Time
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:    apiKey,
		placesURL: defaultPlacesURL,
		mapsURL:   defaultMapsURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) TextSearch(ctx context.Context, sr TextSearchRequest) (*TextSearchResponse, error) {
	body, err := json.Marshal(sr)
	if err != nil {
		return nil, eris.Wrap(err, "google: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.placesURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", strings.Join(placeFields, ","))

	var result TextSearchResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *httpClient) TimeZone(ctx context.Context, lat, lng float64) (*TimeZoneResponse, error) {
	q := url.Values{}
	q.Set("location", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("timestamp", strconv.FormatInt(c.now().Unix(), 10))
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.mapsURL+"/timezone/json?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: create timezone request")
	}

	var result TimeZoneResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if result.Status != "OK" {
		return nil, eris.Errorf("google: timezone status %s: %s", result.Status, result.ErrorMessage)
	}
	return &result, nil
}

// PhotoURL builds a media URL for a photo resource name.
func (c *httpClient) PhotoURL(photoName string, maxWidthPx int) string {
	q := url.Values{}
	q.Set("maxWidthPx", strconv.Itoa(maxWidthPx))
	q.Set("key", c.apiKey)
	return fmt.Sprintf("%s/%s/media?%s", c.placesURL, photoName, q.Encode())
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "google: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "google: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "google: unmarshal response")
	}
	return nil
}
