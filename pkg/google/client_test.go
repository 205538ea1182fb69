package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.websiteUri")
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.location")

		var body TextSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Seaside Inn Miami, FL", body.TextQuery)
		assert.Equal(t, "lodging", body.IncludedType)

		_, _ = w.Write([]byte(`{"places": [{
			"id": "ChIJ123",
			"displayName": {"text": "Seaside Inn", "languageCode": "en"},
			"formattedAddress": "1 Ocean Dr, Miami, FL 33139, USA",
			"nationalPhoneNumber": "(305) 555-0100",
			"websiteUri": "https://seaside.example/",
			"location": {"latitude": 25.79, "longitude": -80.13},
			"photos": [{"name": "places/ChIJ123/photos/abc", "widthPx": 4000, "heightPx": 3000}],
			"rating": 4.4,
			"userRatingCount": 812
		}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), TextSearchRequest{
		TextQuery:    "Seaside Inn Miami, FL",
		IncludedType: "lodging",
	})

	require.NoError(t, err)
	require.Len(t, resp.Places, 1)
	p := resp.Places[0]
	assert.Equal(t, "Seaside Inn", p.DisplayName.Text)
	assert.Equal(t, "(305) 555-0100", p.Phone())
	assert.Equal(t, "https://seaside.example/", p.WebsiteURI)
	require.NotNil(t, p.Location)
	assert.InDelta(t, 25.79, p.Location.Latitude, 1e-9)
	require.Len(t, p.Photos, 1)
	assert.Equal(t, 812, p.UserRatingCount)
}

func TestTextSearch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"forbidden", http.StatusForbidden, `{"error": {"message": "API key invalid"}}`, "unexpected status 403"},
		{"bad_json", http.StatusOK, `{"places": [`, "unmarshal response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient("k", WithBaseURL(srv.URL)).TextSearch(context.Background(), TextSearchRequest{TextQuery: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTimeZone(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/timezone/json", r.URL.Path)
		assert.Equal(t, "25.79,-80.13", r.URL.Query().Get("location"))
		assert.Equal(t, "1772366400", r.URL.Query().Get("timestamp"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"status": "OK", "timeZoneId": "America/New_York", "timeZoneName": "Eastern Standard Time", "rawOffset": -18000}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithMapsBaseURL(srv.URL), WithClock(func() time.Time { return fixed }))
	tz, err := client.TimeZone(context.Background(), 25.79, -80.13)
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", tz.TimeZoneID)
	assert.Equal(t, -18000, tz.RawOffset)
}

func TestTimeZone_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS"}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", WithMapsBaseURL(srv.URL)).TimeZone(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZERO_RESULTS")
}

func TestTimeZone_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient("k", WithMapsBaseURL(srv.URL)).TimeZone(context.Background(), 1, 2)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.HTTPStatus())
}

func TestPhotoURL(t *testing.T) {
	c := NewClient("secret", WithBaseURL("https://places.test/v1"))
	assert.Equal(t,
		"https://places.test/v1/places/abc/photos/xyz/media?key=secret&maxWidthPx=800",
		c.PhotoURL("places/abc/photos/xyz", 800),
	)
}
