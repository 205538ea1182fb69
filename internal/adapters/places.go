package adapters

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/gimiv/stayfull-research/internal/model"
	"github.com/gimiv/stayfull-research/internal/research"
	"github.com/gimiv/stayfull-research/internal/resilience"
	"github.com/gimiv/stayfull-research/pkg/google"
)

// ErrNoPlace is returned when the directory has no lodging match.
var ErrNoPlace = eris.New("no matching lodging found")

// Places reads the hotel's business-directory listing. It is also the
// geo source and the timezone lookup.
type Places struct {
	client     google.Client
	guard      *resilience.Guard
	maxPhotos  int
	photoWidth int
}

// NewPlaces creates the directory adapter.
func NewPlaces(client google.Client, guard *resilience.Guard, maxPhotos, photoWidth int) *Places {
	if photoWidth <= 0 {
		photoWidth = 1600
	}
	return &Places{
		client:     client,
		guard:      guard,
		maxPhotos:  maxPhotos,
		photoWidth: photoWidth,
	}
}

// ID returns the provider identifier.
func (p *Places) ID() string { return research.SourcePlaces }

// Fetch looks the hotel up and maps the first lodging result.
func (p *Places) Fetch(ctx context.Context, q model.Query) (model.SourceResult, error) {
	resp, err := resilience.Call(ctx, p.guard, func(ctx context.Context) (*google.TextSearchResponse, error) {
		return p.client.TextSearch(ctx, google.TextSearchRequest{
			TextQuery:      q.Name + " " + q.Location(),
			IncludedType:   "lodging",
			MaxResultCount: 5,
			LanguageCode:   "en",
		})
	})
	if err != nil {
		return model.SourceResult{}, eris.Wrap(err, "google_places: text search")
	}
	if len(resp.Places) == 0 {
		return model.SourceResult{}, ErrNoPlace
	}

	place := resp.Places[0]
	f := model.HotelFields{
		Name:        model.StringPtr(strings.TrimSpace(place.DisplayName.Text)),
		Address:     model.StringPtr(place.FormattedAddress),
		Phone:       model.StringPtr(place.Phone()),
		Website:     model.StringPtr(place.WebsiteURI),
		Description: model.StringPtr(place.EditorialSummary.Text),
	}
	if place.Location != nil {
		f.Latitude = model.FloatPtr(place.Location.Latitude)
		f.Longitude = model.FloatPtr(place.Location.Longitude)
	}
	for _, photo := range place.Photos {
		if p.maxPhotos > 0 && len(f.Photos) >= p.maxPhotos {
			break
		}
		f.Photos = append(f.Photos, p.client.PhotoURL(photo.Name, p.photoWidth))
	}
	return model.SourceResult{Fields: f}, nil
}

// TimezoneAt resolves the IANA timezone at a coordinate.
func (p *Places) TimezoneAt(ctx context.Context, lat, lng float64) (string, error) {
	resp, err := resilience.Call(ctx, p.guard, func(ctx context.Context) (*google.TimeZoneResponse, error) {
		return p.client.TimeZone(ctx, lat, lng)
	})
	if err != nil {
		return "", eris.Wrap(err, "google_places: timezone")
	}
	return resp.TimeZoneID, nil
}
