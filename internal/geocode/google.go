package geocode

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"github.com/pkordes/eldplan/internal/domain"
)

// mapsClient is the subset of *maps.Client used here. Tests substitute a fake.
type mapsClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// Google is a Geocoder backed by the Google Maps Geocoding API.
type Google struct {
	client mapsClient
}

// NewGoogle constructs a Google geocoder for apiKey.
// The key must come from configuration; an empty key is rejected.
func NewGoogle(apiKey string) (*Google, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("geocode.NewGoogle: %w: map API key is required", domain.ErrValidation)
	}
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("geocode.NewGoogle: %w", err)
	}
	return &Google{client: c}, nil
}

// Forward geocodes query, restricted to f.Country when set.
func (g *Google) Forward(ctx context.Context, query string, f Filters) ([]Candidate, error) {
	req := &maps.GeocodingRequest{Address: query}
	if f.Country != "" {
		req.Components = map[maps.Component]string{maps.ComponentCountry: f.Country}
	}

	results, err := g.client.Geocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("geocode.Google.Forward: %w", err)
	}

	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, toCandidate(r))
	}
	return f.apply(out), nil
}

// Reverse returns the first result Google ranks for c.
func (g *Google) Reverse(ctx context.Context, c domain.Coordinates) (Candidate, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: c.Latitude, Lng: c.Longitude},
	})
	if err != nil {
		return Candidate{}, fmt.Errorf("geocode.Google.Reverse: %w", err)
	}
	if len(results) == 0 {
		return Candidate{}, fmt.Errorf("geocode.Google.Reverse: %w", domain.ErrNotFound)
	}
	return toCandidate(results[0]), nil
}

func toCandidate(r maps.GeocodingResult) Candidate {
	return Candidate{
		Address: r.FormattedAddress,
		Coordinates: domain.Coordinates{
			Latitude:  r.Geometry.Location.Lat,
			Longitude: r.Geometry.Location.Lng,
		},
		PlaceTypes: r.Types,
	}
}
