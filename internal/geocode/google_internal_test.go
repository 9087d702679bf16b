package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"github.com/pkordes/eldplan/internal/domain"
)

// fakeMapsClient is a test double for mapsClient.
type fakeMapsClient struct {
	geocode func(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	reverse func(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

func (f *fakeMapsClient) Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	return f.geocode(ctx, r)
}
func (f *fakeMapsClient) ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	return f.reverse(ctx, r)
}

func result(addr string, lat, lng float64, types ...string) maps.GeocodingResult {
	var r maps.GeocodingResult
	r.FormattedAddress = addr
	r.Geometry.Location = maps.LatLng{Lat: lat, Lng: lng}
	r.Types = types
	return r
}

func TestGoogle_ForwardSendsCountryAndFilters(t *testing.T) {
	var got *maps.GeocodingRequest
	g := &Google{client: &fakeMapsClient{
		geocode: func(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
			got = r
			return []maps.GeocodingResult{
				result("Chicago, IL, USA", 41.87, -87.62, "locality", "political"),
				result("Illinois, USA", 40.6, -89.4, "administrative_area_level_1"),
				result("Chicago Ave, Evanston, IL", 42.04, -87.68, "route"),
			}, nil
		},
	}}

	cands, err := g.Forward(context.Background(), "chicago", Filters{Country: "US", Types: []string{"locality", "route"}, Limit: 5})

	require.NoError(t, err)
	assert.Equal(t, "chicago", got.Address)
	assert.Equal(t, "US", got.Components[maps.ComponentCountry])
	require.Len(t, cands, 2, "administrative areas are filtered out")
	assert.Equal(t, "Chicago, IL, USA", cands[0].Address)
	assert.Equal(t, domain.Coordinates{Latitude: 41.87, Longitude: -87.62}, cands[0].Coordinates)
}

func TestGoogle_ForwardWrapsErrors(t *testing.T) {
	g := &Google{client: &fakeMapsClient{
		geocode: func(context.Context, *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
			return nil, errors.New("OVER_QUERY_LIMIT")
		},
	}}

	_, err := g.Forward(context.Background(), "x", Filters{})

	assert.ErrorContains(t, err, "geocode.Google.Forward")
}

func TestGoogle_Reverse(t *testing.T) {
	g := &Google{client: &fakeMapsClient{
		reverse: func(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
			require.NotNil(t, r.LatLng)
			if r.LatLng.Lat == 0 {
				return nil, nil
			}
			return []maps.GeocodingResult{result("1 Main St, Gary, IN", r.LatLng.Lat, r.LatLng.Lng, "street_address")}, nil
		},
	}}

	c, err := g.Reverse(context.Background(), domain.Coordinates{Latitude: 41.6, Longitude: -87.3})
	require.NoError(t, err)
	assert.Equal(t, "1 Main St, Gary, IN", c.Address)

	_, err = g.Reverse(context.Background(), domain.Coordinates{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewGoogle_RequiresKey(t *testing.T) {
	_, err := NewGoogle(" ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFilters_ApplyDefaultLimit(t *testing.T) {
	in := make([]Candidate, 8)
	assert.Len(t, Filters{}.apply(in), DefaultLimit)
}
