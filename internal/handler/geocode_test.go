package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/geocode"
	"github.com/pkordes/eldplan/internal/handler"
)

// mockGeocoder is a test double for geocode.Geocoder.
type mockGeocoder struct {
	forward func(ctx context.Context, query string, f geocode.Filters) ([]geocode.Candidate, error)
	reverse func(ctx context.Context, c domain.Coordinates) (geocode.Candidate, error)
}

func (m *mockGeocoder) Forward(ctx context.Context, query string, f geocode.Filters) ([]geocode.Candidate, error) {
	return m.forward(ctx, query, f)
}
func (m *mockGeocoder) Reverse(ctx context.Context, c domain.Coordinates) (geocode.Candidate, error) {
	return m.reverse(ctx, c)
}

var _ geocode.Geocoder = (*mockGeocoder)(nil)

func geoDeps(g geocode.Geocoder) handler.Deps { return handler.Deps{Geocoder: g} }

// ---- search ----------------------------------------------------------------

func TestSearchGeocode_PassesFilters(t *testing.T) {
	var gotQuery string
	var gotFilters geocode.Filters
	g := &mockGeocoder{forward: func(_ context.Context, q string, f geocode.Filters) ([]geocode.Candidate, error) {
		gotQuery, gotFilters = q, f
		return []geocode.Candidate{{
			Address:     "Memphis, TN, USA",
			Coordinates: domain.Coordinates{Latitude: 35.1495, Longitude: -90.049},
			PlaceTypes:  []string{"locality"},
		}}, nil
	}}

	rec := do(newHTTPHandler(geoDeps(g)), http.MethodGet, "/api/geocode/search?q=Memph&limit=3", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Memph", gotQuery)
	assert.Equal(t, 3, gotFilters.Limit)
	assert.Equal(t, "US", gotFilters.Country)

	var body handler.SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Memphis, TN, USA", body.Data[0].Address)
	assert.Equal(t, 35.1495, body.Data[0].Latitude)
}

func TestSearchGeocode_MissingQuery_BadRequest(t *testing.T) {
	rec := do(newHTTPHandler(geoDeps(&mockGeocoder{})), http.MethodGet, "/api/geocode/search", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchGeocode_LimitOutOfRange_BadRequest(t *testing.T) {
	rec := do(newHTTPHandler(geoDeps(&mockGeocoder{})), http.MethodGet, "/api/geocode/search?q=Dallas&limit=50", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchGeocode_UpstreamFailure_EmptyList(t *testing.T) {
	g := &mockGeocoder{forward: func(context.Context, string, geocode.Filters) ([]geocode.Candidate, error) {
		return nil, errors.New("upstream 503")
	}}

	rec := do(newHTTPHandler(geoDeps(g)), http.MethodGet, "/api/geocode/search?q=Dallas", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Empty(t, body.Data)
}

// ---- reverse ---------------------------------------------------------------

func TestReverseGeocode_Found(t *testing.T) {
	g := &mockGeocoder{reverse: func(context.Context, domain.Coordinates) (geocode.Candidate, error) {
		return geocode.Candidate{Address: "Dallas, TX, USA"}, nil
	}}

	rec := do(newHTTPHandler(geoDeps(g)), http.MethodGet, "/api/geocode/reverse?lat=32.7767&lng=-96.797", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.CandidateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Dallas, TX, USA", body.Address)
	assert.Equal(t, 32.7767, body.Latitude)
}

func TestReverseGeocode_FailureFallsBackToCoordinates(t *testing.T) {
	g := &mockGeocoder{reverse: func(context.Context, domain.Coordinates) (geocode.Candidate, error) {
		return geocode.Candidate{}, errors.New("timeout")
	}}

	rec := do(newHTTPHandler(geoDeps(g)), http.MethodGet, "/api/geocode/reverse?lat=32.7767&lng=-96.797", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.CandidateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "32.776700, -96.797000", body.Address)
}

func TestReverseGeocode_OutOfRange_Unprocessable(t *testing.T) {
	rec := do(newHTTPHandler(geoDeps(&mockGeocoder{})), http.MethodGet, "/api/geocode/reverse?lat=120&lng=0", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
