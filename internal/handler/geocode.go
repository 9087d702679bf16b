package handler

import (
	"errors"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/geocode"
)

// maxSearchLimit caps ?limit= on geocode search.
const maxSearchLimit = 10

// CandidateResponse is one geocoding result.
type CandidateResponse struct {
	Address    string   `json:"address"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	PlaceTypes []string `json:"placeTypes"`
}

// SearchResponse is the body of GET /api/geocode/search.
type SearchResponse struct {
	Data []CandidateResponse `json:"data"`
}

// SearchGeocode handles GET /api/geocode/search?q=&limit=.
// Upstream failures degrade to an empty list; they are logged, never surfaced.
func (s *Server) SearchGeocode(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &q); err != nil {
		requestBody(w, err.Error())
		return
	}
	limit := geocode.DefaultLimit
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		requestBody(w, err.Error())
		return
	}
	if limit < 1 || limit > maxSearchLimit {
		requestBody(w, "limit must be between 1 and 10")
		return
	}

	f := geocode.DefaultFilters()
	f.Limit = limit
	results, err := s.geo.Forward(r.Context(), q, f)
	if err != nil {
		s.log.WarnContext(r.Context(), "forward geocoding failed", "query", q, "error", err)
		results = nil
	}

	data := make([]CandidateResponse, len(results))
	for i, c := range results {
		data[i] = candidateToResponse(c)
	}
	writeJSON(w, http.StatusOK, SearchResponse{Data: data})
}

// ReverseGeocode handles GET /api/geocode/reverse?lat=&lng=.
// A failed lookup answers with the coordinate string as the address.
func (s *Server) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	var at domain.Coordinates
	if err := runtime.BindQueryParameter("form", true, true, "lat", r.URL.Query(), &at.Latitude); err != nil {
		requestBody(w, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "lng", r.URL.Query(), &at.Longitude); err != nil {
		requestBody(w, err.Error())
		return
	}
	if !at.Valid() {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "coordinates out of range")
		return
	}

	c, err := s.geo.Reverse(r.Context(), at)
	if err != nil || c.Address == "" {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(r.Context(), "reverse geocoding failed", "lat", at.Latitude, "lng", at.Longitude, "error", err)
		}
		c = geocode.Candidate{Address: at.String(), Coordinates: at}
	}
	c.Coordinates = at
	writeJSON(w, http.StatusOK, candidateToResponse(c))
}

func candidateToResponse(c geocode.Candidate) CandidateResponse {
	types := c.PlaceTypes
	if types == nil {
		types = []string{}
	}
	return CandidateResponse{
		Address:    c.Address,
		Latitude:   c.Coordinates.Latitude,
		Longitude:  c.Coordinates.Longitude,
		PlaceTypes: types,
	}
}
