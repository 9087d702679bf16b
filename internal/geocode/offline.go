package geocode

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pkordes/eldplan/internal/domain"
)

// Place is one gazetteer entry of the offline geocoder.
type Place struct {
	Name        string
	Country     string
	Types       []string
	Coordinates domain.Coordinates
}

// reverseRadiusKm bounds how far a click may be from a gazetteer entry and
// still resolve to it.
const reverseRadiusKm = 50.0

// DefaultGazetteer is a small set of US freight hubs used when no map API
// key is configured.
var DefaultGazetteer = []Place{
	{"Chicago, IL, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 41.878113, Longitude: -87.629799}},
	{"Gary, IN, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 41.593370, Longitude: -87.346427}},
	{"Indianapolis, IN, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 39.768403, Longitude: -86.158068}},
	{"Columbus, OH, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 39.961176, Longitude: -82.998794}},
	{"Dallas, TX, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 32.776664, Longitude: -96.796988}},
	{"Houston, TX, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 29.760427, Longitude: -95.369803}},
	{"Memphis, TN, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 35.149534, Longitude: -90.048980}},
	{"Atlanta, GA, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 33.748995, Longitude: -84.387982}},
	{"Kansas City, MO, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 39.099727, Longitude: -94.578567}},
	{"Denver, CO, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 39.739236, Longitude: -104.990251}},
	{"Los Angeles, CA, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 34.052234, Longitude: -118.243685}},
	{"Laredo, TX, USA", "US", []string{"locality"}, domain.Coordinates{Latitude: 27.503561, Longitude: -99.507552}},
	{"Port of Savannah, GA, USA", "US", []string{"point_of_interest", "establishment"}, domain.Coordinates{Latitude: 32.128090, Longitude: -81.140460}},
	{"Toronto, ON, Canada", "CA", []string{"locality"}, domain.Coordinates{Latitude: 43.653226, Longitude: -79.383184}},
}

// Offline is a Geocoder over a fixed in-memory gazetteer. It performs no
// network calls.
type Offline struct {
	places []Place
}

// NewOffline returns an Offline geocoder over places, or DefaultGazetteer
// when places is empty.
func NewOffline(places []Place) *Offline {
	if len(places) == 0 {
		places = DefaultGazetteer
	}
	return &Offline{places: places}
}

// Forward matches query case-insensitively against place names. Prefix
// matches rank ahead of substring matches.
func (o *Offline) Forward(ctx context.Context, query string, f Filters) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("geocode.Offline.Forward: %w", err)
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Candidate{}, nil
	}

	type hit struct {
		p    Place
		rank int
	}
	var hits []hit
	for _, p := range o.places {
		if f.Country != "" && !strings.EqualFold(p.Country, f.Country) {
			continue
		}
		name := strings.ToLower(p.Name)
		switch {
		case strings.HasPrefix(name, q):
			hits = append(hits, hit{p, 0})
		case strings.Contains(name, q):
			hits = append(hits, hit{p, 1})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })

	out := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, Candidate{Address: h.p.Name, Coordinates: h.p.Coordinates, PlaceTypes: h.p.Types})
	}
	return f.apply(out), nil
}

// Reverse returns the nearest gazetteer entry within reverseRadiusKm.
func (o *Offline) Reverse(ctx context.Context, c domain.Coordinates) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, fmt.Errorf("geocode.Offline.Reverse: %w", err)
	}
	best, bestKm := -1, math.Inf(1)
	for i, p := range o.places {
		if d := haversineKm(c, p.Coordinates); d < bestKm {
			best, bestKm = i, d
		}
	}
	if best < 0 || bestKm > reverseRadiusKm {
		return Candidate{}, fmt.Errorf("geocode.Offline.Reverse: %w", domain.ErrNotFound)
	}
	p := o.places[best]
	return Candidate{Address: p.Name, Coordinates: p.Coordinates, PlaceTypes: p.Types}, nil
}

// haversineKm is the great-circle distance between a and b.
func haversineKm(a, b domain.Coordinates) float64 {
	const earthRadiusKm = 6371.0
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(b.Latitude - a.Latitude)
	dLng := rad(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Latitude))*math.Cos(rad(b.Latitude))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
