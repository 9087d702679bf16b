// Package geocode is the geocoding collaborator and the location-input model
// built on top of it. Backends implement Geocoder; Autocompleter turns raw
// keystrokes into debounced, last-write-wins suggestion lists.
package geocode

import (
	"context"

	"github.com/pkordes/eldplan/internal/domain"
)

// Candidate is one ranked forward-geocoding result.
type Candidate struct {
	Address     string             `json:"address"`
	Coordinates domain.Coordinates `json:"coordinates"`
	PlaceTypes  []string           `json:"placeTypes,omitempty"`
}

// Filters narrows a forward search.
// Zero values mean "no constraint" except Limit, where 0 selects DefaultLimit.
type Filters struct {
	Country string
	Types   []string
	Limit   int
}

// DefaultLimit caps suggestion lists.
const DefaultLimit = 5

// DefaultFilters are the constraints applied by the planning page: US
// addresses and places only, top five results.
func DefaultFilters() Filters {
	return Filters{
		Country: "US",
		Types: []string{
			"street_address", "route", "locality", "postal_code",
			"premise", "point_of_interest", "establishment",
		},
		Limit: DefaultLimit,
	}
}

// Geocoder resolves text to candidates and coordinates to an address.
type Geocoder interface {
	// Forward returns ranked candidates for query, at most f.Limit of them.
	Forward(ctx context.Context, query string, f Filters) ([]Candidate, error)

	// Reverse returns the best-matching address for c.
	// Returns domain.ErrNotFound when nothing matches.
	Reverse(ctx context.Context, c domain.Coordinates) (Candidate, error)
}

// apply enforces type and limit constraints on an already ranked list.
func (f Filters) apply(in []Candidate) []Candidate {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := make([]Candidate, 0, min(limit, len(in)))
	for _, c := range in {
		if len(out) == limit {
			break
		}
		if len(f.Types) > 0 && !anyType(c.PlaceTypes, f.Types) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func anyType(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
