package domain

import (
	"fmt"
	"math"
	"strings"
)

// Role identifies which leg of the trip a Location belongs to.
type Role string

const (
	RoleCurrent Role = "current"
	RolePickup  Role = "pickup"
	RoleDropoff Role = "dropoff"
)

// Roles lists every role in form order.
var Roles = [...]Role{RoleCurrent, RolePickup, RoleDropoff}

// ParseRole converts user input into a Role.
// Returns ErrValidation for anything other than current, pickup or dropoff.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCurrent, RolePickup, RoleDropoff:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown location role %q", ErrValidation, s)
}

func (r Role) String() string { return string(r) }

// Label is the human-readable name shown next to inputs and markers.
func (r Role) Label() string {
	switch r {
	case RoleCurrent:
		return "Current location"
	case RolePickup:
		return "Pickup location"
	case RoleDropoff:
		return "Drop-off location"
	}
	return string(r)
}

func (r Role) index() int {
	switch r {
	case RoleCurrent:
		return 0
	case RolePickup:
		return 1
	case RoleDropoff:
		return 2
	}
	return -1
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether c lies within WGS84 bounds.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// String renders "lat, lng" with six decimals. It doubles as the fallback
// address when reverse geocoding fails.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}

// Location is a selected point on the map tagged with its trip role.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	Role      Role    `json:"role"`
}

// Coordinates returns the point of l.
func (l Location) Coordinates() Coordinates {
	return Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}

// NewLocation builds a Location for role at c.
func NewLocation(role Role, c Coordinates, address string) Location {
	return Location{Latitude: c.Latitude, Longitude: c.Longitude, Address: address, Role: role}
}

// LocationSet holds at most one Location per role.
// The zero value is an empty set ready to use.
type LocationSet struct {
	slots [len(Roles)]*Location
	seq   [len(Roles)]uint64
	next  uint64
}

// Put stores loc in its role's slot and reports whether an earlier location
// for that role was replaced. A replaced role counts as newly inserted for
// ordering purposes.
func (s *LocationSet) Put(loc Location) (replaced bool, err error) {
	i := loc.Role.index()
	if i < 0 {
		return false, fmt.Errorf("%w: unknown location role %q", ErrValidation, loc.Role)
	}
	replaced = s.slots[i] != nil
	l := loc
	s.next++
	s.slots[i] = &l
	s.seq[i] = s.next
	return replaced, nil
}

// Get returns the location for role, if any.
func (s *LocationSet) Get(r Role) (Location, bool) {
	i := r.index()
	if i < 0 || s.slots[i] == nil {
		return Location{}, false
	}
	return *s.slots[i], true
}

// Remove empties the slot for role.
func (s *LocationSet) Remove(r Role) {
	if i := r.index(); i >= 0 {
		s.slots[i] = nil
		s.seq[i] = 0
	}
}

// Clear empties every slot.
func (s *LocationSet) Clear() {
	*s = LocationSet{}
}

// Len returns the number of filled slots.
func (s *LocationSet) Len() int {
	n := 0
	for _, l := range s.slots {
		if l != nil {
			n++
		}
	}
	return n
}

// Ordered returns the filled slots in insertion order.
// Always returns a non-nil slice.
func (s *LocationSet) Ordered() []Location {
	out := make([]Location, 0, len(s.slots))
	var done [len(Roles)]bool
	for range s.slots {
		best := -1
		for i, l := range s.slots {
			if l == nil || done[i] {
				continue
			}
			if best < 0 || s.seq[i] < s.seq[best] {
				best = i
			}
		}
		if best < 0 {
			break
		}
		done[best] = true
		out = append(out, *s.slots[best])
	}
	return out
}
