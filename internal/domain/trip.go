// Package domain contains the core data types for the ELD trip planner.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxCycleHours is the 70-hour/8-day limit the cycle-hours figure is entered against.
const MaxCycleHours = 70.0

// TripRecord is the single persisted hand-off between the planning and review
// surfaces. It is built once at submission time and never mutated afterwards.
type TripRecord struct {
	CurrentLocation string     `json:"currentLocation"`
	PickupLocation  string     `json:"pickupLocation"`
	DropoffLocation string     `json:"dropoffLocation"`
	CycleHours      float64    `json:"cycleHours"`
	Locations       []Location `json:"locations"`
	PlannedAt       time.Time  `json:"plannedAt"`
}

// AddressFor returns the address text the user entered for role.
func (t TripRecord) AddressFor(r Role) string {
	switch r {
	case RoleCurrent:
		return t.CurrentLocation
	case RolePickup:
		return t.PickupLocation
	case RoleDropoff:
		return t.DropoffLocation
	}
	return ""
}

// Validate enforces the submission rules:
//   - all three address texts must be non-blank
//   - cycle hours must lie in [0, MaxCycleHours]
func (t TripRecord) Validate() error {
	var missing []string
	for _, r := range Roles {
		if strings.TrimSpace(t.AddressFor(r)) == "" {
			missing = append(missing, r.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: please fill in all location fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if t.CycleHours < 0 || t.CycleHours > MaxCycleHours {
		return fmt.Errorf("%w: cycle hours must be between 0 and %g", ErrValidation, MaxCycleHours)
	}
	return nil
}
