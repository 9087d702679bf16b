// Package mapview adapts an imperative map surface (markers, a route line,
// camera) behind a single Controller. All overlay mutation goes through the
// Controller so no caller reaches the surface handle directly.
package mapview

import (
	"errors"

	"github.com/pkordes/eldplan/internal/domain"
)

// ErrDuplicateLayer is returned by a Surface when an overlay id is added twice.
var ErrDuplicateLayer = errors.New("duplicate layer")

// ErrUnknownLayer is returned by a Surface when removing an id it does not hold.
var ErrUnknownLayer = errors.New("unknown layer")

// ErrNotMounted is returned when overlays are touched before Mount.
var ErrNotMounted = errors.New("map surface not mounted")

// MountConfig is what a map SDK needs to construct its instance.
type MountConfig struct {
	Container string             `json:"container"`
	Center    domain.Coordinates `json:"center"`
	Zoom      float64            `json:"zoom"`
	StyleID   string             `json:"styleId"`
	APIKey    string             `json:"-"`
}

// DefaultCenter is the geographic centre of the contiguous United States.
var DefaultCenter = domain.Coordinates{Latitude: 39.8283, Longitude: -98.5795}

// DefaultZoom shows the whole contiguous United States.
const DefaultZoom = 4

// Marker is a point overlay.
type Marker struct {
	Role        domain.Role        `json:"role"`
	Coordinates domain.Coordinates `json:"coordinates"`
	Label       string             `json:"label"`
}

// Bounds is a padded rectangle the viewport should fit.
type Bounds struct {
	SouthWest domain.Coordinates `json:"southWest"`
	NorthEast domain.Coordinates `json:"northEast"`
	Padding   int                `json:"padding"`
}

// Viewport is the camera position.
type Viewport struct {
	Center domain.Coordinates `json:"center"`
	Zoom   float64            `json:"zoom"`
}

// Surface is the contract of the external map SDK instance.
// Implementations reject duplicate adds and unknown removes the way real
// SDKs do; callers must remove before re-adding.
type Surface interface {
	Mount(cfg MountConfig) error
	AddMarker(id string, m Marker) error
	RemoveMarker(id string) error
	AddRoute(id string, path []domain.Coordinates) error
	RemoveRoute(id string) error
	FitBounds(b Bounds) error
	FlyTo(v Viewport) error
}
