package mapview

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/geocode"
)

// RouteID is the single route overlay id.
const RouteID = "trip-route"

// DefaultPadding is the pixel padding used when fitting markers.
const DefaultPadding = 50

// singleMarkerZoom is used instead of a fit when only one marker exists.
const singleMarkerZoom = 10

// Controller owns a Surface and is the only thing that mutates it.
type Controller struct {
	surface Surface
	geo     geocode.Geocoder
	log     *slog.Logger
	padding int

	mu      sync.Mutex
	mounted bool
	markers map[domain.Role]domain.Coordinates
	route   bool
	camera  Viewport
}

// NewController wraps s. geo resolves clicks into addresses and may be nil,
// in which case clicks always fall back to the coordinate string.
func NewController(s Surface, geo geocode.Geocoder, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		surface: s,
		geo:     geo,
		log:     log,
		padding: DefaultPadding,
		markers: make(map[domain.Role]domain.Coordinates),
	}
}

// Init mounts the surface once. Later calls are no-ops.
func (c *Controller) Init(cfg MountConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted {
		return nil
	}
	if cfg.Zoom == 0 && cfg.Center == (domain.Coordinates{}) {
		cfg.Center = DefaultCenter
		cfg.Zoom = DefaultZoom
	}
	if err := c.surface.Mount(cfg); err != nil {
		return fmt.Errorf("mapview.Controller.Init: %w", err)
	}
	c.mounted = true
	c.camera = Viewport{Center: cfg.Center, Zoom: cfg.Zoom}
	return nil
}

// SetMarker adds or replaces the marker for loc.Role.
func (c *Controller) SetMarker(loc domain.Location) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setMarkerLocked(loc)
}

// ClearMarkers removes every marker and the route.
func (c *Controller) ClearMarkers() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for role := range c.markers {
		if err := c.removeMarkerLocked(role); err != nil {
			return err
		}
	}
	return c.drawRouteLocked(nil)
}

// DrawRoute replaces the route line with path. Fewer than two points only
// removes the existing line.
func (c *Controller) DrawRoute(path []domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawRouteLocked(path)
}

// FitToMarkers refits the viewport around every marker. With no markers the
// bounds are dropped and the camera returns to the default view.
func (c *Controller) FitToMarkers() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fitLocked()
}

// Sync makes the surface show exactly locs: stale markers are removed, every
// marker is re-set, the route is redrawn through locs in order, and the
// viewport is refitted. It is always a full recompute.
func (c *Controller) Sync(locs []domain.Location) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	keep := make(map[domain.Role]bool, len(locs))
	for _, l := range locs {
		keep[l.Role] = true
	}
	for role := range c.markers {
		if !keep[role] {
			if err := c.removeMarkerLocked(role); err != nil {
				return err
			}
		}
	}

	path := make([]domain.Coordinates, 0, len(locs))
	for _, l := range locs {
		if err := c.setMarkerLocked(l); err != nil {
			return err
		}
		path = append(path, l.Coordinates())
	}
	if err := c.drawRouteLocked(path); err != nil {
		return err
	}
	return c.fitLocked()
}

// Click resolves a map click into a Location for role. When reverse
// geocoding fails the address is the coordinate string; the failure is only
// logged. Click does not touch the surface; the owner decides what to do
// with the location.
func (c *Controller) Click(ctx context.Context, role domain.Role, at domain.Coordinates) (domain.Location, error) {
	if !at.Valid() {
		return domain.Location{}, fmt.Errorf("mapview.Controller.Click: %w: coordinates out of range", domain.ErrValidation)
	}
	address := at.String()
	if c.geo != nil {
		cand, err := c.geo.Reverse(ctx, at)
		switch {
		case err != nil:
			c.log.WarnContext(ctx, "reverse geocoding failed", "lat", at.Latitude, "lng", at.Longitude, "error", err)
		case cand.Address != "":
			address = cand.Address
		}
	}
	return domain.NewLocation(role, at, address), nil
}

// MoveCamera records camera telemetry reported by the surface.
func (c *Controller) MoveCamera(v Viewport) {
	c.mu.Lock()
	c.camera = v
	c.mu.Unlock()
}

// Camera returns the last reported camera position.
func (c *Controller) Camera() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.camera
}

func markerID(r domain.Role) string { return "marker-" + string(r) }

func (c *Controller) setMarkerLocked(loc domain.Location) error {
	if !c.mounted {
		return fmt.Errorf("mapview.Controller.SetMarker: %w", ErrNotMounted)
	}
	if _, ok := c.markers[loc.Role]; ok {
		if err := c.removeMarkerLocked(loc.Role); err != nil {
			return err
		}
	}
	m := Marker{Role: loc.Role, Coordinates: loc.Coordinates(), Label: loc.Address}
	if err := c.surface.AddMarker(markerID(loc.Role), m); err != nil {
		return fmt.Errorf("mapview.Controller.SetMarker: %w", err)
	}
	c.markers[loc.Role] = m.Coordinates
	return nil
}

func (c *Controller) removeMarkerLocked(role domain.Role) error {
	if err := c.surface.RemoveMarker(markerID(role)); err != nil {
		return fmt.Errorf("mapview.Controller.removeMarker: %w", err)
	}
	delete(c.markers, role)
	return nil
}

func (c *Controller) drawRouteLocked(path []domain.Coordinates) error {
	if c.route {
		if err := c.surface.RemoveRoute(RouteID); err != nil {
			return fmt.Errorf("mapview.Controller.DrawRoute: %w", err)
		}
		c.route = false
	}
	if len(path) < 2 {
		return nil
	}
	if !c.mounted {
		return fmt.Errorf("mapview.Controller.DrawRoute: %w", ErrNotMounted)
	}
	if err := c.surface.AddRoute(RouteID, path); err != nil {
		return fmt.Errorf("mapview.Controller.DrawRoute: %w", err)
	}
	c.route = true
	return nil
}

func (c *Controller) fitLocked() error {
	switch len(c.markers) {
	case 0:
		if !c.mounted {
			return nil
		}
		if err := c.surface.FlyTo(Viewport{Center: DefaultCenter, Zoom: DefaultZoom}); err != nil {
			return fmt.Errorf("mapview.Controller.FitToMarkers: %w", err)
		}
		return nil
	case 1:
		for _, at := range c.markers {
			if err := c.surface.FlyTo(Viewport{Center: at, Zoom: singleMarkerZoom}); err != nil {
				return fmt.Errorf("mapview.Controller.FitToMarkers: %w", err)
			}
		}
		return nil
	}

	b := Bounds{
		SouthWest: domain.Coordinates{Latitude: math.Inf(1), Longitude: math.Inf(1)},
		NorthEast: domain.Coordinates{Latitude: math.Inf(-1), Longitude: math.Inf(-1)},
		Padding:   c.padding,
	}
	for _, at := range c.markers {
		b.SouthWest.Latitude = math.Min(b.SouthWest.Latitude, at.Latitude)
		b.SouthWest.Longitude = math.Min(b.SouthWest.Longitude, at.Longitude)
		b.NorthEast.Latitude = math.Max(b.NorthEast.Latitude, at.Latitude)
		b.NorthEast.Longitude = math.Max(b.NorthEast.Longitude, at.Longitude)
	}
	if err := c.surface.FitBounds(b); err != nil {
		return fmt.Errorf("mapview.Controller.FitToMarkers: %w", err)
	}
	return nil
}
