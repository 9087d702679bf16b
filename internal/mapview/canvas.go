package mapview

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkordes/eldplan/internal/domain"
)

// Op is one recorded Surface call.
type Op struct {
	Kind string
	ID   string
	Path []domain.Coordinates
}

// Op kinds.
const (
	OpMount        = "mount"
	OpAddMarker    = "add-marker"
	OpRemoveMarker = "remove-marker"
	OpAddRoute     = "add-route"
	OpRemoveRoute  = "remove-route"
	OpFitBounds    = "fit-bounds"
	OpFlyTo        = "fly-to"
)

// MaxOps bounds the operation log. Older entries are dropped first.
const MaxOps = 256

// Canvas is an in-memory Surface. It keeps the overlay state the browser page
// renders from (see Snapshot) and the most recent MaxOps operations.
type Canvas struct {
	mu       sync.Mutex
	mounted  bool
	cfg      MountConfig
	markers  map[string]Marker
	routes   map[string][]domain.Coordinates
	bounds   *Bounds
	viewport Viewport
	ops      []Op
}

var _ Surface = (*Canvas)(nil)

// NewCanvas returns an unmounted Canvas.
func NewCanvas() *Canvas {
	return &Canvas{
		markers: make(map[string]Marker),
		routes:  make(map[string][]domain.Coordinates),
	}
}

func (c *Canvas) Mount(cfg MountConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mounted {
		return fmt.Errorf("mapview.Canvas.Mount: already mounted in %q", c.cfg.Container)
	}
	c.mounted = true
	c.cfg = cfg
	c.viewport = Viewport{Center: cfg.Center, Zoom: cfg.Zoom}
	c.record(Op{Kind: OpMount, ID: cfg.Container})
	return nil
}

func (c *Canvas) AddMarker(id string, m Marker) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return fmt.Errorf("mapview.Canvas.AddMarker: %w", ErrNotMounted)
	}
	if _, ok := c.markers[id]; ok {
		return fmt.Errorf("mapview.Canvas.AddMarker: %w: %s", ErrDuplicateLayer, id)
	}
	c.markers[id] = m
	c.record(Op{Kind: OpAddMarker, ID: id})
	return nil
}

func (c *Canvas) RemoveMarker(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.markers[id]; !ok {
		return fmt.Errorf("mapview.Canvas.RemoveMarker: %w: %s", ErrUnknownLayer, id)
	}
	delete(c.markers, id)
	c.record(Op{Kind: OpRemoveMarker, ID: id})
	return nil
}

func (c *Canvas) AddRoute(id string, path []domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return fmt.Errorf("mapview.Canvas.AddRoute: %w", ErrNotMounted)
	}
	if _, ok := c.routes[id]; ok {
		return fmt.Errorf("mapview.Canvas.AddRoute: %w: %s", ErrDuplicateLayer, id)
	}
	p := append([]domain.Coordinates(nil), path...)
	c.routes[id] = p
	c.record(Op{Kind: OpAddRoute, ID: id, Path: p})
	return nil
}

func (c *Canvas) RemoveRoute(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.routes[id]; !ok {
		return fmt.Errorf("mapview.Canvas.RemoveRoute: %w: %s", ErrUnknownLayer, id)
	}
	delete(c.routes, id)
	c.record(Op{Kind: OpRemoveRoute, ID: id})
	return nil
}

func (c *Canvas) FitBounds(b Bounds) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return fmt.Errorf("mapview.Canvas.FitBounds: %w", ErrNotMounted)
	}
	c.bounds = &b
	c.viewport.Center = domain.Coordinates{
		Latitude:  (b.SouthWest.Latitude + b.NorthEast.Latitude) / 2,
		Longitude: (b.SouthWest.Longitude + b.NorthEast.Longitude) / 2,
	}
	c.record(Op{Kind: OpFitBounds})
	return nil
}

func (c *Canvas) FlyTo(v Viewport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return fmt.Errorf("mapview.Canvas.FlyTo: %w", ErrNotMounted)
	}
	c.bounds = nil
	c.viewport = v
	c.record(Op{Kind: OpFlyTo})
	return nil
}

// Ops returns a copy of the operation log.
func (c *Canvas) Ops() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Op(nil), c.ops...)
}

// Snapshot exports the current overlays as GeoJSON plus camera state.
// Markers are ordered by id so the output is stable.
func (c *Canvas) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.markers))
	for id := range c.markers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fc := FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
	for _, id := range ids {
		m := c.markers[id]
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			ID:       id,
			Geometry: Geometry{Type: "Point", Coordinates: lngLat(m.Coordinates)},
			Properties: map[string]any{
				"kind":  "marker",
				"role":  m.Role,
				"label": m.Label,
			},
		})
	}
	routeIDs := make([]string, 0, len(c.routes))
	for id := range c.routes {
		routeIDs = append(routeIDs, id)
	}
	sort.Strings(routeIDs)
	for _, id := range routeIDs {
		line := make([][2]float64, 0, len(c.routes[id]))
		for _, p := range c.routes[id] {
			line = append(line, lngLat(p))
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			ID:         id,
			Geometry:   Geometry{Type: "LineString", Coordinates: line},
			Properties: map[string]any{"kind": "route"},
		})
	}

	s := Snapshot{
		Mounted:  c.mounted,
		StyleID:  c.cfg.StyleID,
		Viewport: c.viewport,
		Overlays: fc,
	}
	if c.bounds != nil {
		b := *c.bounds
		s.Bounds = &b
	}
	return s
}

func (c *Canvas) record(op Op) {
	if len(c.ops) >= MaxOps {
		n := copy(c.ops, c.ops[len(c.ops)-MaxOps+1:])
		c.ops = c.ops[:n]
	}
	c.ops = append(c.ops, op)
}
