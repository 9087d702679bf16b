package mapview

import "github.com/pkordes/eldplan/internal/domain"

// Snapshot is the renderable state of a Canvas.
type Snapshot struct {
	Mounted  bool              `json:"mounted"`
	StyleID  string            `json:"styleId,omitempty"`
	Viewport Viewport          `json:"viewport"`
	Bounds   *Bounds           `json:"bounds,omitempty"`
	Overlays FeatureCollection `json:"overlays"`
}

// FeatureCollection is the subset of RFC 7946 the pages consume.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds either a Point ([lng, lat]) or a LineString ([][lng, lat]).
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// lngLat orders a point the GeoJSON way.
func lngLat(c domain.Coordinates) [2]float64 {
	return [2]float64{c.Longitude, c.Latitude}
}
