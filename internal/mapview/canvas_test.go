package mapview_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eldplan/internal/domain"
	"github.com/pkordes/eldplan/internal/mapview"
)

func TestCanvas_RejectsDuplicateAndUnknownLayers(t *testing.T) {
	c := mapview.NewCanvas()
	require.NoError(t, c.Mount(mapview.MountConfig{Container: "m"}))

	require.NoError(t, c.AddMarker("a", mapview.Marker{}))
	assert.ErrorIs(t, c.AddMarker("a", mapview.Marker{}), mapview.ErrDuplicateLayer)
	assert.ErrorIs(t, c.RemoveMarker("b"), mapview.ErrUnknownLayer)
	assert.ErrorIs(t, c.RemoveRoute("r"), mapview.ErrUnknownLayer)
	assert.Error(t, c.Mount(mapview.MountConfig{Container: "m"}), "a surface mounts once")
}

func TestCanvas_SnapshotIsGeoJSON(t *testing.T) {
	c := mapview.NewCanvas()
	require.NoError(t, c.Mount(mapview.MountConfig{Container: "m", StyleID: "roadmap"}))
	require.NoError(t, c.AddMarker("marker-current", mapview.Marker{
		Role:        domain.RoleCurrent,
		Coordinates: domain.Coordinates{Latitude: 41.8, Longitude: -87.6},
		Label:       "Chicago",
	}))
	require.NoError(t, c.AddRoute(mapview.RouteID, []domain.Coordinates{
		{Latitude: 41.8, Longitude: -87.6},
		{Latitude: 39.9, Longitude: -83.0},
	}))

	raw, err := json.Marshal(c.Snapshot())
	require.NoError(t, err)

	var doc struct {
		StyleID  string `json:"styleId"`
		Overlays struct {
			Type     string `json:"type"`
			Features []struct {
				Geometry struct {
					Type        string          `json:"type"`
					Coordinates json.RawMessage `json:"coordinates"`
				} `json:"geometry"`
			} `json:"features"`
		} `json:"overlays"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "roadmap", doc.StyleID)
	assert.Equal(t, "FeatureCollection", doc.Overlays.Type)
	require.Len(t, doc.Overlays.Features, 2)
	assert.Equal(t, "Point", doc.Overlays.Features[0].Geometry.Type)
	assert.JSONEq(t, `[-87.6, 41.8]`, string(doc.Overlays.Features[0].Geometry.Coordinates))
	assert.Equal(t, "LineString", doc.Overlays.Features[1].Geometry.Type)
	assert.JSONEq(t, `[[-87.6, 41.8], [-83.0, 39.9]]`, string(doc.Overlays.Features[1].Geometry.Coordinates))
}

func TestCanvas_OpLogIsBounded(t *testing.T) {
	c := mapview.NewCanvas()
	require.NoError(t, c.Mount(mapview.MountConfig{Container: "m"}))

	for i := 0; i < mapview.MaxOps; i++ {
		require.NoError(t, c.AddMarker("a", mapview.Marker{}))
		require.NoError(t, c.RemoveMarker("a"))
	}
	require.NoError(t, c.FlyTo(mapview.Viewport{Zoom: 3}))

	ops := c.Ops()
	require.Len(t, ops, mapview.MaxOps)
	assert.Equal(t, mapview.OpFlyTo, ops[len(ops)-1].Kind)
	assert.Equal(t, mapview.OpRemoveMarker, ops[len(ops)-2].Kind)
	assert.Equal(t, mapview.OpRemoveMarker, ops[0].Kind, "mount and the oldest edits were dropped")
}
