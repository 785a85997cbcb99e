package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMercatorRoundTrip(t *testing.T) {
	x, y := LonLatToMercator(0, 0)
	assert.InDelta(t, 0.5, x, 1e-12)
	assert.InDelta(t, 0.5, y, 1e-12)

	x, y = LonLatToMercator(-1.8933, 52.4777)
	lon, lat := MercatorToLonLat(x, y)
	assert.InDelta(t, -1.8933, lon, 1e-9)
	assert.InDelta(t, 52.4777, lat, 1e-9)

	_, yTop := LonLatToMercator(0, 89.9)
	assert.InDelta(t, 0, yTop, 1e-6)
}

func TestCentroid(t *testing.T) {
	ring := []Position{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}
	c, ok := Centroid(ring)
	require.True(t, ok)
	assert.Equal(t, Position{1, 1}, c)

	_, ok = Centroid(nil)
	assert.False(t, ok)
}

func TestBounds(t *testing.T) {
	w, s, e, n, ok := Bounds([]Position{{1, 5}, {-2, 3}, {4, -1}})
	require.True(t, ok)
	assert.Equal(t, []float64{-2, -1, 4, 5}, []float64{w, s, e, n})
}

func TestGeometryAccessors(t *testing.T) {
	var f GeoJSONFeature
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "Feature",
		"properties": {"name": "Square"},
		"geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0]]]}
	}`), &f))

	rings, err := f.Geometry.Polygon()
	require.NoError(t, err)
	assert.Len(t, rings[0], 3)
	assert.Equal(t, rings[0], f.Geometry.OuterRing())

	_, err = f.Geometry.Point()
	assert.ErrorIs(t, err, ErrGeometryType)

	p, err := NewPoint(-1.5, 52).Point()
	require.NoError(t, err)
	assert.Equal(t, -1.5, p.Lon())
	assert.Equal(t, 52.0, p.Lat())
}

func TestGeometryYAML(t *testing.T) {
	var fc GeoJSONFeatureCollection
	require.NoError(t, yaml.Unmarshal([]byte(`
type: FeatureCollection
features:
  - type: Feature
    properties: {name: Gate}
    geometry:
      type: Point
      coordinates: [-1.2, 52.9]
`), &fc))

	require.Len(t, fc.Features, 1)
	p, err := fc.Features[0].Geometry.Point()
	require.NoError(t, err)
	assert.Equal(t, Position{-1.2, 52.9}, p)
}
