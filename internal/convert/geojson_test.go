package convert

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jwilliamsresearch/geon/internal/geo"
	"github.com/jwilliamsresearch/geon/internal/geon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFeature(t *testing.T, doc string) geo.GeoJSONFeature {
	t.Helper()
	var f geo.GeoJSONFeature
	require.NoError(t, json.Unmarshal([]byte(doc), &f))
	return f
}

func TestFromFeature_Polygon(t *testing.T) {
	f := decodeFeature(t, `{
		"type": "Feature",
		"id": 4256021,
		"properties": {"name": "Old Market Square", "leisure": "park", "amenity": "marketplace", "shop": "flowers", "source": "survey"},
		"geometry": {"type": "Polygon", "coordinates": [[[-1.16,52.95],[-1.15,52.95],[-1.15,52.96],[-1.16,52.96],[-1.16,52.95]]]}
	}`)

	p := FromFeature(f, Options{})

	assert.Equal(t, "Old Market Square", p.Name)
	assert.Equal(t, "public_space", p.Type)
	assert.Equal(t, "4256021", p.ID)
	require.NotNil(t, p.Location)
	assert.InDelta(t, 52.955, p.Location.Lat, 1e-9)
	assert.InDelta(t, -1.155, p.Location.Lon, 1e-9)
	assert.Len(t, p.Boundary, 5)
	assert.Equal(t, []string{"marketplace", "park", "retail (flowers)"}, p.Purpose)
	assert.Equal(t, []string{"survey", SourceGeoJSON}, p.Source)
}

func TestFromFeature_Inference(t *testing.T) {
	tests := []struct {
		name     string
		props    string
		opts     Options
		wantName string
		wantType string
	}{
		{"explicit type", `{"geon_type": "district"}`, Options{}, "Unnamed", "district"},
		{"highway", `{"name:en": "High St", "highway": "primary"}`, Options{}, "High St", "street"},
		{"unknown", `{"title": "Thing", "building": "shed"}`, Options{}, "Thing", DefaultType},
		{"override", `{"label": "Shed", "building": "shed"}`, Options{TypeMapping: map[string]string{"shed": "building"}}, "Shed", "building"},
		{"override wins", `{"highway": "primary"}`, Options{TypeMapping: map[string]string{"primary": "threshold"}}, "Unnamed", "threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := decodeFeature(t, `{"type":"Feature","properties":`+tt.props+`,"geometry":null}`)
			p := FromFeature(f, tt.opts)
			assert.Equal(t, tt.wantName, p.Name)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Nil(t, p.Location)
		})
	}
}

func TestFromFeature_LineMidpoint(t *testing.T) {
	f := decodeFeature(t, `{"type":"Feature","properties":{"highway":"footway"},
		"geometry":{"type":"LineString","coordinates":[[0,0],[1,1],[2,2]]}}`)

	p := FromFeature(f, Options{})
	assert.Equal(t, &geon.Coordinate{Lat: 1, Lon: 1}, p.Location)
	assert.Empty(t, p.Boundary)
}

func TestFromFeature_AssignIDs(t *testing.T) {
	f := decodeFeature(t, `{"type":"Feature","properties":{"name":"A"},"geometry":{"type":"Point","coordinates":[1,2]}}`)

	assert.Empty(t, FromFeature(f, Options{}).ID)

	id := FromFeature(f, Options{AssignIDs: true}).ID
	assert.True(t, strings.HasPrefix(id, "urn:uuid:"), id)
	assert.NotEqual(t, id, FromFeature(f, Options{AssignIDs: true}).ID)

	f.Properties["@id"] = "node/7"
	assert.Equal(t, "node/7", FromFeature(f, Options{AssignIDs: true}).ID)
}

func TestToFeature(t *testing.T) {
	p := &geon.Place{
		Name:     "Square",
		Type:     "public_space",
		ID:       "sq-1",
		Location: &geon.Coordinate{Lat: 52.95, Lon: -1.15},
		Boundary: []geon.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 0}},
		Purpose:  []string{"markets"},
	}

	f := ToFeature(p)
	assert.Equal(t, "sq-1", f.ID)
	assert.Equal(t, "Square", f.Properties["name"])
	assert.Equal(t, "public_space", f.Properties["geon_type"])
	assert.Equal(t, []string{"markets"}, f.Properties["purpose"])
	assert.NotContains(t, f.Properties, "experience")

	ring := f.Geometry.OuterRing()
	require.Len(t, ring, 4)
	assert.Equal(t, geo.Position{1, 0}, ring[1])

	p.Boundary = p.Boundary[:2]
	pt, err := ToFeature(p).Geometry.Point()
	require.NoError(t, err)
	assert.Equal(t, geo.Position{-1.15, 52.95}, pt)

	pt, err = ToFeature(&geon.Place{Name: "Nowhere"}).Geometry.Point()
	require.NoError(t, err)
	assert.Equal(t, geo.Position{0, 0}, pt)
}

func TestGeoJSON_PolygonRoundTrip(t *testing.T) {
	in := &geon.Place{
		Name:     "Block",
		Type:     "building",
		Boundary: []geon.Coordinate{{Lat: 1, Lon: 1}, {Lat: 1, Lon: 2}, {Lat: 2, Lon: 2}, {Lat: 1, Lon: 1}},
	}

	fc := ToFeatureCollection([]*geon.Place{in})
	data, err := json.Marshal(fc)
	require.NoError(t, err)

	back, err := DecodeFeatureCollection(strings.NewReader(string(data)))
	require.NoError(t, err)

	places := FromFeatureCollection(back, Options{})
	require.Len(t, places, 1)
	assert.Equal(t, in.Boundary, places[0].Boundary)
	assert.Equal(t, "building", places[0].Type)
	assert.Equal(t, &geon.Coordinate{Lat: 4.0 / 3, Lon: 5.0 / 3}, places[0].Location)
}
