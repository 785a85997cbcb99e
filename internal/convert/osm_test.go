package convert

import (
	"encoding/json"
	"testing"

	"github.com/jwilliamsresearch/geon/internal/geo"
	"github.com/jwilliamsresearch/geon/internal/geon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geoCollection(fs ...geo.GeoJSONFeature) geo.GeoJSONFeatureCollection {
	return geo.GeoJSONFeatureCollection{Type: "FeatureCollection", Features: fs}
}

const overpassDoc = `{
	"elements": [
		{"type": "node", "id": 12345, "lat": 52.9481, "lon": -1.156,
		 "tags": {"name": "Nottingham Castle", "tourism": "museum", "website": "https://example.org", "opening_hours": "10:00-17:00"}},
		{"type": "way", "id": 67890,
		 "bounds": {"minlat": 52.948, "minlon": -1.215, "maxlat": 52.955, "maxlon": -1.203},
		 "geometry": [{"lat": 52.955, "lon": -1.215}, {"lat": 52.955, "lon": -1.203}, {"lat": 52.948, "lon": -1.203}],
		 "tags": {"name": "Wollaton Park", "leisure": "park"}},
		{"type": "relation", "id": 3, "center": {"lat": 1, "lon": 2}, "tags": {"amenity": "pub"}}
	]
}`

func TestFromOverpass(t *testing.T) {
	var resp OverpassResponse
	require.NoError(t, json.Unmarshal([]byte(overpassDoc), &resp))

	places := FromOverpass(resp, Options{})
	require.Len(t, places, 3)

	castle := places[0]
	assert.Equal(t, "Nottingham Castle", castle.Name)
	assert.Equal(t, "osm:node/12345", castle.ID)
	assert.Equal(t, DefaultType, castle.Type)
	assert.Equal(t, &geon.Coordinate{Lat: 52.9481, Lon: -1.156}, castle.Location)
	assert.Equal(t, []string{"tourism: museum"}, castle.Purpose)
	assert.Equal(t, []string{"OpenStreetMap (node/12345)"}, castle.Source)
	hours, ok := castle.ExtraText("OPENING_HOURS")
	assert.True(t, ok)
	assert.Equal(t, "10:00-17:00", hours)

	park := places[1]
	assert.Equal(t, "public_space", park.Type)
	assert.InDelta(t, 52.9515, park.Location.Lat, 1e-9)
	assert.InDelta(t, -1.209, park.Location.Lon, 1e-9)
	assert.Len(t, park.Boundary, 3)
	assert.Equal(t, []string{"leisure: park"}, park.Purpose)

	pub := places[2]
	assert.Equal(t, "Unnamed", pub.Name)
	assert.Equal(t, "building", pub.Type)
	assert.Equal(t, &geon.Coordinate{Lat: 1, Lon: 2}, pub.Location)
}

func TestFromOSMElement_GeneratesValidText(t *testing.T) {
	var resp OverpassResponse
	require.NoError(t, json.Unmarshal([]byte(overpassDoc), &resp))

	p := FromOSMElement(resp.Elements[0], Options{})
	back, err := geon.ParseStrict(geon.Generate(p))
	require.NoError(t, err)
	assert.Equal(t, p, back)
}
