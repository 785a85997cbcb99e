package convert

import (
	"testing"

	"github.com/jwilliamsresearch/geon/internal/geon"

	"github.com/stretchr/testify/assert"
)

func TestFromOvertureFeature(t *testing.T) {
	f := decodeFeature(t, `{
		"type": "Feature",
		"id": "08f194ad-3241-0744-0200-54a1a98e6d95",
		"geometry": {"type": "Point", "coordinates": [-1.1490, 52.9534]},
		"properties": {
			"names": {"primary": "Ye Olde Trip to Jerusalem"},
			"categories": {"main": "bar", "alternate": ["pub", "historic_pub"]},
			"confidence": 0.923,
			"sources": [{"dataset": "meta"}, {"dataset": "microsoft"}],
			"addresses": [{"freeform": "1 Brewhouse Yard, Nottingham NG1 6AD"}],
			"websites": ["https://www.triptojerusalem.com"]
		}
	}`)

	p := FromOvertureFeature(f, Options{})

	assert.Equal(t, "Ye Olde Trip to Jerusalem", p.Name)
	assert.Equal(t, "08f194ad-3241-0744-0200-54a1a98e6d95", p.ID)
	assert.Equal(t, "building", p.Type)
	assert.Equal(t, []string{"pub", "historic_pub"}, p.Purpose)
	assert.Equal(t, &geon.Coordinate{Lat: 52.9534, Lon: -1.1490}, p.Location)
	assert.Equal(t, map[string]string{"overall": "0.92"}, p.Confidence)
	assert.Equal(t, []string{"Overture Maps (meta)", "Overture Maps (microsoft)"}, p.Source)

	addr, ok := p.ExtraText("ADDRESS")
	assert.True(t, ok)
	assert.Equal(t, "1 Brewhouse Yard, Nottingham NG1 6AD", addr)
	site, _ := p.ExtraText("WEBSITE")
	assert.Equal(t, "https://www.triptojerusalem.com", site)
	_, ok = p.ExtraText("PHONE")
	assert.False(t, ok)
}

func TestOvertureType(t *testing.T) {
	tests := map[string]string{
		"train_station":    "transport_hub",
		"castle":           "landmark",
		"Botanical_Garden": "public_space",
		"coffee_roastery":  DefaultType,
		"sports_centre":    "public_space",
		"cocktail_bar":     "building",
		"":                 DefaultType,
	}
	for category, want := range tests {
		assert.Equal(t, want, overtureType(category, Options{}), category)
	}

	assert.Equal(t, "building", overtureType("coffee_roastery", Options{TypeMapping: map[string]string{"coffee_roastery": "building"}}))
}

func TestFromOvertureFeature_Defaults(t *testing.T) {
	f := decodeFeature(t, `{"type":"Feature","properties":{"name":"Plain"},"geometry":null}`)

	p := FromOvertureFeature(f, Options{})
	assert.Equal(t, "Plain", p.Name)
	assert.Equal(t, DefaultType, p.Type)
	assert.Equal(t, []string{SourceOverture}, p.Source)
	assert.Nil(t, p.Confidence)
	assert.Empty(t, p.Extra)
}

func TestFromOvertureCollection(t *testing.T) {
	f := decodeFeature(t, `{"type":"Feature","id":"place-001","properties":{"names":{"primary":"Old Market Square"},"categories":{"main":"park"}},"geometry":{"type":"Point","coordinates":[-1.1581,52.9548]}}`)

	places := FromOvertureCollection(geoCollection(f), Options{})
	assert.Len(t, places, 1)
	assert.Equal(t, "public_space", places[0].Type)
	assert.Equal(t, "place-001", places[0].ID)
}
