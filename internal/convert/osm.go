package convert

import (
	"fmt"

	"github.com/jwilliamsresearch/geon/internal/geon"
)

// OverpassResponse is the JSON document returned by an Overpass API query
// run with [out:json].
type OverpassResponse struct {
	Elements []OverpassElement `json:"elements"`
}

// OverpassElement is a node, way or relation. Ways and relations carry a
// center, bounds or full geometry depending on the query's out mode.
type OverpassElement struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      *float64          `json:"lat,omitempty"`
	Lon      *float64          `json:"lon,omitempty"`
	Center   *LatLon           `json:"center,omitempty"`
	Bounds   *OverpassBounds   `json:"bounds,omitempty"`
	Geometry []LatLon          `json:"geometry,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// LatLon is an Overpass point.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OverpassBounds is the bounding box of a way or relation.
type OverpassBounds struct {
	MinLat float64 `json:"minlat"`
	MinLon float64 `json:"minlon"`
	MaxLat float64 `json:"maxlat"`
	MaxLon float64 `json:"maxlon"`
}

var (
	// Tags consulted for type inference through the GeoJSON table.
	osmTypeTags = []string{"building", "highway", "railway", "leisure",
		"amenity", "natural", "landuse", "tourism"}

	// Tags turned into "<key>: <value>" purposes.
	osmPurposeTags = []string{"amenity", "leisure", "shop", "tourism", "sport"}

	// Tags kept verbatim as extra fields.
	osmExtraTags = []string{"opening_hours", "website", "phone", "cuisine", "operator"}
)

// FromOverpass converts every element of an Overpass response.
func FromOverpass(resp OverpassResponse, opts Options) []*geon.Place {
	places := make([]*geon.Place, 0, len(resp.Elements))
	for i := range resp.Elements {
		places = append(places, FromOSMElement(resp.Elements[i], opts))
	}
	return places
}

// FromOSMElement converts a single OSM node, way or relation.
func FromOSMElement(el OverpassElement, opts Options) *geon.Place {
	tags := el.Tags
	ref := fmt.Sprintf("%s/%d", el.Type, el.ID)

	p := &geon.Place{
		Name:   osmName(tags),
		ID:     "osm:" + ref,
		Source: []string{fmt.Sprintf("OpenStreetMap (%s)", ref)},
	}

	typeProps := make(map[string]interface{})
	for _, key := range osmTypeTags {
		if v, ok := tags[key]; ok {
			typeProps[key] = v
		}
	}
	p.Type = opts.inferType(typeProps)
	if p.Type == DefaultType {
		p.Type = guessOSMType(tags)
	}

	switch {
	case el.Type == "node" && el.Lat != nil && el.Lon != nil:
		p.Location = &geon.Coordinate{Lat: *el.Lat, Lon: *el.Lon}
	case el.Center != nil:
		p.Location = &geon.Coordinate{Lat: el.Center.Lat, Lon: el.Center.Lon}
	case el.Bounds != nil:
		p.Location = &geon.Coordinate{
			Lat: (el.Bounds.MinLat + el.Bounds.MaxLat) / 2,
			Lon: (el.Bounds.MinLon + el.Bounds.MaxLon) / 2,
		}
	}

	for _, pt := range el.Geometry {
		p.Boundary = append(p.Boundary, geon.Coordinate{Lat: pt.Lat, Lon: pt.Lon})
	}

	for _, key := range osmPurposeTags {
		if v, ok := tags[key]; ok {
			p.Purpose = append(p.Purpose, key+": "+v)
		}
	}

	for _, key := range osmExtraTags {
		if v, ok := tags[key]; ok {
			p.SetExtra(extraKey(key), v)
		}
	}

	return p
}

func osmName(tags map[string]string) string {
	if n := tags["name"]; n != "" {
		return n
	}
	if n := tags["name:en"]; n != "" {
		return n
	}
	return "Unnamed"
}

func guessOSMType(tags map[string]string) string {
	if _, ok := tags["amenity"]; ok {
		return "building"
	}
	if _, ok := tags["leisure"]; ok {
		return "public_space"
	}
	if _, ok := tags["highway"]; ok {
		return "street"
	}
	return DefaultType
}
