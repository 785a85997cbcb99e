// Package geo handles geographic data structures and coordinate conversions.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Position is a GeoJSON position: [Lon, Lat] with an optional altitude.
type Position []float64

// Lon returns the longitude component.
func (p Position) Lon() float64 { return p[0] }

// Lat returns the latitude component.
func (p Position) Lat() float64 { return p[1] }

// Valid reports whether p carries at least a longitude and latitude.
func (p Position) Valid() bool { return len(p) >= 2 }

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single geographic feature with geometry and properties.
type GeoJSONFeature struct {
	ID         interface{}            `json:"id,omitempty" yaml:"id,omitempty"`
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
	Type       string                 `json:"type" yaml:"type"`
	Geometry   *GeoJSONGeometry       `json:"geometry" yaml:"geometry"`
}

// GeoJSONGeometry represents the geometry of a feature (Point, Polygon, etc.).
// Coordinates stay raw until read through the typed accessors, since their
// nesting depth depends on Type.
type GeoJSONGeometry struct {
	Type        string          `json:"type" yaml:"type"`
	Coordinates json.RawMessage `json:"coordinates" yaml:"-"`
}

// ErrGeometryType is returned when a geometry is read as the wrong type.
var ErrGeometryType = errors.New("unexpected geometry type")

// NewPoint builds a Point geometry.
func NewPoint(lon, lat float64) *GeoJSONGeometry {
	return mustGeometry("Point", Position{lon, lat})
}

// NewPolygon builds a Polygon geometry from its rings.
func NewPolygon(rings ...[]Position) *GeoJSONGeometry {
	return mustGeometry("Polygon", rings)
}

func mustGeometry(typ string, coords interface{}) *GeoJSONGeometry {
	raw, err := json.Marshal(coords)
	if err != nil {
		// positions are plain float slices
		panic(err)
	}
	return &GeoJSONGeometry{Type: typ, Coordinates: raw}
}

// Point returns the position of a Point geometry.
func (g *GeoJSONGeometry) Point() (Position, error) {
	var p Position
	if err := g.decode("Point", &p); err != nil {
		return nil, err
	}
	if !p.Valid() {
		return nil, fmt.Errorf("point: %w", errShortPosition)
	}
	return p, nil
}

// Line returns the positions of a LineString or MultiPoint geometry.
func (g *GeoJSONGeometry) Line() ([]Position, error) {
	var line []Position
	if g == nil || (g.Type != "LineString" && g.Type != "MultiPoint") {
		return nil, ErrGeometryType
	}
	if err := json.Unmarshal(g.Coordinates, &line); err != nil {
		return nil, fmt.Errorf("%s coordinates: %w", g.Type, err)
	}
	return validPositions(line), nil
}

// Polygon returns the rings of a Polygon geometry.
func (g *GeoJSONGeometry) Polygon() ([][]Position, error) {
	var rings [][]Position
	if err := g.decode("Polygon", &rings); err != nil {
		return nil, err
	}
	for i := range rings {
		rings[i] = validPositions(rings[i])
	}
	return rings, nil
}

// MultiPolygon returns the polygons of a MultiPolygon geometry.
func (g *GeoJSONGeometry) MultiPolygon() ([][][]Position, error) {
	var polys [][][]Position
	if err := g.decode("MultiPolygon", &polys); err != nil {
		return nil, err
	}
	for i := range polys {
		for j := range polys[i] {
			polys[i][j] = validPositions(polys[i][j])
		}
	}
	return polys, nil
}

// OuterRing returns the exterior ring of a Polygon, or of the first polygon of
// a MultiPolygon. Other geometry types have no ring.
func (g *GeoJSONGeometry) OuterRing() []Position {
	if g == nil {
		return nil
	}

	switch g.Type {
	case "Polygon":
		rings, err := g.Polygon()
		if err == nil && len(rings) > 0 {
			return rings[0]
		}
	case "MultiPolygon":
		polys, err := g.MultiPolygon()
		if err == nil && len(polys) > 0 && len(polys[0]) > 0 {
			return polys[0][0]
		}
	}

	return nil
}

// UnmarshalYAML lets inline geometries be written in YAML configuration.
func (g *GeoJSONGeometry) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Type        string      `yaml:"type"`
		Coordinates interface{} `yaml:"coordinates"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	coords, err := json.Marshal(raw.Coordinates)
	if err != nil {
		return fmt.Errorf("geometry coordinates: %w", err)
	}

	g.Type = raw.Type
	g.Coordinates = coords
	return nil
}

// MarshalYAML writes the coordinates as nested sequences.
func (g GeoJSONGeometry) MarshalYAML() (interface{}, error) {
	var coords interface{}
	if len(g.Coordinates) > 0 {
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, err
		}
	}
	return map[string]interface{}{"type": g.Type, "coordinates": coords}, nil
}

var errShortPosition = errors.New("position needs longitude and latitude")

func (g *GeoJSONGeometry) decode(typ string, v interface{}) error {
	if g == nil || g.Type != typ {
		return ErrGeometryType
	}
	if err := json.Unmarshal(g.Coordinates, v); err != nil {
		return fmt.Errorf("%s coordinates: %w", typ, err)
	}
	return nil
}

func validPositions(in []Position) []Position {
	out := in[:0]
	for _, p := range in {
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out
}
