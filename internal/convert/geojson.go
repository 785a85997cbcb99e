// Package convert translates between GEON places and external geographic
// formats: GeoJSON, Overture Maps features and OpenStreetMap Overpass results.
package convert

import (
	"fmt"
	"strings"

	"github.com/jwilliamsresearch/geon/internal/geo"
	"github.com/jwilliamsresearch/geon/internal/geon"

	"github.com/google/uuid"
)

// SourceGeoJSON is appended to the SOURCE list of every converted feature.
const SourceGeoJSON = "GeoJSON conversion"

// DefaultType is used when no property maps to a known place type.
const DefaultType = "hybrid"

// Options tune the feature to place conversion.
type Options struct {
	// TypeMapping overrides or extends the built in property value to
	// TYPE table.
	TypeMapping map[string]string

	// AssignIDs gives features without an identifier a urn:uuid ID.
	AssignIDs bool
}

// typeMapping maps common OSM style property values to place types.
var typeMapping = map[string]string{
	"park":        "public_space",
	"garden":      "public_space",
	"playground":  "public_space",
	"plaza":       "public_space",
	"square":      "public_space",
	"common":      "public_space",
	"pitch":       "public_space",
	"marketplace": "public_space",

	"road":        "street",
	"residential": "street",
	"primary":     "street",
	"secondary":   "street",
	"tertiary":    "street",
	"footway":     "street",
	"cycleway":    "street",
	"path":        "street",
	"pedestrian":  "street",
	"motorway":    "street",
	"trunk":       "street",

	"railway_station": "transport_hub",
	"station":         "transport_hub",
	"bus_station":     "transport_hub",
	"airport":         "transport_hub",
	"halt":            "transport_hub",
	"ferry_terminal":  "transport_hub",

	"yes":        "building",
	"house":      "building",
	"apartments": "building",
	"commercial": "building",
	"retail":     "building",
	"industrial": "building",
	"office":     "building",
	"church":     "building",
	"cathedral":  "building",
	"school":     "building",
	"hospital":   "building",
	"university": "building",

	"monument": "landmark",
	"memorial": "landmark",
	"statue":   "landmark",
	"tower":    "landmark",

	"bridge": "threshold",

	"river":   "natural_feature",
	"stream":  "natural_feature",
	"lake":    "natural_feature",
	"wood":    "natural_feature",
	"forest":  "natural_feature",
	"peak":    "natural_feature",
	"cliff":   "natural_feature",
	"beach":   "natural_feature",
	"wetland": "natural_feature",
}

// Property keys consulted, in order, when inferring names and types.
var (
	nameKeys = []string{"name", "name:en", "official_name", "alt_name", "title", "label"}
	typeKeys = []string{"type", "building", "highway", "railway", "leisure", "amenity",
		"natural", "landuse", "tourism", "man_made", "waterway"}
)

// FromFeatureCollection converts every feature of fc.
func FromFeatureCollection(fc geo.GeoJSONFeatureCollection, opts Options) []*geon.Place {
	places := make([]*geon.Place, 0, len(fc.Features))
	for i := range fc.Features {
		places = append(places, FromFeature(fc.Features[i], opts))
	}
	return places
}

// FromFeature converts a single GeoJSON feature to a Place.
func FromFeature(f geo.GeoJSONFeature, opts Options) *geon.Place {
	props := f.Properties

	p := &geon.Place{
		Name:    inferName(props),
		Type:    opts.inferType(props),
		Purpose: purposes(props),
	}

	if c, ok := centroid(f.Geometry); ok {
		p.Location = &c
	}
	p.Boundary = boundary(f.Geometry)

	if exp, ok := props["experience"].(map[string]interface{}); ok {
		p.Experience = stringMap(exp)
	}

	p.ID = featureID(f)
	if p.ID == "" && opts.AssignIDs {
		p.ID = featureIDOrUUID(f)
	}

	if src, ok := props["source"]; ok {
		p.Source = stringList(src)
	}
	p.Source = append(p.Source, SourceGeoJSON)

	return p
}

func (o Options) lookupType(value string) (string, bool) {
	if t, ok := o.TypeMapping[value]; ok {
		return t, true
	}
	t, ok := typeMapping[value]
	return t, ok
}

func (o Options) inferType(props map[string]interface{}) string {
	if t := text(props["geon_type"]); t != "" {
		return t
	}

	for _, key := range typeKeys {
		if t, ok := o.lookupType(text(props[key])); ok {
			return t
		}
	}

	return DefaultType
}

func inferName(props map[string]interface{}) string {
	for _, key := range nameKeys {
		if name := text(props[key]); name != "" {
			return name
		}
	}
	return "Unnamed"
}

func purposes(props map[string]interface{}) []string {
	if v, ok := props["purpose"]; ok {
		return stringList(v)
	}

	var out []string
	if a := text(props["amenity"]); a != "" {
		out = append(out, a)
	}
	if l := text(props["leisure"]); l != "" {
		out = append(out, l)
	}
	if s := text(props["shop"]); s != "" {
		out = append(out, fmt.Sprintf("retail (%s)", s))
	}
	return out
}

// featureIDOrUUID returns the feature's own identifier or a fresh
// urn:uuid one.
func featureIDOrUUID(f geo.GeoJSONFeature) string {
	if id := featureID(f); id != "" {
		return id
	}
	return "urn:uuid:" + uuid.NewString()
}

func featureID(f geo.GeoJSONFeature) string {
	if id := text(f.ID); id != "" {
		return id
	}
	if id := text(f.Properties["id"]); id != "" {
		return id
	}
	return text(f.Properties["@id"])
}

// centroid picks a representative point: the point itself, the middle
// vertex of a line, or the vertex average of the outer ring.
func centroid(g *geo.GeoJSONGeometry) (geon.Coordinate, bool) {
	if g == nil {
		return geon.Coordinate{}, false
	}

	var (
		pos geo.Position
		ok  bool
	)
	switch g.Type {
	case "Point":
		p, err := g.Point()
		pos, ok = p, err == nil
	case "MultiPoint", "LineString":
		line, err := g.Line()
		if err == nil {
			pos, ok = geo.Midpoint(line)
		}
	case "Polygon", "MultiPolygon":
		pos, ok = geo.Centroid(g.OuterRing())
	}

	if !ok {
		return geon.Coordinate{}, false
	}
	return coordinate(pos), true
}

func boundary(g *geo.GeoJSONGeometry) []geon.Coordinate {
	ring := g.OuterRing()
	if len(ring) == 0 {
		return nil
	}
	out := make([]geon.Coordinate, len(ring))
	for i, pos := range ring {
		out[i] = coordinate(pos)
	}
	return out
}

func coordinate(p geo.Position) geon.Coordinate {
	return geon.Coordinate{Lat: p.Lat(), Lon: p.Lon()}
}

// ToFeature exports a Place as a GeoJSON feature. A boundary of three or
// more points becomes a Polygon; otherwise the location is used as a Point.
func ToFeature(p *geon.Place) geo.GeoJSONFeature {
	props := map[string]interface{}{
		"name":      p.Name,
		"geon_type": p.Type,
	}

	setText(props, "id", p.ID)
	setList(props, "purpose", p.Purpose)
	setMap(props, "experience", p.Experience)
	setList(props, "character", p.Character)
	setList(props, "adjacencies", p.Adjacencies)
	setMap(props, "connectivity", p.Connectivity)
	setText(props, "part_of", p.PartOf)
	setMap(props, "temporal", p.Temporal)
	setList(props, "source", p.Source)
	setMap(props, "confidence", p.Confidence)
	setText(props, "updated", p.Updated)
	setText(props, "area", p.Area)
	setText(props, "elevation", p.Elevation)
	setMap(props, "built_form", p.BuiltForm)
	setMap(props, "ecology", p.Ecology)
	setMap(props, "infrastructure", p.Infrastructure)
	setMap(props, "demographics", p.Demographics)
	setMap(props, "economy", p.Economy)

	f := geo.GeoJSONFeature{
		Type:       "Feature",
		Properties: props,
	}
	if p.ID != "" {
		f.ID = p.ID
	}

	switch {
	case len(p.Boundary) >= 3:
		ring := make([]geo.Position, len(p.Boundary))
		for i, c := range p.Boundary {
			ring[i] = c.Position()
		}
		f.Geometry = geo.NewPolygon(ring)
	case p.Location != nil:
		f.Geometry = geo.NewPoint(p.Location.Lon, p.Location.Lat)
	default:
		f.Geometry = geo.NewPoint(0, 0)
	}

	return f
}

// ToFeatureCollection exports several places as one collection.
func ToFeatureCollection(places []*geon.Place) geo.GeoJSONFeatureCollection {
	fc := geo.GeoJSONFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]geo.GeoJSONFeature, 0, len(places)),
	}
	for _, p := range places {
		fc.Features = append(fc.Features, ToFeature(p))
	}
	return fc
}

func setText(props map[string]interface{}, key, v string) {
	if v != "" {
		props[key] = v
	}
}

func setList(props map[string]interface{}, key string, v []string) {
	if len(v) > 0 {
		props[key] = v
	}
}

func setMap(props map[string]interface{}, key string, v map[string]string) {
	if len(v) > 0 {
		props[key] = v
	}
}

// text renders a decoded JSON scalar. Whole numbers lose their fraction so
// numeric OSM ids read naturally.
func text(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}

func stringList(v interface{}) []string {
	switch t := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, it := range t {
			if s := text(it); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	if s := text(v); s != "" {
		return []string{s}
	}
	return nil
}

func stringMap(m map[string]interface{}) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = text(v)
	}
	return out
}

// extraKey turns a property name into an upper snake field key.
func extraKey(name string) string {
	return strings.ToUpper(strings.NewReplacer(":", "_", "-", "_", " ", "_").Replace(name))
}

func lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
