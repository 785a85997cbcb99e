// Package geon implements the GEON place notation: an indentation structured
// text format describing places, and the transform between that text and the
// Place tree.
package geon

import (
	"strconv"
	"strings"
)

// Coordinate is a WGS84 position.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// String renders the coordinate as "<lat>, <lon>".
func (c Coordinate) String() string {
	return formatFloat(c.Lat) + ", " + formatFloat(c.Lon)
}

// Position returns the GeoJSON [lon, lat] ordering.
func (c Coordinate) Position() []float64 {
	return []float64{c.Lon, c.Lat}
}

// Extent is a bounding box.
type Extent struct {
	North float64 `json:"north" yaml:"north"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	West  float64 `json:"west" yaml:"west"`
}

// String renders the extent as "<n>, <s>, <e>, <w>".
func (e Extent) String() string {
	return strings.Join([]string{
		formatFloat(e.North),
		formatFloat(e.South),
		formatFloat(e.East),
		formatFloat(e.West),
	}, ", ")
}

// Viewsheds holds either an ordered list of views or a keyed map of them.
// The form is decided by the source text, parse populates exactly one.
type Viewsheds struct {
	Items   []string          `json:"items,omitempty" yaml:"items,omitempty"`
	Entries map[string]string `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// IsEmpty reports whether neither form carries a value.
func (v Viewsheds) IsEmpty() bool {
	return len(v.Items) == 0 && len(v.Entries) == 0
}

// Place is the recursive description of a geographic place.
//
// Optional text fields treat the empty string as absent. Contains is an owned
// tree: children are never shared and hold no pointer back to their parent,
// PartOf is a plain name reference.
type Place struct {
	// Identity
	Name string `json:"place" yaml:"place"`
	Type string `json:"type" yaml:"type"`
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`

	// Geometry
	Location  *Coordinate  `json:"location,omitempty" yaml:"location,omitempty"`
	Boundary  []Coordinate `json:"boundary,omitempty" yaml:"boundary,omitempty"`
	Extent    *Extent      `json:"extent,omitempty" yaml:"extent,omitempty"`
	Elevation string       `json:"elevation,omitempty" yaml:"elevation,omitempty"`
	Area      string       `json:"area,omitempty" yaml:"area,omitempty"`

	// Semantic
	Purpose    []string          `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	Experience map[string]string `json:"experience,omitempty" yaml:"experience,omitempty"`
	Character  []string          `json:"character,omitempty" yaml:"character,omitempty"`

	// Relational
	Adjacencies  []string          `json:"adjacencies,omitempty" yaml:"adjacencies,omitempty"`
	Connectivity map[string]string `json:"connectivity,omitempty" yaml:"connectivity,omitempty"`
	Contains     []*Place          `json:"contains,omitempty" yaml:"contains,omitempty"`
	PartOf       string            `json:"part_of,omitempty" yaml:"part_of,omitempty"`
	Viewsheds    Viewsheds         `json:"viewsheds,omitzero" yaml:"viewsheds,omitempty"`

	// Temporal
	Temporal map[string]string `json:"temporal,omitempty" yaml:"temporal,omitempty"`
	Lifespan map[string]string `json:"lifespan,omitempty" yaml:"lifespan,omitempty"`

	// Provenance
	Source     []string          `json:"source,omitempty" yaml:"source,omitempty"`
	Confidence map[string]string `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Updated    string            `json:"updated,omitempty" yaml:"updated,omitempty"`

	// Extended domains
	BuiltForm       map[string]string   `json:"built_form,omitempty" yaml:"built_form,omitempty"`
	Ecology         map[string]string   `json:"ecology,omitempty" yaml:"ecology,omitempty"`
	Infrastructure  map[string]string   `json:"infrastructure,omitempty" yaml:"infrastructure,omitempty"`
	Demographics    map[string]string   `json:"demographics,omitempty" yaml:"demographics,omitempty"`
	Economy         map[string]string   `json:"economy,omitempty" yaml:"economy,omitempty"`
	Visual          map[string]string   `json:"visual,omitempty" yaml:"visual,omitempty"`
	VerticalProfile map[string]string   `json:"vertical_profile,omitempty" yaml:"vertical_profile,omitempty"`
	History         []map[string]string `json:"history,omitempty" yaml:"history,omitempty"`

	// Extra keeps fields outside the known table, unparsed.
	Extra map[string]Node `json:"-" yaml:"-"`
}

// SetExtra stores a scalar value under an unknown field name.
func (p *Place) SetExtra(key, value string) {
	if p.Extra == nil {
		p.Extra = make(map[string]Node)
	}
	p.Extra[key] = Scalar(value)
}

// ExtraText returns the scalar text stored under key, if any.
func (p *Place) ExtraText(key string) (string, bool) {
	s, ok := p.Extra[key].(Scalar)
	return string(s), ok
}

// Walk visits p and every descendant depth-first, parents before children.
// Returning false from fn stops descent into that node's children.
func Walk(p *Place, fn func(p *Place, depth int) bool) {
	walk(p, 0, fn)
}

func walk(p *Place, depth int, fn func(*Place, int) bool) {
	if p == nil || !fn(p, depth) {
		return
	}
	for _, child := range p.Contains {
		walk(child, depth+1, fn)
	}
}

// Find returns the first descendant (or p itself) with the given name.
func (p *Place) Find(name string) *Place {
	var found *Place
	Walk(p, func(c *Place, _ int) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Clone returns a deep copy of p.
func (p *Place) Clone() *Place {
	if p == nil {
		return nil
	}

	c := *p
	if p.Location != nil {
		loc := *p.Location
		c.Location = &loc
	}
	if p.Extent != nil {
		ext := *p.Extent
		c.Extent = &ext
	}
	c.Boundary = append([]Coordinate(nil), p.Boundary...)
	c.Purpose = cloneStrings(p.Purpose)
	c.Character = cloneStrings(p.Character)
	c.Adjacencies = cloneStrings(p.Adjacencies)
	c.Source = cloneStrings(p.Source)
	c.Viewsheds = Viewsheds{
		Items:   cloneStrings(p.Viewsheds.Items),
		Entries: cloneMap(p.Viewsheds.Entries),
	}

	c.Experience = cloneMap(p.Experience)
	c.Connectivity = cloneMap(p.Connectivity)
	c.Temporal = cloneMap(p.Temporal)
	c.Lifespan = cloneMap(p.Lifespan)
	c.Confidence = cloneMap(p.Confidence)
	c.BuiltForm = cloneMap(p.BuiltForm)
	c.Ecology = cloneMap(p.Ecology)
	c.Infrastructure = cloneMap(p.Infrastructure)
	c.Demographics = cloneMap(p.Demographics)
	c.Economy = cloneMap(p.Economy)
	c.Visual = cloneMap(p.Visual)
	c.VerticalProfile = cloneMap(p.VerticalProfile)

	if p.History != nil {
		c.History = make([]map[string]string, len(p.History))
		for i, h := range p.History {
			c.History[i] = cloneMap(h)
		}
	}

	if p.Contains != nil {
		c.Contains = make([]*Place, len(p.Contains))
		for i, child := range p.Contains {
			c.Contains[i] = child.Clone()
		}
	}

	if p.Extra != nil {
		c.Extra = make(map[string]Node, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}

	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
