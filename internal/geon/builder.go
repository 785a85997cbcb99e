package geon

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	errNotNumeric = errors.New("not a number")
	errArity      = errors.New("wrong number of components")
)

// buildPlace maps a parsed block onto a Place through the field table.
// Unknown keys land in Extra unchanged.
func (p *Parser) buildPlace(raw *Map) *Place {
	place := &Place{}

	for _, key := range raw.Keys() {
		n, _ := raw.Get(key)

		i, known := fieldIndex[key]
		if !known {
			if place.Extra == nil {
				place.Extra = make(map[string]Node)
			}
			place.Extra[key] = n
			continue
		}

		p.applyField(place, &fieldTable[i], n)
	}

	return place
}

func (p *Parser) applyField(place *Place, f *fieldSpec, n Node) {
	switch f.kind {
	case kindText:
		if s, ok := p.scalarText(f.key, n); ok {
			*f.text(place) = s
		}

	case kindList:
		*f.list(place) = p.stringList(f.key, n)

	case kindMap:
		if m := p.stringMap(f.key, n); len(m) > 0 {
			*f.dict(place) = m
		}

	case kindLocation:
		s, ok := p.scalarText(f.key, n)
		if !ok || s == "" {
			return
		}
		c, err := ParseCoordinate(s)
		if err != nil {
			p.fieldError(f.key, s, err.Error())
			return
		}
		place.Location = &c

	case kindExtent:
		s, ok := p.scalarText(f.key, n)
		if !ok || s == "" {
			return
		}
		e, err := ParseExtent(s)
		if err != nil {
			p.fieldError(f.key, s, err.Error())
			return
		}
		place.Extent = &e

	case kindBoundary:
		place.Boundary = p.boundary(n)

	case kindContains:
		place.Contains = p.children(n)

	case kindViewsheds:
		place.Viewsheds = p.viewsheds(n)

	case kindHistory:
		place.History = p.history(n)
	}
}

// scalarText reads a single text value. A key with an empty block reads as
// the empty string.
func (p *Parser) scalarText(field string, n Node) (string, bool) {
	switch v := n.(type) {
	case Scalar:
		return string(v), true
	case List:
		if len(v) == 0 {
			return "", true
		}
		p.fieldError(field, "", "expected a single value, found a list")
	case *Map:
		p.fieldError(field, "", "expected a single value, found a block")
	case Attributed:
		p.fieldError(field, v.Text, "expected a single value")
	}
	return "", false
}

// stringList reads an ordered list; a lone scalar is a one item list.
func (p *Parser) stringList(field string, n Node) []string {
	switch v := n.(type) {
	case Scalar:
		return []string{string(v)}
	case List:
		var out []string
		for _, item := range v {
			switch it := item.(type) {
			case Scalar:
				out = append(out, string(it))
			case Attributed:
				p.fieldError(field, it.Text, "attached fields dropped")
				out = append(out, it.Text)
			case *Map, List:
				p.fieldError(field, "", "nested block in list dropped")
			}
		}
		return out
	case *Map:
		p.fieldError(field, "", "expected a list, found a block")
	case Attributed:
		p.fieldError(field, v.Text, "expected a list")
	}
	return nil
}

// stringMap reads a block of key: value pairs.
func (p *Parser) stringMap(field string, n Node) map[string]string {
	switch v := n.(type) {
	case *Map:
		return p.flattenMap(field, v)
	case List:
		if len(v) > 0 {
			p.fieldError(field, "", "expected key: value pairs, found a list")
		}
	case Scalar:
		p.fieldError(field, string(v), "expected key: value pairs")
	case Attributed:
		p.fieldError(field, v.Text, "expected key: value pairs")
	}
	return nil
}

func (p *Parser) flattenMap(field string, m *Map) map[string]string {
	out := make(map[string]string, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		s, ok := flatten(v)
		if !ok {
			p.fieldError(field+"."+k, "", "nested block dropped")
			continue
		}
		out[k] = s
	}
	return out
}

// flatten reduces a node to one line of text: scalars as is, lists of
// scalars joined with commas.
func flatten(n Node) (string, bool) {
	switch v := n.(type) {
	case Scalar:
		return string(v), true
	case List:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(Scalar)
			if !ok {
				return "", false
			}
			parts = append(parts, string(s))
		}
		return strings.Join(parts, ", "), true
	case *Map, Attributed:
		return "", false
	}
	return "", false
}

// boundary drops entries that are not coordinates and keeps the rest.
func (p *Parser) boundary(n Node) []Coordinate {
	var texts []string
	switch v := n.(type) {
	case Scalar:
		texts = []string{string(v)}
	case List:
		for _, item := range v {
			switch it := item.(type) {
			case Scalar:
				texts = append(texts, string(it))
			case Attributed:
				texts = append(texts, it.Text)
			case *Map, List:
				p.fieldError(KeyBoundary, "", "nested block in boundary dropped")
			}
		}
	case *Map:
		p.fieldError(KeyBoundary, "", "expected a list of coordinates")
	case Attributed:
		texts = []string{v.Text}
	}

	var out []Coordinate
	for _, s := range texts {
		c, err := ParseCoordinate(s)
		if err != nil {
			p.fieldError(KeyBoundary, s, err.Error())
			continue
		}
		out = append(out, c)
	}
	return out
}

// children rebuilds CONTAINS: blocks become full places, bare names become
// placeholders carrying only the name.
func (p *Parser) children(n Node) []*Place {
	switch v := n.(type) {
	case Scalar:
		return []*Place{{Name: string(v)}}
	case *Map:
		return []*Place{p.buildPlace(v)}
	case Attributed:
		return []*Place{p.attributedPlace(v)}
	case List:
		var out []*Place
		for _, item := range v {
			switch it := item.(type) {
			case Scalar:
				out = append(out, &Place{Name: string(it)})
			case *Map:
				out = append(out, p.buildPlace(it))
			case Attributed:
				out = append(out, p.attributedPlace(it))
			case List:
				p.fieldError(KeyContains, "", "nested list dropped")
			}
		}
		return out
	}
	return nil
}

func (p *Parser) attributedPlace(a Attributed) *Place {
	child := p.buildPlace(a.Fields)
	if child.Name == "" {
		child.Name = a.Text
	}
	return child
}

func (p *Parser) viewsheds(n Node) Viewsheds {
	switch v := n.(type) {
	case *Map:
		return Viewsheds{Entries: p.flattenMap(KeyViewsheds, v)}
	case List, Scalar, Attributed:
		return Viewsheds{Items: p.stringList(KeyViewsheds, v)}
	}
	return Viewsheds{}
}

// history reads a list of entries, each a block of key: value pairs. A single
// pair written inline on the marker line counts as an entry too.
func (p *Parser) history(n Node) []map[string]string {
	list, ok := n.(List)
	if !ok {
		if m, isMap := n.(*Map); isMap {
			list = List{m}
		} else {
			list = List{n}
		}
	}

	var out []map[string]string
	for _, item := range list {
		switch it := item.(type) {
		case *Map:
			out = append(out, p.flattenMap(KeyHistory, it))
		case Scalar:
			k, v, isPair := splitKeyValue(string(it))
			if !isPair {
				p.fieldError(KeyHistory, string(it), "entry is not key: value")
				continue
			}
			out = append(out, map[string]string{k: v})
		case Attributed:
			p.fieldError(KeyHistory, it.Text, "entry text dropped")
			out = append(out, p.flattenMap(KeyHistory, it.Fields))
		case List:
			p.fieldError(KeyHistory, "", "nested list dropped")
		}
	}
	return out
}

// ParseCoordinate parses "<lat>, <lon>".
func ParseCoordinate(s string) (Coordinate, error) {
	v, err := parseFloats(s, 2)
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Lat: v[0], Lon: v[1]}, nil
}

// ParseExtent parses "<north>, <south>, <east>, <west>". Any bad component
// rejects the whole extent.
func ParseExtent(s string) (Extent, error) {
	v, err := parseFloats(s, 4)
	if err != nil {
		return Extent{}, err
	}
	return Extent{North: v[0], South: v[1], East: v[2], West: v[3]}, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errArity
	}

	out := make([]float64, n)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errNotNumeric
		}
		out[i] = f
	}
	return out, nil
}
