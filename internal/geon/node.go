package geon

// Node is the untyped parse tree produced by the block parser.
//
// The set of implementations is closed: Scalar, List, *Map and Attributed.
// Code switching on a Node handles exactly these four.
type Node interface {
	node()
}

// Scalar is a single text value.
type Scalar string

// List is an ordered block of "- " items.
type List []Node

// Attributed is a bare list item carrying a block of fields beneath it:
//
//	- Rotunda
//	  distance: 200m
type Attributed struct {
	Text   string
	Fields *Map
}

func (Scalar) node()     {}
func (List) node()       {}
func (*Map) node()       {}
func (Attributed) node() {}

// Map is a block of key: value lines. Keys keep their first position; a
// repeated key replaces the earlier value.
type Map struct {
	keys   []string
	values map[string]Node
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]Node)}
}

// Set stores v under key.
func (m *Map) Set(key string, v Node) {
	if m.values == nil {
		m.values = make(map[string]Node)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the node stored under key.
func (m *Map) Get(key string) (Node, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in source order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Merge copies every entry of other into m, skipping keys m already holds.
func (m *Map) Merge(other *Map) {
	for _, k := range other.Keys() {
		if _, ok := m.values[k]; ok {
			continue
		}
		v, _ := other.Get(k)
		m.Set(k, v)
	}
}
