package geon

import (
	"io"
	"sort"
	"strings"
)

const indentUnit = "  "

// Generate serializes p to canonical GEON text.
//
// Fields are emitted in a fixed order, empty fields are omitted, single item
// lists are written inline and map entries are sorted by key, so equal trees
// always produce identical text. Children in CONTAINS are written with their
// complete field set.
func Generate(p *Place) string {
	var g generator
	g.place(p, 0)
	return g.buf.String()
}

// GenerateMany serializes several documents separated by a blank line.
func GenerateMany(places []*Place) string {
	var g generator
	for i, p := range places {
		if i > 0 {
			g.buf.WriteByte('\n')
		}
		g.place(p, 0)
	}
	return g.buf.String()
}

// Write serializes p to w.
func Write(w io.Writer, p *Place) error {
	_, err := io.WriteString(w, Generate(p))
	return err
}

type generator struct {
	buf strings.Builder
}

// place writes the field block of p at depth. The top level block always
// carries identity; nested blocks get PLACE from their list marker.
func (g *generator) place(p *Place, depth int) {
	if p == nil {
		p = &Place{}
	}
	nested := depth > 0

	for i := range fieldTable {
		f := &fieldTable[i]
		if nested && f.key == KeyPlace {
			continue
		}

		switch f.kind {
		case kindText:
			v := *f.text(p)
			if v != "" || (f.identity && !nested) {
				g.line(f.key, v, depth)
			}

		case kindList:
			g.list(f.key, *f.list(p), depth)

		case kindMap:
			g.dict(f.key, *f.dict(p), depth)

		case kindLocation:
			if p.Location != nil {
				g.line(f.key, p.Location.String(), depth)
			}

		case kindExtent:
			if p.Extent != nil {
				g.line(f.key, p.Extent.String(), depth)
			}

		case kindBoundary:
			items := make([]string, len(p.Boundary))
			for j, c := range p.Boundary {
				items[j] = c.String()
			}
			g.list(f.key, items, depth)

		case kindContains:
			g.children(p.Contains, depth)

		case kindViewsheds:
			if len(p.Viewsheds.Items) > 0 {
				g.list(f.key, p.Viewsheds.Items, depth)
			} else {
				g.dict(f.key, p.Viewsheds.Entries, depth)
			}

		case kindHistory:
			g.history(p.History, depth)
		}
	}

	g.extra(p.Extra, depth)
}

func (g *generator) children(children []*Place, depth int) {
	if len(children) == 0 {
		return
	}
	g.header(KeyContains, depth)
	for _, child := range children {
		if child == nil {
			continue
		}
		g.item(KeyPlace+": "+oneLine(child.Name), depth+1)
		g.place(child, depth+2)
	}
}

func (g *generator) history(entries []map[string]string, depth int) {
	var nonEmpty []map[string]string
	for _, e := range entries {
		if len(e) > 0 {
			nonEmpty = append(nonEmpty, e)
		}
	}
	if len(nonEmpty) == 0 {
		return
	}

	g.header(KeyHistory, depth)
	for _, e := range nonEmpty {
		keys := sortedKeys(e)
		g.item(keys[0]+": "+oneLine(e[keys[0]]), depth+1)
		for _, k := range keys[1:] {
			g.line(k, e[k], depth+2)
		}
	}
}

// list writes a list section; a single item collapses to one inline line.
func (g *generator) list(key string, items []string, depth int) {
	switch len(items) {
	case 0:
		return
	case 1:
		g.line(key, items[0], depth)
		return
	}
	g.header(key, depth)
	for _, it := range items {
		g.item(oneLine(it), depth+1)
	}
}

func (g *generator) dict(key string, m map[string]string, depth int) {
	if len(m) == 0 {
		return
	}
	g.header(key, depth)
	for _, k := range sortedKeys(m) {
		g.line(k, m[k], depth+1)
	}
}

// extra re-emits unknown fields after the known ones, sorted by key. Keys
// that collide with a known field are never written.
func (g *generator) extra(extra map[string]Node, depth int) {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !IsKnownField(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		g.node(k, extra[k], depth)
	}
}

// node writes an untyped value under key in the shape it was parsed from.
func (g *generator) node(key string, n Node, depth int) {
	switch v := n.(type) {
	case Scalar:
		g.line(key, string(v), depth)
	case List:
		if len(v) == 0 {
			return
		}
		g.header(key, depth)
		for _, it := range v {
			g.listNode(it, depth+1)
		}
	case *Map:
		if v.Len() == 0 {
			return
		}
		g.header(key, depth)
		g.mapNode(v, depth+1)
	case Attributed:
		g.header(key, depth)
		g.listNode(v, depth+1)
	}
}

func (g *generator) mapNode(m *Map, depth int) {
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		g.node(k, v, depth)
	}
}

// listNode writes one list entry. A block entry puts its first scalar pair on
// the marker line and the rest beneath it.
func (g *generator) listNode(n Node, depth int) {
	switch v := n.(type) {
	case Scalar:
		g.item(oneLine(string(v)), depth)
	case Attributed:
		g.item(oneLine(v.Text), depth)
		g.mapNode(v.Fields, depth+1)
	case *Map:
		lead := ""
		for _, k := range v.Keys() {
			if s, ok := mustGet(v, k).(Scalar); ok {
				lead = k
				g.item(k+": "+oneLine(string(s)), depth)
				break
			}
		}
		if lead == "" {
			g.item("", depth)
		}
		for _, k := range v.Keys() {
			if k != lead {
				g.node(k, mustGet(v, k), depth+1)
			}
		}
	case List:
		for _, it := range v {
			g.listNode(it, depth)
		}
	}
}

func mustGet(m *Map, key string) Node {
	v, _ := m.Get(key)
	return v
}

func (g *generator) line(key, value string, depth int) {
	g.indent(depth)
	g.buf.WriteString(key)
	g.buf.WriteByte(':')
	if value = oneLine(value); value != "" {
		g.buf.WriteByte(' ')
		g.buf.WriteString(value)
	}
	g.buf.WriteByte('\n')
}

func (g *generator) header(key string, depth int) {
	g.indent(depth)
	g.buf.WriteString(key)
	g.buf.WriteString(":\n")
}

func (g *generator) item(text string, depth int) {
	g.indent(depth)
	if text == "" {
		g.buf.WriteString("-\n")
		return
	}
	g.buf.WriteString(listMarker)
	g.buf.WriteString(text)
	g.buf.WriteByte('\n')
}

func (g *generator) indent(depth int) {
	for i := 0; i < depth; i++ {
		g.buf.WriteString(indentUnit)
	}
}

// oneLine keeps values on a single line; the format has no continuation.
func oneLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
