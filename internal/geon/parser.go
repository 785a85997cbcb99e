package geon

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// listMarker prefixes every list item.
const listMarker = "- "

// Parser turns GEON text into Place trees.
//
// Malformed input never fails a parse: offending lines are skipped and
// unusable values leave their field unset. Each such recovery is kept as a
// diagnostic and traced on Logger. A Parser is not safe for concurrent use;
// the package level functions create one per call.
type Parser struct {
	Logger zerolog.Logger

	lines []Line
	diags []error
}

// NewParser returns a Parser tracing recoveries to logger.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{Logger: logger}
}

// Parse parses a single GEON document. It never fails; for empty input the
// result is a default valued Place.
func Parse(text string) *Place {
	return NewParser(zerolog.Nop()).Parse(text)
}

// ParseStrict parses text like Parse and additionally reports every
// recovery as an error. The returned Place is the same one Parse builds.
func ParseStrict(text string) (*Place, error) {
	p := NewParser(zerolog.Nop())
	place := p.Parse(text)
	return place, errors.Join(p.diags...)
}

// ParseMany parses text holding several documents, each starting with a
// top level PLACE line.
func ParseMany(text string) []*Place {
	return NewParser(zerolog.Nop()).ParseMany(text)
}

// Diagnostics returns the recoveries made by the last Parse or ParseMany.
func (p *Parser) Diagnostics() []error {
	return append([]error(nil), p.diags...)
}

// Parse parses a single GEON document.
func (p *Parser) Parse(text string) *Place {
	p.lines = Tokenize(text)
	p.diags = nil

	if len(p.lines) == 0 {
		return &Place{}
	}

	raw, _ := p.parseBlock(0, len(p.lines), minIndent(p.lines))
	return p.buildPlace(raw)
}

// ParseMany parses a multi document text.
func (p *Parser) ParseMany(text string) []*Place {
	p.lines = Tokenize(text)
	p.diags = nil

	if len(p.lines) == 0 {
		return nil
	}

	base := minIndent(p.lines)
	var places []*Place
	start := 0
	for i := 1; i <= len(p.lines); i++ {
		if i < len(p.lines) && !startsDocument(p.lines[i], base) {
			continue
		}
		raw, _ := p.parseBlock(start, i, base)
		places = append(places, p.buildPlace(raw))
		start = i
	}

	return places
}

func startsDocument(ln Line, base int) bool {
	if ln.Indent != base {
		return false
	}
	key, _, ok := splitKeyValue(ln.Content)
	return ok && key == KeyPlace
}

// parseBlock consumes the lines in [i, end) sitting at base indentation and
// returns them as a Map, stopping at the first line indented less than base.
func (p *Parser) parseBlock(i, end, base int) (*Map, int) {
	m := NewMap()

	for i < end {
		ln := p.lines[i]
		if ln.Indent < base {
			break
		}
		if ln.Indent > base {
			p.skip(ln, "unexpected indentation")
			i++
			continue
		}
		if isListItem(ln.Content) {
			p.skip(ln, "list item outside a list block")
			i++
			continue
		}

		key, value, ok := splitKeyValue(ln.Content)
		if !ok {
			p.skip(ln, "expected key: value")
			i++
			continue
		}

		if value != "" {
			m.Set(key, Scalar(value))
			i++
			continue
		}

		// The block indent is whatever the next line uses.
		childIndent := base + 1
		if i+1 < end && p.lines[i+1].Indent > base {
			childIndent = p.lines[i+1].Indent
		}

		var child Node
		child, i = p.collectChildren(i+1, end, childIndent)
		m.Set(key, child)
	}

	return m, i
}

// collectChildren parses the block introduced by a key with no inline value.
// The first line decides whether the block is a list or a map.
func (p *Parser) collectChildren(i, end, indent int) (Node, int) {
	if i >= end || p.lines[i].Indent < indent {
		return List{}, i
	}

	if isListItem(p.lines[i].Content) {
		return p.parseList(i, end, indent)
	}

	return p.parseBlock(i, end, indent)
}

func (p *Parser) parseList(i, end, indent int) (List, int) {
	items := List{}

	for i < end {
		ln := p.lines[i]
		if ln.Indent < indent {
			break
		}
		if ln.Indent > indent {
			p.skip(ln, "unexpected indentation")
			i++
			continue
		}
		if !isListItem(ln.Content) {
			p.skip(ln, "missing list marker")
			i++
			continue
		}

		// Everything indented past the marker belongs to this item.
		j := i + 1
		for j < end && p.lines[j].Indent > indent {
			j++
		}

		text := strings.TrimSpace(strings.TrimPrefix(ln.Content, "-"))
		items = append(items, p.listItem(text, i+1, j, indent))
		i = j
	}

	return items, i
}

// listItem builds one list entry from its marker text and the descendant
// lines in [from, to).
func (p *Parser) listItem(text string, from, to, indent int) Node {
	key, value, isPair := splitKeyValue(text)
	hasFields := to > from

	switch {
	case isPair && key == KeyPlace:
		fieldIndent := indent + 2
		if hasFields {
			fieldIndent = p.lines[from].Indent
		}
		m := NewMap()
		m.Set(key, Scalar(value))
		if hasFields {
			m.Merge(p.fields(from, to, fieldIndent))
		}
		return m

	case isPair && hasFields:
		m := NewMap()
		m.Set(key, Scalar(value))
		m.Merge(p.fields(from, to, p.lines[from].Indent))
		return m

	case hasFields:
		return Attributed{Text: text, Fields: p.fields(from, to, p.lines[from].Indent)}

	default:
		return Scalar(text)
	}
}

// fields parses the descendants of a list item. Lines left over because they
// sit shallower than the first descendant are skipped.
func (p *Parser) fields(from, to, indent int) *Map {
	m, next := p.parseBlock(from, to, indent)
	for ; next < to; next++ {
		p.skip(p.lines[next], "unexpected indentation")
	}
	return m
}

func (p *Parser) skip(ln Line, reason string) {
	p.Logger.Debug().
		Int("line", ln.Number).
		Str("content", ln.Content).
		Str("reason", reason).
		Msg("Skipped line")

	p.diags = append(p.diags, &SyntaxError{Line: ln.Number, Content: ln.Content, Reason: reason})
}

func (p *Parser) fieldError(field, value, reason string) {
	p.Logger.Debug().
		Str("field", field).
		Str("value", value).
		Str("reason", reason).
		Msg("Field left unset")

	p.diags = append(p.diags, &FieldError{Field: field, Value: value, Reason: reason})
}

// splitKeyValue splits on the first colon. A line without a colon or with an
// empty key is not a pair.
func splitKeyValue(s string) (key, value string, ok bool) {
	k, v, found := strings.Cut(s, ":")
	if !found {
		return "", "", false
	}
	k = strings.TrimSpace(k)
	if k == "" {
		return "", "", false
	}
	return k, strings.TrimSpace(v), true
}

func isListItem(content string) bool {
	return content == "-" || strings.HasPrefix(content, listMarker)
}

func minIndent(lines []Line) int {
	m := lines[0].Indent
	for _, ln := range lines[1:] {
		if ln.Indent < m {
			m = ln.Indent
		}
	}
	return m
}
