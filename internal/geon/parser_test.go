package geon

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketDoc = `PLACE: Birmingham Bullring Markets
TYPE: public_space
ID: osgb:1000000347112034
LOCATION: 52.4777, -1.8933
BOUNDARY:
  - 52.4780, -1.8940
  - 52.4780, -1.8926
  - 52.4774, -1.8926
  - 52.4780, -1.8940
AREA: 4200 sqm
ELEVATION: 142m above sea level

PURPOSE:
  - retail (fresh food, flowers, clothing)
  - social gathering

EXPERIENCE:
  openness: medium
  noise_level: loud

CONTAINS:
  - PLACE: Outdoor Market
    TYPE: public_space
    LOCATION: 52.4777, -1.8935
    PURPOSE: retail (fresh produce, flowers)
    TEMPORAL:
      trading_days: Tuesday, Thursday, Friday, Saturday
      trading_hours: 09:00-17:00

  - PLACE: Rag Market
    TYPE: building
    LOCATION: 52.4776, -1.8931

PART_OF: Digbeth and Eastside

VIEWSHEDS:
  - St Martin's Church spire (prominent, 100m west)
  - Rotunda (visible, 200m southwest)

HISTORY:
  - year: 1166
    event: market charter granted
  - year: 2000

SOURCE: OpenStreetMap (2025-01)
CONFIDENCE:
  geometry: high (OS survey)
UPDATED: 2025-01-18
`

func TestTokenize(t *testing.T) {
	lines := Tokenize("A: 1\r\n\n   \n  B: 2\n\tC: 3\n")

	require.Len(t, lines, 3)
	assert.Equal(t, Line{Number: 1, Indent: 0, Content: "A: 1"}, lines[0])
	assert.Equal(t, Line{Number: 4, Indent: 2, Content: "B: 2"}, lines[1])
	assert.Equal(t, Line{Number: 5, Indent: 1, Content: "C: 3"}, lines[2])
}

func TestParse_NestedPlace(t *testing.T) {
	p := Parse("PLACE: Parent\nCONTAINS:\n  - PLACE: Child\n    TYPE: nested\n    LOCATION: 1.0, 1.0\n")

	assert.Equal(t, "Parent", p.Name)
	require.Len(t, p.Contains, 1)

	child := p.Contains[0]
	assert.Equal(t, "Child", child.Name)
	assert.Equal(t, "nested", child.Type)
	require.NotNil(t, child.Location)
	assert.Equal(t, Coordinate{Lat: 1.0, Lon: 1.0}, *child.Location)
}

func TestParse_FullDocument(t *testing.T) {
	p := Parse(marketDoc)

	assert.Equal(t, "Birmingham Bullring Markets", p.Name)
	assert.Equal(t, "public_space", p.Type)
	assert.Equal(t, "osgb:1000000347112034", p.ID)
	assert.Equal(t, &Coordinate{Lat: 52.4777, Lon: -1.8933}, p.Location)
	assert.Len(t, p.Boundary, 4)
	assert.Equal(t, "4200 sqm", p.Area)
	assert.Equal(t, "142m above sea level", p.Elevation)

	assert.Equal(t, []string{"retail (fresh food, flowers, clothing)", "social gathering"}, p.Purpose)
	assert.Equal(t, map[string]string{"openness": "medium", "noise_level": "loud"}, p.Experience)

	require.Len(t, p.Contains, 2)
	outdoor := p.Contains[0]
	assert.Equal(t, "Outdoor Market", outdoor.Name)
	assert.Equal(t, []string{"retail (fresh produce, flowers)"}, outdoor.Purpose)
	assert.Equal(t, "09:00-17:00", outdoor.Temporal["trading_hours"])
	assert.Equal(t, "Rag Market", p.Contains[1].Name)
	assert.Equal(t, "building", p.Contains[1].Type)

	assert.Equal(t, "Digbeth and Eastside", p.PartOf)
	assert.Len(t, p.Viewsheds.Items, 2)
	assert.Empty(t, p.Viewsheds.Entries)

	assert.Equal(t, []map[string]string{
		{"year": "1166", "event": "market charter granted"},
		{"year": "2000"},
	}, p.History)

	assert.Equal(t, []string{"OpenStreetMap (2025-01)"}, p.Source)
	assert.Equal(t, "high (OS survey)", p.Confidence["geometry"])
	assert.Equal(t, "2025-01-18", p.Updated)
	assert.Empty(t, p.Extra)
}

func TestParse_InvalidCoordinateLeavesFieldUnset(t *testing.T) {
	p := Parse("PLACE: Somewhere\nLOCATION: abc, def\nAREA: 1 ha\n")

	assert.Equal(t, "Somewhere", p.Name)
	assert.Nil(t, p.Location)
	assert.Equal(t, "1 ha", p.Area)
}

func TestParseStrict_ReportsRecoveries(t *testing.T) {
	p, err := ParseStrict("PLACE: Somewhere\nLOCATION: abc, def\n    stray: line\n")
	require.Error(t, err)
	assert.Equal(t, "Somewhere", p.Name)

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, KeyLocation, fieldErr.Field)
	assert.Equal(t, "abc, def", fieldErr.Value)

	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 3, syntaxErr.Line)
}

func TestParseStrict_CleanDocument(t *testing.T) {
	_, err := ParseStrict(marketDoc)
	assert.NoError(t, err)
}

func TestParse_Extent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *Extent
	}{
		{"valid", "EXTENT: 52.5, 52.4, -1.8, -1.9", &Extent{North: 52.5, South: 52.4, East: -1.8, West: -1.9}},
		{"one bad component", "EXTENT: 52.5, x, -1.8, -1.9", nil},
		{"too few components", "EXTENT: 52.5, 52.4, -1.8", nil},
		{"not finite", "EXTENT: NaN, 52.4, -1.8, -1.9", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Parse("PLACE: X\n" + tt.in + "\n")
			assert.Equal(t, tt.want, p.Extent)
		})
	}
}

func TestParse_BoundaryDropsBadEntries(t *testing.T) {
	p := Parse("PLACE: X\nBOUNDARY:\n  - 1, 2\n  - nope\n  - 3, 4\n  - 5\n")

	assert.Equal(t, []Coordinate{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}, p.Boundary)
}

func TestParse_UnknownFieldKeptInExtra(t *testing.T) {
	p := Parse("PLACE: X\nOPENING_HOURS: Mo-Fr 09:00-17:00\nNOTES:\n  - first\n  - second\n")

	require.Contains(t, p.Extra, "OPENING_HOURS")
	assert.Equal(t, Scalar("Mo-Fr 09:00-17:00"), p.Extra["OPENING_HOURS"])
	assert.Equal(t, List{Scalar("first"), Scalar("second")}, p.Extra["NOTES"])

	hours, ok := p.ExtraText("OPENING_HOURS")
	assert.True(t, ok)
	assert.Equal(t, "Mo-Fr 09:00-17:00", hours)
}

func TestParse_ListItems(t *testing.T) {
	doc := `PLACE: X
VIEWSHEDS:
  - Rotunda
    distance: 200m
  - Castle
ADJACENCIES:
  - amenity: cafe
CONTAINS:
  - Bare Child
  - Attributed Child
    TYPE: building
`
	p := Parse(doc)

	assert.Equal(t, []string{"Rotunda", "Castle"}, p.Viewsheds.Items)
	assert.Equal(t, []string{"amenity: cafe"}, p.Adjacencies)

	require.Len(t, p.Contains, 2)
	assert.Equal(t, &Place{Name: "Bare Child"}, p.Contains[0])
	assert.Equal(t, "Attributed Child", p.Contains[1].Name)
	assert.Equal(t, "building", p.Contains[1].Type)
}

func TestParse_ViewshedsMap(t *testing.T) {
	p := Parse("PLACE: X\nVIEWSHEDS:\n  north: cathedral\n  south: river\n")

	assert.Empty(t, p.Viewsheds.Items)
	assert.Equal(t, map[string]string{"north": "cathedral", "south": "river"}, p.Viewsheds.Entries)
}

func TestParse_IndentWidthPerBlock(t *testing.T) {
	doc := `PLACE: Root
EXPERIENCE:
    openness: high
    pace: slow
CONTAINS:
 - PLACE: A
   TYPE: street
   CONTAINS:
         - PLACE: B
           LOCATION: 2, 3
 - PLACE: C
`
	p, err := ParseStrict(doc)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"openness": "high", "pace": "slow"}, p.Experience)
	require.Len(t, p.Contains, 2)
	assert.Equal(t, "street", p.Contains[0].Type)
	require.Len(t, p.Contains[0].Contains, 1)
	assert.Equal(t, "B", p.Contains[0].Contains[0].Name)
	assert.Equal(t, &Coordinate{Lat: 2, Lon: 3}, p.Contains[0].Contains[0].Location)
	assert.Equal(t, "C", p.Contains[1].Name)
}

func TestParse_MalformedLinesSkipped(t *testing.T) {
	doc := `PLACE: X
      orphan: deep
just some text
- loose item
PURPOSE:
  - one
  not an item
  - two
TYPE: park
`
	p, err := ParseStrict(doc)

	assert.Equal(t, "X", p.Name)
	assert.Equal(t, "park", p.Type)
	assert.Equal(t, []string{"one", "two"}, p.Purpose)

	var syntaxErrs int
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var se *SyntaxError
		if errors.As(e, &se) {
			syntaxErrs++
		}
	}
	assert.Equal(t, 4, syntaxErrs)
}

func TestParse_MapValueFlattening(t *testing.T) {
	p := Parse("PLACE: X\nCONNECTIVITY:\n  bus:\n    - 12\n    - 36\n  rail: none\n")

	assert.Equal(t, map[string]string{"bus": "12, 36", "rail": "none"}, p.Connectivity)
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Equal(t, &Place{}, Parse(""))
	assert.Equal(t, &Place{}, Parse("\n   \n\t\n"))
}

func TestParse_IndentedDocument(t *testing.T) {
	p := Parse("    PLACE: X\n    TYPE: park\n    PURPOSE:\n      - play\n")

	assert.Equal(t, "X", p.Name)
	assert.Equal(t, "park", p.Type)
	assert.Equal(t, []string{"play"}, p.Purpose)
}

func TestParseMany(t *testing.T) {
	doc := "PLACE: A\nTYPE: park\n\nPLACE: B\nCONTAINS:\n  - PLACE: B1\nPLACE: C\n"
	places := ParseMany(doc)

	require.Len(t, places, 3)
	assert.Equal(t, "A", places[0].Name)
	assert.Equal(t, "park", places[0].Type)
	assert.Equal(t, "B", places[1].Name)
	require.Len(t, places[1].Contains, 1)
	assert.Equal(t, "B1", places[1].Contains[0].Name)
	assert.Equal(t, "C", places[2].Name)

	assert.Nil(t, ParseMany(""))
}

func TestParser_TracesRecoveries(t *testing.T) {
	var out bytes.Buffer
	p := NewParser(zerolog.New(&out).Level(zerolog.DebugLevel))

	place := p.Parse("PLACE: X\n  stray: value\nLOCATION: 1, x\n")

	assert.Equal(t, "X", place.Name)
	assert.Len(t, p.Diagnostics(), 2)
	assert.Contains(t, out.String(), "Skipped line")
	assert.Contains(t, out.String(), "Field left unset")
}
