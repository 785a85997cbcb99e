package geon

// Field keys.
const (
	KeyPlace           = "PLACE"
	KeyType            = "TYPE"
	KeyID              = "ID"
	KeyLocation        = "LOCATION"
	KeyBoundary        = "BOUNDARY"
	KeyExtent          = "EXTENT"
	KeyElevation       = "ELEVATION"
	KeyArea            = "AREA"
	KeyPurpose         = "PURPOSE"
	KeyExperience      = "EXPERIENCE"
	KeyCharacter       = "CHARACTER"
	KeyAdjacencies     = "ADJACENCIES"
	KeyConnectivity    = "CONNECTIVITY"
	KeyContains        = "CONTAINS"
	KeyPartOf          = "PART_OF"
	KeyViewsheds       = "VIEWSHEDS"
	KeyTemporal        = "TEMPORAL"
	KeyLifespan        = "LIFESPAN"
	KeySource          = "SOURCE"
	KeyConfidence      = "CONFIDENCE"
	KeyUpdated         = "UPDATED"
	KeyBuiltForm       = "BUILT_FORM"
	KeyEcology         = "ECOLOGY"
	KeyInfrastructure  = "INFRASTRUCTURE"
	KeyDemographics    = "DEMOGRAPHICS"
	KeyEconomy         = "ECONOMY"
	KeyVisual          = "VISUAL"
	KeyVerticalProfile = "VERTICAL_PROFILE"
	KeyHistory         = "HISTORY"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindList
	kindMap
	kindLocation
	kindBoundary
	kindExtent
	kindContains
	kindViewsheds
	kindHistory
)

// fieldSpec binds a key to the Place field it fills. Only the accessor
// matching kind is set.
type fieldSpec struct {
	key      string
	kind     fieldKind
	identity bool // emitted at top level even when empty

	text func(*Place) *string
	list func(*Place) *[]string
	dict func(*Place) *map[string]string
}

// fieldTable lists the known fields in emission order: identity, geometry,
// semantic, relational, temporal, provenance, extended.
var fieldTable = []fieldSpec{
	{key: KeyPlace, kind: kindText, identity: true, text: func(p *Place) *string { return &p.Name }},
	{key: KeyType, kind: kindText, identity: true, text: func(p *Place) *string { return &p.Type }},
	{key: KeyID, kind: kindText, text: func(p *Place) *string { return &p.ID }},

	{key: KeyLocation, kind: kindLocation},
	{key: KeyBoundary, kind: kindBoundary},
	{key: KeyExtent, kind: kindExtent},
	{key: KeyElevation, kind: kindText, text: func(p *Place) *string { return &p.Elevation }},
	{key: KeyArea, kind: kindText, text: func(p *Place) *string { return &p.Area }},

	{key: KeyPurpose, kind: kindList, list: func(p *Place) *[]string { return &p.Purpose }},
	{key: KeyExperience, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.Experience }},
	{key: KeyCharacter, kind: kindList, list: func(p *Place) *[]string { return &p.Character }},

	{key: KeyAdjacencies, kind: kindList, list: func(p *Place) *[]string { return &p.Adjacencies }},
	{key: KeyConnectivity, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.Connectivity }},
	{key: KeyContains, kind: kindContains},
	{key: KeyPartOf, kind: kindText, text: func(p *Place) *string { return &p.PartOf }},
	{key: KeyViewsheds, kind: kindViewsheds},

	{key: KeyTemporal, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.Temporal }},
	{key: KeyLifespan, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.Lifespan }},

	{key: KeySource, kind: kindList, list: func(p *Place) *[]string { return &p.Source }},
	{key: KeyConfidence, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.Confidence }},
	{key: KeyUpdated, kind: kindText, text: func(p *Place) *string { return &p.Updated }},

	{key: KeyBuiltForm, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.BuiltForm }},
	{key: KeyEcology, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.Ecology }},
	{key: KeyInfrastructure, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.Infrastructure }},
	{key: KeyDemographics, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.Demographics }},
	{key: KeyEconomy, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.Economy }},
	{key: KeyVisual, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.Visual }},
	{key: KeyVerticalProfile, kind: kindMap, dict: func(p *Place) *map[string]string { return &p.VerticalProfile }},
	{key: KeyHistory, kind: kindHistory},
}

var fieldIndex = func() map[string]int {
	idx := make(map[string]int, len(fieldTable))
	for i, f := range fieldTable {
		idx[f.key] = i
	}
	return idx
}()

// IsKnownField reports whether key is one of the fixed GEON fields.
func IsKnownField(key string) bool {
	_, ok := fieldIndex[key]
	return ok
}

// FieldKeys returns the known field keys in emission order.
func FieldKeys() []string {
	keys := make([]string, len(fieldTable))
	for i, f := range fieldTable {
		keys[i] = f.key
	}
	return keys
}
