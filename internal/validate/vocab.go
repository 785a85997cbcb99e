package validate

// PlaceTypes is the controlled vocabulary for TYPE.
var PlaceTypes = []string{
	"public_space",
	"street",
	"building",
	"transport_hub",
	"infrastructure",
	"natural_feature",
	"district",
	"landmark",
	"threshold",
	"hybrid",
}

// Ordinal scales for experiential qualities, lowest first.
var (
	FiveScale            = []string{"very_low", "low", "medium", "high", "very_high"}
	NoiseScale           = []string{"very_quiet", "quiet", "moderate", "loud", "very_loud"}
	ComplexityScale      = []string{"very_simple", "simple", "moderate", "complex", "very_complex"}
	AirQualityScale      = []string{"very_poor", "poor", "moderate", "good", "very_good"}
	ActivityDensityScale = []string{"deserted", "sparse", "moderate", "busy", "crowded"}
	SafetyScale          = []string{"very_unsafe", "unsafe", "neutral", "safe", "very_safe"}
	TerritorialityScale  = []string{"very_private", "semi_private", "semi_public", "public", "very_public"}
	PaceScale            = []string{"very_slow", "slow", "moderate", "fast", "very_fast"}
	StabilityScale       = []string{"very_transient", "transient", "stable", "permanent", "very_permanent"}
)

// ExperienceScales maps EXPERIENCE keys to their valid values. Keys not
// listed are free form.
var ExperienceScales = map[string][]string{
	// spatial
	"openness":     FiveScale,
	"enclosure":    FiveScale,
	"permeability": FiveScale,
	"legibility":   FiveScale,
	// sensory
	"noise_level":       NoiseScale,
	"visual_complexity": ComplexityScale,
	"air_quality":       AirQualityScale,
	// social
	"activity_density": ActivityDensityScale,
	"social_diversity": FiveScale,
	"sense_of_safety":  SafetyScale,
	"territoriality":   TerritorialityScale,
	// temporal
	"pace":               PaceScale,
	"temporal_stability": StabilityScale,
}

// PurposeCategories groups the suggested PURPOSE values.
var PurposeCategories = map[string][]string{
	"Economic":     {"commerce", "retail", "services", "production", "agriculture"},
	"Civic":        {"governance", "community", "education", "health", "emergency"},
	"Social":       {"gathering", "celebration", "protest", "exchange", "encounter"},
	"Cultural":     {"arts", "heritage", "performance", "exhibition", "worship"},
	"Recreational": {"play", "sport", "leisure", "contemplation", "exercise"},
	"Residential":  {"dwelling", "sleeping", "domesticity"},
	"Circulation":  {"movement", "waiting", "transition", "parking"},
	"Ecological":   {"habitat", "biodiversity", "environmental services"},
}

// PurposeCategory returns the category of a purpose value, matching on the
// text before any qualifier: "retail (fresh food)" is Economic.
func PurposeCategory(purpose string) (string, bool) {
	base := baseValue(purpose)
	for category, values := range PurposeCategories {
		if contains(values, base) {
			return category, true
		}
	}
	return "", false
}

func contains(list []string, v string) bool {
	for _, it := range list {
		if it == v {
			return true
		}
	}
	return false
}
