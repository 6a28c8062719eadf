package types

// Response types the coordinator may produce. The set is closed; anything
// else from the model falls back to ResponseGeneralChat.
const (
	ResponseItinerary    = "itinerary"
	ResponseListOptions  = "list_options"
	ResponseSafetyInfo   = "safety_info"
	ResponseGeneralChat  = "general_chat"
	ResponseReviews      = "reviews"
	ResponseEntityLookup = "entity_lookup"
)

// ValidResponseType reports membership in the closed response-type set.
func ValidResponseType(rt string) bool {
	switch rt {
	case ResponseItinerary, ResponseListOptions, ResponseSafetyInfo,
		ResponseGeneralChat, ResponseReviews, ResponseEntityLookup:
		return true
	}
	return false
}

// Difficulty preference levels accepted from users (lowercase).
const (
	PrefDifficultyEasy     = "easy"
	PrefDifficultyModerate = "moderate"
	PrefDifficultyHard     = "hard"
)

// UserPreference captures the user's trail constraints. Zero values are not
// meaningful; use DefaultPreferences and merge partial fields onto it.
type UserPreference struct {
	MaxDifficulty        string  `json:"max_difficulty"`
	MinRating            float64 `json:"min_rating"`
	MaxLengthMiles       float64 `json:"max_length_miles"`
	DogFriendly          bool    `json:"dog_friendly"`
	KidFriendly          bool    `json:"kid_friendly"`
	WheelchairAccessible bool    `json:"wheelchair_accessible"`
}

// DefaultPreferences returns the permissive defaults: any difficulty,
// decent rating floor, generous length cap, no accessibility flags.
func DefaultPreferences() UserPreference {
	return UserPreference{
		MaxDifficulty:  PrefDifficultyHard,
		MinRating:      3.5,
		MaxLengthMiles: 20,
	}
}

// IsDefault reports whether the preferences are exactly the defaults. The
// orchestrator's relaxation rule keys off this.
func (p UserPreference) IsDefault() bool {
	return p == DefaultPreferences()
}

// Intent is the structured representation of a user turn produced by the
// coordinator worker.
type Intent struct {
	UserPrefs     UserPreference `json:"user_prefs"`
	ParkCode      string         `json:"park_code,omitempty"`
	DurationDays  int            `json:"duration_days"`
	ResponseType  string         `json:"response_type"`
	ReviewTargets []string       `json:"review_targets,omitempty"`
	RawQuery      string         `json:"raw_query"`
}

// FallbackIntent is the safe default returned when intent parsing fails.
func FallbackIntent(query string) Intent {
	return Intent{
		UserPrefs:    DefaultPreferences(),
		DurationDays: 1,
		ResponseType: ResponseGeneralChat,
		RawQuery:     query,
	}
}
