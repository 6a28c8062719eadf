package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/trailwise-ai/trailwise/internal/types"
)

func intentPrompt(query, currentParkCode string) string {
	parkHint := "null"
	if currentParkCode != "" {
		parkHint = fmt.Sprintf("%q (the park currently being discussed; keep it unless the user names another park)", currentParkCode)
	}
	return fmt.Sprintf(`Parse the user's message for a national park trip assistant.

User message: %q
Current park context: %s

Return STRICTLY one JSON object:
{
  "park_code": "lowercase NPS park code mentioned or implied, else null",
  "duration_days": <integer number of days, 1 if unstated>,
  "response_type": "one of: itinerary, list_options, safety_info, general_chat, reviews, entity_lookup",
  "review_targets": ["exact trail or place names the user asked reviews or details about"],
  "user_prefs": {
    "max_difficulty": "easy, moderate or hard if the user constrained difficulty, else null",
    "min_rating": <number 0-5 or null>,
    "max_length_miles": <number or null>,
    "dog_friendly": <true only if the user asked for dog-friendly trails>,
    "kid_friendly": <true only if the user asked for kid-friendly trails>,
    "wheelchair_accessible": <true only if the user asked for accessible trails>
  }
}

Use "reviews" when the user wants reviews of somewhere, "entity_lookup" when
they ask about one specific named trail or place, "itinerary" for trip plans,
"safety_info" for conditions and safety, "list_options" for open-ended trail
or activity lists, otherwise "general_chat".`, query, parkHint)
}

// rawIntent mirrors the coordinator's JSON with nullable preference fields
// so partial answers can be merged onto defaults.
type rawIntent struct {
	ParkCode      *string  `json:"park_code"`
	DurationDays  *int     `json:"duration_days"`
	ResponseType  string   `json:"response_type"`
	ReviewTargets []string `json:"review_targets"`
	UserPrefs     struct {
		MaxDifficulty        *string  `json:"max_difficulty"`
		MinRating            *float64 `json:"min_rating"`
		MaxLengthMiles       *float64 `json:"max_length_miles"`
		DogFriendly          bool     `json:"dog_friendly"`
		KidFriendly          bool     `json:"kid_friendly"`
		WheelchairAccessible bool     `json:"wheelchair_accessible"`
	} `json:"user_prefs"`
}

// ParseUserIntent turns a user turn into a structured Intent via the
// coordinator worker. Any parse failure falls back to a safe general_chat
// intent with default preferences.
func (s *Service) ParseUserIntent(ctx context.Context, query, currentParkCode string) types.Intent {
	ctx, span := otel.Tracer("LLMService").Start(ctx, "ParseUserIntent")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	l := s.logger.With(slog.String("method", "ParseUserIntent"))

	response, err := s.generator.Generate(ctx, RoleCoordinator, intentPrompt(query, currentParkCode))
	if err != nil {
		l.Warn("intent generation failed, using fallback", slog.Any("error", err))
		return types.FallbackIntent(query)
	}

	var raw rawIntent
	if err := json.Unmarshal([]byte(cleanJSONResponse(response)), &raw); err != nil {
		l.Warn("intent JSON parse failed, using fallback", slog.Any("error", err))
		return types.FallbackIntent(query)
	}

	intent := types.FallbackIntent(query)
	if types.ValidResponseType(raw.ResponseType) {
		intent.ResponseType = raw.ResponseType
	}
	if raw.ParkCode != nil {
		intent.ParkCode = strings.ToLower(strings.TrimSpace(*raw.ParkCode))
	}
	if raw.DurationDays != nil && *raw.DurationDays >= 1 {
		intent.DurationDays = *raw.DurationDays
	}
	for _, target := range raw.ReviewTargets {
		if t := strings.TrimSpace(target); t != "" {
			intent.ReviewTargets = append(intent.ReviewTargets, t)
		}
	}

	prefs := types.DefaultPreferences()
	if raw.UserPrefs.MaxDifficulty != nil {
		switch strings.ToLower(*raw.UserPrefs.MaxDifficulty) {
		case types.PrefDifficultyEasy, types.PrefDifficultyModerate, types.PrefDifficultyHard:
			prefs.MaxDifficulty = strings.ToLower(*raw.UserPrefs.MaxDifficulty)
		}
	}
	if raw.UserPrefs.MinRating != nil && *raw.UserPrefs.MinRating >= 0 && *raw.UserPrefs.MinRating <= 5 {
		prefs.MinRating = *raw.UserPrefs.MinRating
	}
	if raw.UserPrefs.MaxLengthMiles != nil && *raw.UserPrefs.MaxLengthMiles > 0 {
		prefs.MaxLengthMiles = *raw.UserPrefs.MaxLengthMiles
	}
	prefs.DogFriendly = raw.UserPrefs.DogFriendly
	prefs.KidFriendly = raw.UserPrefs.KidFriendly
	prefs.WheelchairAccessible = raw.UserPrefs.WheelchairAccessible
	intent.UserPrefs = prefs

	span.SetAttributes(
		attribute.String("intent.response_type", intent.ResponseType),
		attribute.String("intent.park_code", intent.ParkCode),
	)
	return intent
}
