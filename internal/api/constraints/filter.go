// Package constraints holds the deterministic trail filtering and safety
// analysis. Everything here is a pure function of its inputs.
package constraints

import (
	"strings"

	"github.com/trailwise-ai/trailwise/internal/types"
)

// difficultyRank orders difficulties for comparison. Unknown difficulties
// rank hardest so they are only shown to users who accept hard trails.
func difficultyRank(difficulty string) int {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		return 1
	case "moderate":
		return 2
	case "hard", "strenuous":
		return 3
	default:
		return 3
	}
}

// FilterTrails returns the subset of trails satisfying every active
// predicate in prefs. The input slice is never mutated.
func FilterTrails(trails []types.Trail, prefs types.UserPreference) []types.Trail {
	maxRank := difficultyRank(prefs.MaxDifficulty)
	kept := make([]types.Trail, 0, len(trails))
	for _, t := range trails {
		if difficultyRank(t.Difficulty) > maxRank {
			continue
		}
		if t.LengthMiles > prefs.MaxLengthMiles {
			continue
		}
		if t.AverageRating < prefs.MinRating {
			continue
		}
		if prefs.DogFriendly && !allowsDogs(t) {
			continue
		}
		if prefs.KidFriendly && !hasFeature(t, "kid") {
			continue
		}
		if prefs.WheelchairAccessible && !hasFeature(t, "wheelchair") && !hasFeature(t, "ada") {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// allowsDogs is strict opt-in: the trail must carry positive dog evidence
// and no "no dog" marker. Trails with no dog evidence at all are excluded.
func allowsDogs(t types.Trail) bool {
	sawDog := false
	for _, f := range t.Features {
		lf := strings.ToLower(f)
		if strings.Contains(lf, "no dog") {
			return false
		}
		if strings.Contains(lf, "dog") {
			sawDog = true
		}
	}
	return sawDog
}

func hasFeature(t types.Trail, substr string) bool {
	for _, f := range t.Features {
		if strings.Contains(strings.ToLower(f), substr) {
			return true
		}
	}
	return false
}
