package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trailwise-ai/trailwise/internal/types"
)

func sampleTrails() []types.Trail {
	return []types.Trail{
		{Name: "Riverside Walk", Difficulty: "Easy", LengthMiles: 2.2, AverageRating: 4.6,
			Features: []string{"River", "Paved", "Wheelchair Accessible", "Kid Friendly"}},
		{Name: "Angels Landing", Difficulty: "Strenuous", LengthMiles: 5.4, AverageRating: 4.9,
			Features: []string{"Views", "Exposure", "No Dogs"}},
		{Name: "Watchman Trail", Difficulty: "Moderate", LengthMiles: 3.3, AverageRating: 4.2,
			Features: []string{"Views", "Dogs on Leash"}},
		{Name: "The Subway", Difficulty: "Strenuous", LengthMiles: 9.5, AverageRating: 4.8,
			Features: []string{"Canyoneering", "Permit Required"}},
		{Name: "Unrated Spur", Difficulty: "", LengthMiles: 1.0, AverageRating: 2.0},
	}
}

func TestFilterTrailsOutputIsSubset(t *testing.T) {
	trails := sampleTrails()
	got := FilterTrails(trails, types.DefaultPreferences())

	byName := map[string]bool{}
	for _, tr := range trails {
		byName[tr.Name] = true
	}
	for _, tr := range got {
		assert.True(t, byName[tr.Name], "filtered output must be a subset of the input")
	}
}

func TestFilterTrailsDifficultyCeiling(t *testing.T) {
	prefs := types.DefaultPreferences()
	prefs.MaxDifficulty = types.PrefDifficultyEasy
	got := FilterTrails(sampleTrails(), prefs)

	assert.Len(t, got, 1)
	assert.Equal(t, "Riverside Walk", got[0].Name)
}

func TestFilterTrailsUnknownDifficultyRanksHard(t *testing.T) {
	prefs := types.DefaultPreferences()
	prefs.MinRating = 0
	prefs.MaxDifficulty = types.PrefDifficultyModerate
	got := FilterTrails(sampleTrails(), prefs)

	for _, tr := range got {
		assert.NotEqual(t, "Unrated Spur", tr.Name, "empty difficulty must be treated as hardest")
	}
}

func TestFilterTrailsLengthAndRating(t *testing.T) {
	prefs := types.DefaultPreferences()
	prefs.MaxLengthMiles = 6
	got := FilterTrails(sampleTrails(), prefs)
	for _, tr := range got {
		assert.LessOrEqual(t, tr.LengthMiles, 6.0)
		assert.GreaterOrEqual(t, tr.AverageRating, 3.5)
	}
}

func TestFilterTrailsDogStrictOptIn(t *testing.T) {
	prefs := types.DefaultPreferences()
	prefs.DogFriendly = true
	got := FilterTrails(sampleTrails(), prefs)

	assert.Len(t, got, 1)
	assert.Equal(t, "Watchman Trail", got[0].Name)
}

func TestFilterTrailsNoDogBeatsDog(t *testing.T) {
	prefs := types.DefaultPreferences()
	prefs.DogFriendly = true
	trails := []types.Trail{
		{Name: "Mixed Signals", Difficulty: "Easy", LengthMiles: 1, AverageRating: 5,
			Features: []string{"Dogs Welcome", "No Dogs Beyond Bridge"}},
	}
	assert.Empty(t, FilterTrails(trails, prefs))
}

func TestFilterTrailsAccessibilityFlags(t *testing.T) {
	prefs := types.DefaultPreferences()
	prefs.WheelchairAccessible = true
	got := FilterTrails(sampleTrails(), prefs)
	assert.Len(t, got, 1)
	assert.Equal(t, "Riverside Walk", got[0].Name)

	prefs = types.DefaultPreferences()
	prefs.KidFriendly = true
	got = FilterTrails(sampleTrails(), prefs)
	assert.Len(t, got, 1)
	assert.Equal(t, "Riverside Walk", got[0].Name)
}

func TestFilterTrailsADAVariant(t *testing.T) {
	prefs := types.DefaultPreferences()
	prefs.WheelchairAccessible = true
	trails := []types.Trail{
		{Name: "Pa'rus Trail", Difficulty: "Easy", LengthMiles: 3.5, AverageRating: 4.4,
			Features: []string{"ADA Accessible", "Paved"}},
	}
	got := FilterTrails(trails, prefs)
	assert.Len(t, got, 1)
}

func TestFilterTrailsPure(t *testing.T) {
	trails := sampleTrails()
	before := make([]types.Trail, len(trails))
	copy(before, trails)

	FilterTrails(trails, types.DefaultPreferences())
	assert.Equal(t, before, trails, "input slice must not be mutated")
}
