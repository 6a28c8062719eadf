package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwise-ai/trailwise/internal/types"
)

func TestRankingKey(t *testing.T) {
	assert.Equal(t, rankingKey("Vernal Falls"), rankingKey("Vernal Fall Trail"))
	assert.Equal(t, rankingKey("Angels Landing via West Rim Trail"), rankingKey("Angels Landing"))
	assert.Equal(t, rankingKey("The Narrows"), rankingKey("Narrows"))
	assert.NotEqual(t, rankingKey("Emerald Pools"), rankingKey("Weeping Rock"))
}

func TestMergeRankingsFillsAndNamespaces(t *testing.T) {
	trails := []types.Trail{
		{Name: "Angels Landing Trail", ParkCode: "zion", Difficulty: types.DifficultyStrenuous},
	}
	rankings := []types.Ranking{
		{
			Rank:        1,
			Name:        "Angels Landing via West Rim Trail",
			URL:         "https://www.alltrails.com/trail/angels-landing",
			Difficulty:  "Hard",
			LengthMiles: 5.4,
			ElevationFt: 1827,
			ReviewsURL:  "https://www.alltrails.com/trail/angels-landing/reviews",
		},
	}

	merged, appended := mergeRankings(trails, rankings, "zion")
	require.Len(t, merged, 1)
	assert.Zero(t, appended)

	got := merged[0]
	assert.Equal(t, 1, got.PopularityRank)
	assert.Equal(t, "https://www.alltrails.com/trail/angels-landing", got.AllTrailsURL)
	assert.Equal(t, "Hard", got.AllTrailsDifficulty)
	assert.Equal(t, 5.4, got.AllTrailsLength)
	assert.Equal(t, 1827.0, got.AllTrailsElevation)
	assert.Equal(t, "https://www.alltrails.com/trail/angels-landing/reviews", got.ReviewsURL)
	// Local fields only fill when missing.
	assert.Equal(t, types.DifficultyStrenuous, got.Difficulty)
	assert.Equal(t, 5.4, got.LengthMiles)
}

func TestMergeRankingsAppendsUnmatched(t *testing.T) {
	trails := []types.Trail{{Name: "Watchman Trail", ParkCode: "zion"}}
	rankings := []types.Ranking{
		{Rank: 2, Name: "The Narrows Riverside Walk", Difficulty: "Easy", LengthMiles: 1.9},
	}

	merged, appended := mergeRankings(trails, rankings, "zion")
	require.Len(t, merged, 2)
	assert.Equal(t, 1, appended)
	assert.Equal(t, "The Narrows Riverside Walk", merged[1].Name)
	assert.Equal(t, "zion", merged[1].ParkCode)
	assert.Equal(t, types.DifficultyEasy, merged[1].Difficulty)
	assert.Equal(t, 2, merged[1].PopularityRank)
}

func TestNormalizeDashes(t *testing.T) {
	assert.Equal(t, "2-4 hours", normalizeDashes("2–4 hours"))
	assert.Equal(t, "1-2 hours", normalizeDashes("1—2 hours"))
	assert.Equal(t, "3-5 hours", normalizeDashes("3-5 hours"))
}
