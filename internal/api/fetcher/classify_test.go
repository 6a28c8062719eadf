package fetcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyItem(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        bool
	}{
		{
			name:  "trail word in title",
			title: "Watchman Trail",
			want:  true,
		},
		{
			name:  "hike word in title",
			title: "Hike Angels Landing",
			want:  true,
		},
		{
			name:        "two content indicators without trail title",
			title:       "Emerald Pools",
			description: "A popular hike with some steep sections near the upper pool.",
			want:        true,
		},
		{
			name:        "one indicator is not enough",
			title:       "Court of the Patriarchs",
			description: "A short paved viewpoint reached by a 50-yard trail.",
			want:        false,
		},
		{
			name:  "infrastructure title rejected",
			title: "Visitor Center Parking",
			want:  false,
		},
		{
			name:        "shuttle stop rejected even with indicators",
			title:       "Shuttle Stop 6",
			description: "Access to the trailhead for a strenuous hike with elevation gain.",
			want:        false,
		},
		{
			name:        "drive-up overlook rejected",
			title:       "Canyon Overlook",
			description: "Panoramic views from the parking area.",
			want:        false,
		},
		{
			name:        "overlook with trail evidence accepted",
			title:       "Canyon Overlook",
			description: "A short hike along a sandstone trail with some steep drop-offs.",
			want:        true,
		},
		{
			name:  "overlook with trail word in title accepted",
			title: "Canyon Overlook Trail",
			want:  true,
		},
		{
			name:        "drive-up point rejected",
			title:       "Inspiration Point",
			description: "Views of the amphitheater from the rim.",
			want:        false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyItem(tt.title, tt.description))
		})
	}
}

func TestContainsWordIsWholeWord(t *testing.T) {
	assert.True(t, containsWord("The Watchman Trail", "trail"))
	assert.False(t, containsWord("Trailer Village", "trail"))
	assert.True(t, containsWord("about 3 miles round trip", "round trip"))
	assert.False(t, containsWord("surrounded by cliffs", "round"))
}

func TestIsHikeTitle(t *testing.T) {
	assert.True(t, isHikeTitle("Hike the Narrows"))
	assert.True(t, isHikeTitle("Rim Walk at Sunset"))
	assert.False(t, isHikeTitle("Stargazing Program"))
}

func TestClassifyMergesPlacesAndThingsByID(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	require.Contains(t, svc.EnsureParkData(context.Background(), "zion", Flags{Static: true, Trails: true}, nil).Operations, "classify_trails")

	var candidates []trailCandidate
	require.NoError(t, svc.store.LoadRaw("zion", rawTrailCandidates, &candidates))

	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Title
	}
	assert.Contains(t, names, "Watchman Trail")
	assert.Contains(t, names, "Hike Angels Landing")
	assert.NotContains(t, names, "Ride the Shuttle")
	assert.NotContains(t, names, "South Entrance")
}
