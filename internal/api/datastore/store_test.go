package datastore

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwise-ai/trailwise/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(
		filepath.Join(root, "fixtures"),
		filepath.Join(root, "cache"),
		filepath.Join(root, "raw"),
		logger,
	)
}

func TestFixtureRoundTrip(t *testing.T) {
	s := newTestStore(t)

	park := types.Park{ParkCode: "zion", FullName: "Zion National Park", Latitude: 37.29, Longitude: -113.02}
	require.NoError(t, s.SaveFixture("zion", "park_details", park))
	assert.True(t, s.HasFixture("zion", "park_details"))

	var got types.Park
	require.NoError(t, s.LoadFixture("zion", "park_details", &got))
	assert.Equal(t, park, got)
}

func TestFixtureMiss(t *testing.T) {
	s := newTestStore(t)

	var got types.Park
	err := s.LoadFixture("zion", "park_details", &got)
	assert.ErrorIs(t, err, ErrMiss)
	assert.False(t, s.HasFixture("zion", "park_details"))
}

func TestDailyCacheSameDayHit(t *testing.T) {
	s := newTestStore(t)

	weather := types.WeatherSummary{ParkCode: "zion", CurrentTempF: 88, Condition: "Sunny"}
	require.NoError(t, s.SaveDailyCache("zion", "weather", weather))

	var got types.WeatherSummary
	require.NoError(t, s.LoadDailyCache("zion", "weather", &got))
	assert.Equal(t, weather, got)
}

func TestDailyCacheExpiresOnDayRollover(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2025, 6, 10, 23, 50, 0, 0, time.Local)
	s.now = func() time.Time { return base }
	require.NoError(t, s.SaveDailyCache("zion", "weather", types.WeatherSummary{ParkCode: "zion"}))

	var got types.WeatherSummary
	require.NoError(t, s.LoadDailyCache("zion", "weather", &got))

	// Ten minutes later it is a new calendar day.
	s.now = func() time.Time { return base.Add(10 * time.Minute) }
	err := s.LoadDailyCache("zion", "weather", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestAmenitiesHubSlugging(t *testing.T) {
	s := newTestStore(t)

	amenities := map[string][]types.Amenity{
		"medical": {{Name: "Zion Clinic", Category: "medical"}},
	}
	require.NoError(t, s.SaveAmenities("zion", "South Entrance (Springdale)", amenities))
	assert.True(t, s.HasFixture("zion", "amenities_south_entrance_springdale"))

	var got map[string][]types.Amenity
	require.NoError(t, s.LoadAmenities("zion", "South Entrance (Springdale)", &got))
	assert.Len(t, got["medical"], 1)
}

func TestCorruptFixtureIsMiss(t *testing.T) {
	s := newTestStore(t)

	path := s.fixturePath("zion", "park_details")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var got types.Park
	assert.ErrorIs(t, s.LoadFixture("zion", "park_details", &got), ErrMiss)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"South Entrance":              "south_entrance",
		"Zion Canyon Visitor Center":  "zion_canyon_visitor_center",
		"East Entrance (Hwy 9)":       "east_entrance_hwy_9",
		"  Trim Me  ":                 "trim_me",
		"weird--chars!!":              "weird_chars",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}
