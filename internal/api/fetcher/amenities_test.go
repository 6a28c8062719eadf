package fetcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwise-ai/trailwise/internal/types"
)

func TestHubEligible(t *testing.T) {
	assert.True(t, hubEligible("South Entrance"))
	assert.True(t, hubEligible("Zion Canyon Visitor Center"))
	assert.True(t, hubEligible("Kolob Canyons Information Station"))
	assert.False(t, hubEligible("North Entrance Gas Station"))
	assert.False(t, hubEligible("Visitor Center Parking"))
	assert.False(t, hubEligible("Shuttle Stop 3"))
	assert.False(t, hubEligible("Weeping Rock"))
}

func TestDeriveHubsFiltersFarAwayCandidates(t *testing.T) {
	svc := NewService(newTestStore(t), nil, nil, nil, nil, nil, testLogger())
	require.NoError(t, svc.store.SaveFixture("zion", FixturePlaces, []types.Place{
		{Title: "South Entrance", Latitude: 37.20, Longitude: -112.99},
		// Coordinates hundreds of miles off; registry data error.
		{Title: "East Entrance", Latitude: 44.0, Longitude: -100.0},
	}))

	hubs, err := svc.deriveHubs("zion")
	require.NoError(t, err)
	require.Len(t, hubs, 1)
	assert.Equal(t, "South Entrance", hubs[0].Name)
}

func TestDeriveHubsDeduplicatesNearbyHubs(t *testing.T) {
	svc := NewService(newTestStore(t), nil, nil, nil, nil, nil, testLogger())
	require.NoError(t, svc.store.SaveFixture("zion", FixturePlaces, []types.Place{
		{Title: "South Entrance", Latitude: 37.2000, Longitude: -112.9880},
		{Title: "South Entrance Station", Latitude: 37.2010, Longitude: -112.9875},
	}))

	hubs, err := svc.deriveHubs("zion")
	require.NoError(t, err)
	assert.Len(t, hubs, 1)
}

func TestDeriveHubsEntranceDominance(t *testing.T) {
	svc := NewService(newTestStore(t), nil, nil, nil, nil, nil, testLogger())
	require.NoError(t, svc.store.SaveFixture("zion", FixturePlaces, []types.Place{
		{Title: "South Entrance", Latitude: 37.2000, Longitude: -112.9880},
	}))
	require.NoError(t, svc.store.SaveFixture("zion", FixtureVisitorCenters, []types.VisitorCenter{
		// ~10 miles from the entrance: dominated.
		{Name: "Zion Canyon Visitor Center", Latitude: 37.3300, Longitude: -113.0500},
		// ~30 miles from the entrance but inside the park radius: kept.
		{Name: "Kolob Canyons Visitor Center", Latitude: 37.6200, Longitude: -113.2300},
	}))

	hubs, err := svc.deriveHubs("zion")
	require.NoError(t, err)

	names := make([]string, len(hubs))
	for i, h := range hubs {
		names[i] = h.Name
	}
	assert.Contains(t, names, "South Entrance")
	assert.Contains(t, names, "Kolob Canyons Visitor Center")
	assert.NotContains(t, names, "Zion Canyon Visitor Center")
}

func TestRunAmenitiesConsolidatesTopFivePerCategory(t *testing.T) {
	svc, _, search, _, _ := newTestService(t)

	status := svc.EnsureParkData(context.Background(), "zion", Flags{Static: true, Amenities: true}, nil)
	result, ok := status.Operations["amenities"].(map[string]any)
	require.True(t, ok, "amenities stage did not complete: %v", status.Operations["amenities"])
	assert.Equal(t, "completed", result["status"])
	assert.Greater(t, search.calls, 0)

	var consolidated []types.Amenity
	require.NoError(t, svc.store.LoadFixture("zion", FixtureAmenities, &consolidated))
	require.NotEmpty(t, consolidated)

	perHubCategory := map[string]int{}
	for _, a := range consolidated {
		assert.NotEmpty(t, a.HubName)
		perHubCategory[a.HubName+"/"+a.Category]++
	}
	for key, n := range perHubCategory {
		assert.LessOrEqual(t, n, maxAmenitiesPerCategory, "too many amenities for %s", key)
	}
}

func TestRunAmenitiesSkipsCachedQueries(t *testing.T) {
	svc, _, search, _, _ := newTestService(t)
	svc.EnsureParkData(context.Background(), "zion", Flags{Static: true}, nil)

	// Pre-seed one hub's cache with every category already fetched.
	hubs, err := svc.deriveHubs("zion")
	require.NoError(t, err)
	require.NotEmpty(t, hubs)
	seeded := map[string][]types.Amenity{}
	for _, q := range amenityQueries {
		seeded[q.category] = []types.Amenity{{Name: "Cached " + q.category, Category: q.category, HubName: hubs[0].Name}}
	}
	require.NoError(t, svc.store.SaveAmenities("zion", hubs[0].Name, seeded))

	before := search.calls
	svc.EnsureParkData(context.Background(), "zion", Flags{Amenities: true}, nil)
	after := search.calls

	// Only the unseeded hubs hit the provider.
	assert.Equal(t, (len(hubs)-1)*len(amenityQueries), after-before)

	var consolidated []types.Amenity
	require.NoError(t, svc.store.LoadFixture("zion", FixtureAmenities, &consolidated))
	var cachedSeen bool
	for _, a := range consolidated {
		if a.Name == "Cached Medical" {
			cachedSeen = true
		}
	}
	assert.True(t, cachedSeen)
}

func TestHaversineMiles(t *testing.T) {
	// Zion visitor center to Springdale is about 1 mile.
	d := haversineMiles(37.2006, -112.9878, 37.1889, -112.9983)
	assert.InDelta(t, 1.0, d, 0.5)
	assert.Zero(t, haversineMiles(37.2, -113.0, 37.2, -113.0))
}
