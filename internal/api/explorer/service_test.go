package explorer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwise-ai/trailwise/internal/api/datastore"
	"github.com/trailwise-ai/trailwise/internal/api/fetcher"
	"github.com/trailwise-ai/trailwise/internal/client/weatherapi"
	"github.com/trailwise-ai/trailwise/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(t *testing.T) *datastore.Store {
	t.Helper()
	root := t.TempDir()
	return datastore.New(
		filepath.Join(root, "fixtures"),
		filepath.Join(root, "cache"),
		filepath.Join(root, "raw"),
		testLogger(),
	)
}

// fakeWeather serves a canned forecast whose temperature depends on
// latitude, so zones come back distinguishable.
type fakeWeather struct {
	calls int
	err   error
}

func (f *fakeWeather) Forecast(_ context.Context, lat, _ float64, _ int) (*weatherapi.ForecastResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var resp weatherapi.ForecastResponse
	resp.Current.TempF = 100 - (lat-37)*100 // higher latitude offset, colder
	resp.Current.Condition.Text = "Sunny"
	return &resp, nil
}

type fakePipeline struct {
	basic, complete bool
	ensured         []string
}

func (f *fakePipeline) EnsureParkData(_ context.Context, parkCode string, flags fetcher.Flags, _ fetcher.ProgressFunc) fetcher.Status {
	f.ensured = append(f.ensured, parkCode)
	ops := map[string]any{"static_fetch": "already_exists"}
	if !flags.Amenities {
		ops["amenities"] = "skipped"
	}
	return fetcher.Status{ParkCode: parkCode, Operations: ops}
}

func (f *fakePipeline) GetMissingFixtures(string) fetcher.MissingFixtures {
	return fetcher.MissingFixtures{}
}
func (f *fakePipeline) HasBasicData(string) bool    { return f.basic }
func (f *fakePipeline) HasCompleteData(string) bool { return f.complete }

func seedZonedPark(t *testing.T, store *datastore.Store) {
	t.Helper()
	require.NoError(t, store.SaveFixture("zion", fetcher.FixtureParkDetails, types.Park{
		ParkCode:  "zion",
		FullName:  "Zion National Park",
		Latitude:  37.3,
		Longitude: -113.0,
		WeatherZones: []types.WeatherZone{
			{Name: "Low-Elevation", Latitude: 37.25, Longitude: -113.0, ElevationFt: 4000},
			{Name: "Mid-Elevation", Latitude: 37.30, Longitude: -113.0, ElevationFt: 5500},
			{Name: "High-Elevation", Latitude: 37.35, Longitude: -113.0, ElevationFt: 7000},
		},
		BaseWeatherZone: "Mid-Elevation",
	}))
}

func TestGetWeatherFetchesZonesWithDeltas(t *testing.T) {
	store := newTestStore(t)
	weather := &fakeWeather{}
	svc := NewService(store, &fakePipeline{}, weather, nil, testLogger())
	seedZonedPark(t, store)

	out, err := svc.GetWeather(context.Background(), "zion")
	require.NoError(t, err)

	require.Len(t, out.Zones, 3)
	byName := map[string]types.ZonalForecast{}
	for _, z := range out.Zones {
		byName[z.ZoneName] = z
	}

	assert.Nil(t, byName["Mid-Elevation"].DeltaFromBase)
	require.NotNil(t, byName["Low-Elevation"].DeltaFromBase)
	assert.InDelta(t, 5, *byName["Low-Elevation"].DeltaFromBase, 0.01)
	require.NotNil(t, byName["High-Elevation"].DeltaFromBase)
	assert.InDelta(t, -5, *byName["High-Elevation"].DeltaFromBase, 0.01)

	require.NotNil(t, out.Summary)
	assert.Equal(t, "Sunny", out.Summary.Condition)
}

func TestGetWeatherUsesDailyCache(t *testing.T) {
	store := newTestStore(t)
	weather := &fakeWeather{}
	svc := NewService(store, &fakePipeline{}, weather, nil, testLogger())
	seedZonedPark(t, store)

	_, err := svc.GetWeather(context.Background(), "zion")
	require.NoError(t, err)
	// One call for the park summary, one per zone.
	assert.Equal(t, 4, weather.calls)

	out, err := svc.GetWeather(context.Background(), "zion")
	require.NoError(t, err)
	assert.Equal(t, 4, weather.calls, "second read must be served from cache")
	assert.Len(t, out.Zones, 3)
}

func TestGetWeatherZoneFailureLeavesNoPartialCache(t *testing.T) {
	store := newTestStore(t)
	weather := &fakeWeather{err: assert.AnError}
	svc := NewService(store, &fakePipeline{}, weather, nil, testLogger())
	seedZonedPark(t, store)

	out, err := svc.GetWeather(context.Background(), "zion")
	require.NoError(t, err)
	assert.Empty(t, out.Zones)

	var zones []types.ZonalForecast
	assert.ErrorIs(t, store.LoadDailyCache("zion", "zone_weather", &zones), datastore.ErrMiss)
}

func TestGetWeatherUnknownPark(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store, &fakePipeline{}, &fakeWeather{}, nil, testLogger())

	_, err := svc.GetWeather(context.Background(), "zion")
	assert.ErrorIs(t, err, datastore.ErrMiss)
}

func TestListParksReportsReadiness(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store, &fakePipeline{basic: true}, nil, nil, testLogger())

	parks := svc.ListParks()
	require.Len(t, parks, 7)
	for _, p := range parks {
		assert.True(t, p.HasBasicData)
		assert.False(t, p.HasCompleteData)
		assert.NotEmpty(t, p.Code)
		assert.NotEmpty(t, p.Name)
	}
}

func TestGetAmenitiesCategoryFilter(t *testing.T) {
	store := newTestStore(t)
	svc := NewService(store, &fakePipeline{}, nil, nil, testLogger())
	require.NoError(t, store.SaveFixture("brca", fetcher.FixtureAmenities, []types.Amenity{
		{Name: "Ruby's Gas", Category: "Gas Station"},
		{Name: "Bryce Canyon Pines", Category: "Restaurant"},
		{Name: "Sinclair", Category: "Gas Station"},
	}))

	all, err := svc.GetAmenities("brca", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	gas, err := svc.GetAmenities("brca", "Gas Station")
	require.NoError(t, err)
	require.Len(t, gas, 2)
	for _, a := range gas {
		assert.Equal(t, "Gas Station", a.Category)
	}
}

func TestEnsureRunsPipeline(t *testing.T) {
	store := newTestStore(t)
	pipeline := &fakePipeline{}
	svc := NewService(store, pipeline, nil, nil, testLogger())

	result := svc.Ensure(context.Background(), "yose", fetcher.AllFlags())

	assert.Equal(t, []string{"yose"}, pipeline.ensured)
	assert.Equal(t, "yose", result.ParkCode)
	assert.Contains(t, result.Operations, "static_fetch")
}
