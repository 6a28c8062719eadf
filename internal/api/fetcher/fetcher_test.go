package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailwise-ai/trailwise/internal/api/datastore"
	"github.com/trailwise-ai/trailwise/internal/api/llm"
	"github.com/trailwise-ai/trailwise/internal/client/elevation"
	"github.com/trailwise-ai/trailwise/internal/client/nps"
	"github.com/trailwise-ai/trailwise/internal/client/serper"
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

// fakeRegistry serves canned registry items and counts upstream calls.
type fakeRegistry struct {
	calls int
}

func (f *fakeRegistry) FetchAll(_ context.Context, endpoint, parkCode string) ([]json.RawMessage, []byte, error) {
	f.calls++
	var items []json.RawMessage
	switch endpoint {
	case nps.EndpointParks:
		items = []json.RawMessage{json.RawMessage(fmt.Sprintf(
			`{"fullName":"Zion National Park","parkCode":%q,"description":"Sandstone cliffs.","latitude":"37.2982","longitude":"-113.0263"}`, parkCode))}
	case nps.EndpointPlaces:
		items = []json.RawMessage{
			json.RawMessage(`{"id":"p1","title":"Watchman Trail","bodyText":"A moderate hike climbing switchbacks to a viewpoint over the canyon, about 3.3 miles round trip with steady elevation gain.","latitude":"37.2","longitude":"-113.0"}`),
			json.RawMessage(`{"id":"p2","title":"South Entrance","bodyText":"Main park entrance station.","latitude":"37.2002","longitude":"-112.9880"}`),
		}
	case nps.EndpointVisitorCenters:
		items = []json.RawMessage{json.RawMessage(
			`{"id":"vc1","name":"Zion Canyon Visitor Center","latitude":"37.2006","longitude":"-112.9878"}`)}
	case nps.EndpointThingsToDo:
		items = []json.RawMessage{
			json.RawMessage(`{"id":"t1","title":"Ride the Shuttle","shortDescription":"Seasonal canyon shuttle."}`),
			json.RawMessage(`{"id":"t2","title":"Hike Angels Landing","shortDescription":"Permit required."}`),
		}
	}
	envelope, _ := json.Marshal(map[string]any{"data": items})
	return items, envelope, nil
}

type fakeElevation struct{ calls int }

func (f *fakeElevation) LookupFeet(_ context.Context, points []elevation.Point) ([]float64, error) {
	f.calls++
	out := make([]float64, len(points))
	for i := range points {
		out[i] = 4000 + float64(i)*1500
	}
	return out, nil
}

type fakeSearch struct{ calls int }

func (f *fakeSearch) Search(context.Context, string) ([]serper.WebResult, error) {
	f.calls++
	return []serper.WebResult{{Title: "Guide", Link: "https://example.com/guide"}}, nil
}

func (f *fakeSearch) SearchPlaces(context.Context, string, float64, float64, int) ([]serper.PlaceResult, error) {
	f.calls++
	return []serper.PlaceResult{{Title: "Zion Pizza", Address: "Springdale UT", Latitude: 37.18, Longitude: -112.99, Rating: 4.4}}, nil
}

type fakeScraper struct{ calls int }

func (f *fakeScraper) Markdown(_ context.Context, pageURL string) (string, error) {
	f.calls++
	return "# Guide\n\nThe Narrows tops every list.", nil
}

func (f *fakeScraper) SearchLinks(_ context.Context, query string) ([]string, error) {
	f.calls++
	return []string{"https://www.alltrails.com/parks/us/utah/zion-national-park"}, nil
}

type fakeExtractor struct{ calls int }

func (f *fakeExtractor) ExtractTrailEnrichment(_ context.Context, _, title, _ string) (*llm.TrailEnrichment, error) {
	f.calls++
	length, gain, route := 3.3, 368.0, types.RouteOutAndBack
	return &llm.TrailEnrichment{
		IsValidHikingTrail: true,
		LengthMiles:        &length,
		ElevationGainFt:    &gain,
		RouteType:          &route,
		Description:        "Climbs to a viewpoint over the canyon.",
		Features:           []string{"views"},
	}, nil
}

func (f *fakeExtractor) ExtractRankings(context.Context, string, string) ([]types.Ranking, error) {
	f.calls++
	return []types.Ranking{{Rank: 1, Name: "The Narrows", URL: "https://www.alltrails.com/trail/narrows"}}, nil
}

func (f *fakeExtractor) ExtractPhotoSpots(context.Context, string, string) ([]types.PhotoSpot, error) {
	f.calls++
	return []types.PhotoSpot{{Name: "Canyon Junction Bridge"}}, nil
}

func (f *fakeExtractor) ExtractScenicDrives(context.Context, string, string) ([]types.ScenicDrive, error) {
	f.calls++
	return []types.ScenicDrive{{Name: "Zion-Mount Carmel Highway"}}, nil
}

func newTestService(t *testing.T) (*Service, *fakeRegistry, *fakeSearch, *fakeScraper, *fakeExtractor) {
	t.Helper()
	registry := &fakeRegistry{}
	search := &fakeSearch{}
	scraper := &fakeScraper{}
	extractor := &fakeExtractor{}
	svc := NewService(newTestStore(t), registry, &fakeElevation{}, search, scraper, extractor, testLogger())
	svc.llmDelay = 0
	return svc, registry, search, scraper, extractor
}

func TestEnsureParkDataBuildsAllFixtures(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	status := svc.EnsureParkData(context.Background(), "zion", AllFlags(), nil)

	assert.Equal(t, "zion", status.ParkCode)
	for _, name := range []string{"static_fetch", "classify_trails", "enrich_trails", "rankings", "photo_spots", "scenic_drives", "amenities"} {
		result, ok := status.Operations[name]
		require.True(t, ok, "missing stage %s", name)
		if m, isMap := result.(map[string]any); isMap {
			_, failed := m["error"]
			assert.False(t, failed, "stage %s failed: %v", name, m)
		}
	}
	assert.True(t, svc.HasBasicData("zion"))
	assert.True(t, svc.HasCompleteData("zion"))

	missing := svc.GetMissingFixtures("zion")
	assert.Empty(t, missing.Required)
	assert.Empty(t, missing.Optional)
}

func TestEnsureParkDataSecondRunIsIdempotent(t *testing.T) {
	svc, registry, search, scraper, extractor := newTestService(t)

	svc.EnsureParkData(context.Background(), "zion", AllFlags(), nil)
	registryCalls, searchCalls := registry.calls, search.calls
	scrapeCalls, extractCalls := scraper.calls, extractor.calls

	status := svc.EnsureParkData(context.Background(), "zion", AllFlags(), nil)

	for name, result := range status.Operations {
		assert.Equal(t, "already_exists", result, "stage %s reran", name)
	}
	assert.Equal(t, registryCalls, registry.calls)
	assert.Equal(t, searchCalls, search.calls)
	assert.Equal(t, scrapeCalls, scraper.calls)
	assert.Equal(t, extractCalls, extractor.calls)
}

func TestEnsureParkDataDisabledStagesSkipped(t *testing.T) {
	svc, registry, _, scraper, _ := newTestService(t)

	status := svc.EnsureParkData(context.Background(), "zion", Flags{Static: true}, nil)

	assert.Equal(t, "skipped", status.Operations["classify_trails"])
	assert.Equal(t, "skipped", status.Operations["rankings"])
	assert.Equal(t, "skipped", status.Operations["amenities"])
	assert.Greater(t, registry.calls, 0)
	assert.Zero(t, scraper.calls)
	assert.True(t, svc.HasCompleteData("zion"))
	assert.False(t, svc.store.HasFixture("zion", FixtureTrails))
}

func TestEnsureParkDataStageFailureDoesNotStopPipeline(t *testing.T) {
	registry := &fakeRegistry{}
	// No scraper or extractor: the trail and scrape stages must error while
	// static fetch and amenities still complete.
	svc := NewService(newTestStore(t), registry, nil, &fakeSearch{}, nil, nil, testLogger())
	svc.llmDelay = 0

	status := svc.EnsureParkData(context.Background(), "zion", AllFlags(), nil)

	_, staticFailed := status.Operations["static_fetch"].(map[string]any)["error"]
	assert.False(t, staticFailed)
	_, enrichFailed := status.Operations["enrich_trails"].(map[string]any)["error"]
	assert.True(t, enrichFailed)
	_, amenityFailed := status.Operations["amenities"].(map[string]any)["error"]
	assert.False(t, amenityFailed)
	assert.True(t, svc.HasCompleteData("zion"))
}

func TestStaticFetchFiltersHikeTitles(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	svc.EnsureParkData(context.Background(), "zion", Flags{Static: true}, nil)

	var things []types.ThingToDo
	require.NoError(t, svc.store.LoadFixture("zion", FixtureThingsToDo, &things))
	require.Len(t, things, 1)
	assert.Equal(t, "Ride the Shuttle", things[0].Title)
}

func TestStaticFetchAutofillsWeatherZones(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	svc.EnsureParkData(context.Background(), "zion", Flags{Static: true}, nil)

	var park types.Park
	require.NoError(t, svc.store.LoadFixture("zion", FixtureParkDetails, &park))
	require.Len(t, park.WeatherZones, 3)
	assert.Equal(t, "Mid-Elevation", park.BaseWeatherZone)
	assert.Equal(t, "Low-Elevation", park.WeatherZones[0].Name)
	assert.InDelta(t, park.Latitude-0.05, park.WeatherZones[0].Latitude, 1e-9)
	assert.InDelta(t, park.Latitude+0.05, park.WeatherZones[2].Latitude, 1e-9)
	assert.Equal(t, 4000.0, park.WeatherZones[0].ElevationFt)
}

func TestWeatherZoneFallbackElevations(t *testing.T) {
	registry := &fakeRegistry{}
	svc := NewService(newTestStore(t), registry, nil, nil, nil, nil, testLogger())
	svc.llmDelay = 0

	svc.EnsureParkData(context.Background(), "zion", Flags{Static: true}, nil)

	var park types.Park
	require.NoError(t, svc.store.LoadFixture("zion", FixtureParkDetails, &park))
	require.Len(t, park.WeatherZones, 3)
	assert.Equal(t, []float64{5000, 7000, 9000}, []float64{
		park.WeatherZones[0].ElevationFt,
		park.WeatherZones[1].ElevationFt,
		park.WeatherZones[2].ElevationFt,
	})
}

func TestScenicDrivesRawPagesDecodeAsJSON(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	svc.EnsureParkData(context.Background(), "zion", Flags{Static: true, ScenicDrives: true}, nil)

	var pages []guidePage
	require.NoError(t, svc.store.LoadRaw("zion", "scenic_drives_pages", &pages))
	require.Len(t, pages, 1)
	assert.Equal(t, "https://www.alltrails.com/parks/us/utah/zion-national-park", pages[0].URL)
	assert.Contains(t, pages[0].Markdown, "Narrows")
}

func TestGetMissingFixturesEnumeratesBothTiers(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)

	missing := svc.GetMissingFixtures("zion")
	assert.ElementsMatch(t, RequiredFixtures, missing.Required)
	assert.ElementsMatch(t, OptionalFixtures, missing.Optional)
	assert.False(t, svc.HasBasicData("zion"))
	assert.False(t, svc.HasCompleteData("zion"))
}
