package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trailwise-ai/trailwise/internal/client/elevation"
	"github.com/trailwise-ai/trailwise/internal/client/nps"
	"github.com/trailwise-ai/trailwise/internal/types"
)

// Titles containing any of these belong to the trail pipeline, not the
// things-to-do fixture.
var hikeTitleWords = []string{"hike", "trail", "loop", "walk", "trek", "rim walk"}

func isHikeTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, w := range hikeTitleWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Fallback zone elevations when the elevation API is unavailable.
var fallbackZoneElevations = []float64{5000, 7000, 9000}

var zoneOffsets = []struct {
	name   string
	dLat   float64
}{
	{"Low-Elevation", -0.05},
	{"Mid-Elevation", 0},
	{"High-Elevation", 0.05},
}

// runStaticFetch pulls every registry endpoint, dumps the raw payload and
// saves the parsed fixture. Endpoint failures abort the stage; the partial
// fixtures written so far stay valid.
func (s *Service) runStaticFetch(ctx context.Context, parkCode string, progress ProgressFunc) (any, error) {
	l := s.logger.With(slog.String("method", "runStaticFetch"), slog.String("park", parkCode))

	type endpointSpec struct {
		endpoint string
		fixture  string
		adapt    func(items []json.RawMessage) (any, int)
	}
	endpoints := []endpointSpec{
		{nps.EndpointParks, FixtureParkDetails, s.adaptParkDetails},
		{nps.EndpointCampgrounds, FixtureCampgrounds, adaptList(adaptCampground)},
		{nps.EndpointVisitorCenters, FixtureVisitorCenters, adaptList(adaptVisitorCenter)},
		{nps.EndpointWebcams, FixtureWebcams, adaptList(adaptWebcam)},
		{nps.EndpointThingsToDo, FixtureThingsToDo, s.adaptThingsToDo},
		{nps.EndpointPlaces, FixturePlaces, adaptList(adaptPlace)},
		{nps.EndpointPassportStamps, FixturePassportStamps, adaptList(adaptPassportStamp)},
	}

	counts := map[string]int{}
	for i, spec := range endpoints {
		progress(i+1, len(endpoints), fmt.Sprintf("fetching %s", spec.endpoint))
		items, raw, err := s.registry.FetchAll(ctx, spec.endpoint, parkCode)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", spec.endpoint, err)
		}
		if err := s.store.SaveRaw(parkCode, spec.endpoint, raw); err != nil {
			l.Warn("raw dump failed", slog.String("endpoint", spec.endpoint), slog.Any("error", err))
		}
		records, n := spec.adapt(items)
		if err := s.store.SaveFixture(parkCode, spec.fixture, records); err != nil {
			return nil, fmt.Errorf("saving %s: %w", spec.fixture, err)
		}
		counts[spec.fixture] = n
	}

	if err := s.ensureWeatherZones(ctx, parkCode); err != nil {
		l.Warn("weather zone autofill failed", slog.Any("error", err))
	}
	return map[string]any{"status": "completed", "counts": counts}, nil
}

func adaptList[T any](adapt func(json.RawMessage) T) func([]json.RawMessage) (any, int) {
	return func(items []json.RawMessage) (any, int) {
		records := make([]T, 0, len(items))
		for _, item := range items {
			records = append(records, adapt(item))
		}
		return records, len(records)
	}
}

// adaptParkDetails keeps the first registry record; the parks endpoint is
// queried by a single park code.
func (s *Service) adaptParkDetails(items []json.RawMessage) (any, int) {
	if len(items) == 0 {
		return types.Park{}, 0
	}
	return adaptPark(items[0]), 1
}

func (s *Service) adaptThingsToDo(items []json.RawMessage) (any, int) {
	records := make([]types.ThingToDo, 0, len(items))
	for _, item := range items {
		thing := adaptThingToDo(item)
		if isHikeTitle(thing.Title) {
			continue
		}
		records = append(records, thing)
	}
	return records, len(records)
}

// ensureWeatherZones auto-generates three elevation-banded zones around the
// park center when the details record has none. Elevations come from one
// batch lookup; on lookup failure the fixed fallback elevations are used.
func (s *Service) ensureWeatherZones(ctx context.Context, parkCode string) error {
	var park types.Park
	if err := s.store.LoadFixture(parkCode, FixtureParkDetails, &park); err != nil {
		return err
	}
	if len(park.WeatherZones) > 0 || park.Latitude == 0 || park.Longitude == 0 {
		return nil
	}

	points := make([]elevation.Point, len(zoneOffsets))
	for i, z := range zoneOffsets {
		points[i] = elevation.Point{Latitude: park.Latitude + z.dLat, Longitude: park.Longitude}
	}

	elevations := fallbackZoneElevations
	if s.elevation != nil {
		if feet, err := s.elevation.LookupFeet(ctx, points); err == nil && len(feet) == len(zoneOffsets) {
			elevations = feet
		} else if err != nil {
			s.logger.Warn("elevation lookup failed, using fallback elevations",
				slog.String("park", parkCode), slog.Any("error", err))
		}
	}

	for i, z := range zoneOffsets {
		park.WeatherZones = append(park.WeatherZones, types.WeatherZone{
			Name:        z.name,
			Latitude:    points[i].Latitude,
			Longitude:   points[i].Longitude,
			ElevationFt: elevations[i],
		})
	}
	park.BaseWeatherZone = "Mid-Elevation"
	return s.store.SaveFixture(parkCode, FixtureParkDetails, park)
}
