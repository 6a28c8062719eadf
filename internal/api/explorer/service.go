// Package explorer serves the read-side API: park fixtures, trails,
// amenities and the daily-volatile weather, alert and event data. It also
// hosts the operational endpoint that drives the acquisition pipeline.
package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/trailwise-ai/trailwise/internal/api/datastore"
	"github.com/trailwise-ai/trailwise/internal/api/fetcher"
	"github.com/trailwise-ai/trailwise/internal/api/orchestrator"
	"github.com/trailwise-ai/trailwise/internal/client/nps"
	"github.com/trailwise-ai/trailwise/internal/client/weatherapi"
	"github.com/trailwise-ai/trailwise/internal/types"
)

const forecastDays = 3

// WeatherProvider fetches a forecast for a coordinate.
type WeatherProvider interface {
	Forecast(ctx context.Context, lat, lon float64, days int) (*weatherapi.ForecastResponse, error)
}

// Pipeline is the slice of the acquisition service the explorer drives.
type Pipeline interface {
	EnsureParkData(ctx context.Context, parkCode string, flags fetcher.Flags, progress fetcher.ProgressFunc) fetcher.Status
	GetMissingFixtures(parkCode string) fetcher.MissingFixtures
	HasBasicData(parkCode string) bool
	HasCompleteData(parkCode string) bool
}

// Service reads park data for the explorer endpoints.
type Service struct {
	store    *datastore.Store
	pipeline Pipeline
	weather  WeatherProvider
	registry fetcher.RegistryClient
	logger   *slog.Logger
}

// NewService wires the explorer. weather and registry may be nil; the
// corresponding endpoints then serve cached data only.
func NewService(store *datastore.Store, pipeline Pipeline, weather WeatherProvider, registry fetcher.RegistryClient, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		pipeline: pipeline,
		weather:  weather,
		registry: registry,
		logger:   logger,
	}
}

// ParkStatus is one row of the park listing: identity plus data readiness.
type ParkStatus struct {
	Code            string                  `json:"code"`
	Name            string                  `json:"name"`
	HasBasicData    bool                    `json:"has_basic_data"`
	HasCompleteData bool                    `json:"has_complete_data"`
	Missing         fetcher.MissingFixtures `json:"missing"`
}

// ListParks reports every supported park with its data readiness.
func (s *Service) ListParks() []ParkStatus {
	out := make([]ParkStatus, 0, len(orchestrator.SupportedParks))
	for _, p := range orchestrator.SupportedParks {
		out = append(out, ParkStatus{
			Code:            p.Code,
			Name:            p.Name,
			HasBasicData:    s.pipeline.HasBasicData(p.Code),
			HasCompleteData: s.pipeline.HasCompleteData(p.Code),
			Missing:         s.pipeline.GetMissingFixtures(p.Code),
		})
	}
	return out
}

// GetPark loads the park detail fixture.
func (s *Service) GetPark(parkCode string) (types.Park, error) {
	var park types.Park
	if err := s.store.LoadFixture(parkCode, fetcher.FixtureParkDetails, &park); err != nil {
		return types.Park{}, fmt.Errorf("park %s: %w", parkCode, err)
	}
	return park, nil
}

// GetTrails loads the trail fixture, optionally filtered by preferences.
func (s *Service) GetTrails(parkCode string) ([]types.Trail, error) {
	var trails []types.Trail
	if err := s.store.LoadFixture(parkCode, fetcher.FixtureTrails, &trails); err != nil {
		return nil, fmt.Errorf("trails for %s: %w", parkCode, err)
	}
	return trails, nil
}

// GetAmenities loads the consolidated amenity fixture, optionally narrowed
// to one category.
func (s *Service) GetAmenities(parkCode, category string) ([]types.Amenity, error) {
	var amenities []types.Amenity
	if err := s.store.LoadFixture(parkCode, fetcher.FixtureAmenities, &amenities); err != nil {
		return nil, fmt.Errorf("amenities for %s: %w", parkCode, err)
	}
	if category == "" {
		return amenities, nil
	}
	var filtered []types.Amenity
	for _, a := range amenities {
		if a.Category == category {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// ZonalWeather is the weather endpoint payload: the park-wide summary plus
// one forecast per elevation zone.
type ZonalWeather struct {
	ParkCode string                `json:"park_code"`
	Summary  *types.WeatherSummary `json:"summary,omitempty"`
	Zones    []types.ZonalForecast `json:"zones,omitempty"`
}

// GetWeather serves today's zonal weather, fetching and caching on miss.
// Zone forecasts are cached together under one daily key so a partial fetch
// never masquerades as a complete day.
func (s *Service) GetWeather(ctx context.Context, parkCode string) (ZonalWeather, error) {
	out := ZonalWeather{ParkCode: parkCode}

	park, err := s.GetPark(parkCode)
	if err != nil {
		return out, err
	}

	out.Summary = s.loadSummary(ctx, parkCode, park)

	var zones []types.ZonalForecast
	if err := s.store.LoadDailyCache(parkCode, "zone_weather", &zones); err == nil {
		out.Zones = zones
		return out, nil
	}

	zones, err = s.fetchZones(ctx, park)
	if err != nil {
		s.logger.Warn("zonal weather fetch failed", slog.String("park", parkCode), slog.Any("error", err))
		return out, nil
	}
	if len(zones) > 0 {
		if err := s.store.SaveDailyCache(parkCode, "zone_weather", zones); err != nil {
			s.logger.Warn("zonal weather cache write failed", slog.String("park", parkCode), slog.Any("error", err))
		}
	}
	out.Zones = zones
	return out, nil
}

func (s *Service) loadSummary(ctx context.Context, parkCode string, park types.Park) *types.WeatherSummary {
	var cached types.WeatherSummary
	if err := s.store.LoadDailyCache(parkCode, "weather", &cached); err == nil {
		return &cached
	}
	if s.weather == nil || park.Latitude == 0 || park.Longitude == 0 {
		return nil
	}
	resp, err := s.weather.Forecast(ctx, park.Latitude, park.Longitude, forecastDays)
	if err != nil {
		s.logger.Warn("weather fetch failed", slog.String("park", parkCode), slog.Any("error", err))
		return nil
	}
	summary := fetcher.AdaptWeather(parkCode, resp)
	if err := s.store.SaveDailyCache(parkCode, "weather", summary); err != nil {
		s.logger.Warn("weather cache write failed", slog.String("park", parkCode), slog.Any("error", err))
	}
	return &summary
}

// fetchZones pulls one forecast per weather zone and computes each zone's
// temperature delta from the park's base zone.
func (s *Service) fetchZones(ctx context.Context, park types.Park) ([]types.ZonalForecast, error) {
	if s.weather == nil || len(park.WeatherZones) == 0 {
		return nil, nil
	}

	zones := make([]types.ZonalForecast, 0, len(park.WeatherZones))
	for _, zone := range park.WeatherZones {
		resp, err := s.weather.Forecast(ctx, zone.Latitude, zone.Longitude, forecastDays)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", zone.Name, err)
		}
		summary := fetcher.AdaptWeather(park.ParkCode, resp)
		zones = append(zones, types.ZonalForecast{
			WeatherSummary: summary,
			ZoneName:       zone.Name,
			ElevationFt:    zone.ElevationFt,
		})
	}

	var baseTemp *float64
	for i := range zones {
		if zones[i].ZoneName == park.BaseWeatherZone {
			baseTemp = &zones[i].CurrentTempF
			break
		}
	}
	if baseTemp != nil {
		for i := range zones {
			if zones[i].ZoneName == park.BaseWeatherZone {
				continue
			}
			delta := zones[i].CurrentTempF - *baseTemp
			zones[i].DeltaFromBase = &delta
		}
	}
	return zones, nil
}

// GetAlerts serves today's alerts, fetching and caching on miss.
func (s *Service) GetAlerts(ctx context.Context, parkCode string) []types.Alert {
	var cached []types.Alert
	if err := s.store.LoadDailyCache(parkCode, "alerts", &cached); err == nil {
		return cached
	}
	if s.registry == nil {
		return nil
	}
	items, _, err := s.registry.FetchAll(ctx, nps.EndpointAlerts, parkCode)
	if err != nil {
		s.logger.Warn("alert fetch failed", slog.String("park", parkCode), slog.Any("error", err))
		return nil
	}
	alerts := fetcher.AdaptAlerts(items)
	if err := s.store.SaveDailyCache(parkCode, "alerts", alerts); err != nil {
		s.logger.Warn("alert cache write failed", slog.String("park", parkCode), slog.Any("error", err))
	}
	return alerts
}

// GetEvents serves today's events, fetching and caching on miss.
func (s *Service) GetEvents(ctx context.Context, parkCode string) []types.Event {
	var cached []types.Event
	if err := s.store.LoadDailyCache(parkCode, "events", &cached); err == nil {
		return cached
	}
	if s.registry == nil {
		return nil
	}
	items, _, err := s.registry.FetchAll(ctx, nps.EndpointEvents, parkCode)
	if err != nil {
		s.logger.Warn("event fetch failed", slog.String("park", parkCode), slog.Any("error", err))
		return nil
	}
	events := fetcher.AdaptEvents(items)
	if err := s.store.SaveDailyCache(parkCode, "events", events); err != nil {
		s.logger.Warn("event cache write failed", slog.String("park", parkCode), slog.Any("error", err))
	}
	return events
}

// EnsureResult is the ops endpoint payload: per-stage outcomes plus the
// wall-clock duration of the run.
type EnsureResult struct {
	ParkCode   string         `json:"park_code"`
	Operations map[string]any `json:"operations"`
	DurationMS int64          `json:"duration_ms"`
}

// Ensure runs the acquisition pipeline for one park.
func (s *Service) Ensure(ctx context.Context, parkCode string, flags fetcher.Flags) EnsureResult {
	start := time.Now()
	status := s.pipeline.EnsureParkData(ctx, parkCode, flags, func(current, total int, message string) {
		s.logger.Info("pipeline progress",
			slog.String("park", parkCode),
			slog.Int("current", current),
			slog.Int("total", total),
			slog.String("message", message),
		)
	})
	return EnsureResult{
		ParkCode:   parkCode,
		Operations: status.Operations,
		DurationMS: time.Since(start).Milliseconds(),
	}
}
