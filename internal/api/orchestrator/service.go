// Package orchestrator is the single entry point for a concierge turn: it
// parses intent, resolves the park, gates on available data, assembles the
// retrieval context and drives the LLM response. Sessions are owned by the
// caller; each turn returns an updated copy.
package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/trailwise-ai/trailwise/app/observability/metrics"
	"github.com/trailwise-ai/trailwise/internal/api/constraints"
	"github.com/trailwise-ai/trailwise/internal/api/datastore"
	"github.com/trailwise-ai/trailwise/internal/api/fetcher"
	"github.com/trailwise-ai/trailwise/internal/api/llm"
	"github.com/trailwise-ai/trailwise/internal/api/match"
	"github.com/trailwise-ai/trailwise/internal/client/nps"
	"github.com/trailwise-ai/trailwise/internal/client/weatherapi"
	"github.com/trailwise-ai/trailwise/internal/types"
)

const (
	fixtureCacheTTL  = 5 * time.Minute
	maxHistoryLength = 20
	weatherDays      = 3
)

// Assistant is the LLM surface the orchestrator drives.
type Assistant interface {
	ParseUserIntent(ctx context.Context, query, currentParkCode string) types.Intent
	GenerateResponse(ctx context.Context, in llm.GenerateInput) (string, error)
}

// ReviewFetcher refreshes reviews for one trail and returns the freshest set.
type ReviewFetcher interface {
	FetchReviews(ctx context.Context, parkCode, trailName string) []types.Review
}

// WeatherProvider fetches a forecast for a coordinate.
type WeatherProvider interface {
	Forecast(ctx context.Context, lat, lon float64, days int) (*weatherapi.ForecastResponse, error)
}

// DataGate answers fixture-presence questions for the gating steps.
type DataGate interface {
	HasBasicData(parkCode string) bool
	HasCompleteData(parkCode string) bool
}

// Service orchestrates one concierge turn end to end.
type Service struct {
	store     *datastore.Store
	assistant Assistant
	reviews   ReviewFetcher
	weather   WeatherProvider
	registry  fetcher.RegistryClient
	gate      DataGate
	cache     *gocache.Cache
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the orchestrator. reviews, weather and registry may be
// nil; the corresponding data simply stays absent from the context.
func NewService(store *datastore.Store, assistant Assistant, reviewSvc ReviewFetcher, weather WeatherProvider, registry fetcher.RegistryClient, gate DataGate, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		assistant: assistant,
		reviews:   reviewSvc,
		weather:   weather,
		registry:  registry,
		gate:      gate,
		cache:     gocache.New(fixtureCacheTTL, 2*fixtureCacheTTL),
		logger:    logger,
		now:       time.Now,
	}
}

// loadCached reads a fixture through the in-process cache. Entries hold the
// serialized record, so every read decodes a fresh copy: callers may mutate
// what they get back without other turns observing it.
func loadCached[T any](s *Service, parkCode, name string) T {
	key := parkCode + ":" + name
	if v, ok := s.cache.Get(key); ok {
		if raw, ok := v.([]byte); ok {
			var out T
			if err := json.Unmarshal(raw, &out); err == nil {
				return out
			}
		}
	}
	var out T
	if err := s.store.LoadFixture(parkCode, name, &out); err != nil {
		return out
	}
	if raw, err := json.Marshal(out); err == nil {
		s.cache.Set(key, raw, gocache.DefaultExpiration)
	}
	return out
}

// HandleQuery runs one user turn. It never returns an error: every failure
// mode degrades to a formatted message.
func (s *Service) HandleQuery(ctx context.Context, req types.QueryRequest) types.QueryResponse {
	ctx, span := otel.Tracer("Orchestrator").Start(ctx, "HandleQuery")
	defer span.End()

	start := s.now()
	responseType := "unparsed"
	defer func() {
		m := metrics.Get()
		attrs := metric.WithAttributes(attribute.String("response_type", responseType))
		m.QueriesTotal.Add(ctx, 1, attrs)
		m.QueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	}()

	l := s.logger.With(slog.String("method", "HandleQuery"))
	session := req.SessionContext

	// 1-2. Parse intent, then normalize whatever park the model produced.
	intent := s.assistant.ParseUserIntent(ctx, req.UserQuery, session.ParkCode)
	responseType = intent.ResponseType
	requestedPark := intent.ParkCode
	if normalized := NormalizeParkCode(intent.ParkCode); normalized != "" {
		intent.ParkCode = normalized
	}

	// 3. Merge with session.
	if intent.ParkCode == "" {
		intent.ParkCode = session.ParkCode
	}
	session.Preferences = intent.UserPrefs

	// 4. No park at all: guide the user to pick one.
	if intent.ParkCode == "" {
		return s.respond(session, intent, nil, types.SafetyAnalysis{}, nil, req.UserQuery, pickParkMessage())
	}

	// 5. Named but unsupported park.
	if !IsSupported(intent.ParkCode) {
		name := requestedPark
		if name == "" {
			name = intent.ParkCode
		}
		return s.respond(session, intent, nil, types.SafetyAnalysis{}, nil, req.UserQuery, unsupportedParkMessage(name))
	}
	session.ParkCode = intent.ParkCode
	parkCode := intent.ParkCode
	span.SetAttributes(attribute.String("park_code", parkCode), attribute.String("response_type", intent.ResponseType))

	// 6. Park known but never loaded.
	if !s.gate.HasBasicData(parkCode) {
		return s.respond(session, intent, nil, types.SafetyAnalysis{}, nil, req.UserQuery, dataNotLoadedMessage(parkCode))
	}

	// 7. Topic-specific gating, then the general partial-data notice.
	if topic, ok := s.missingTopicData(parkCode, intent); ok {
		return s.respond(session, intent, nil, types.SafetyAnalysis{}, nil, req.UserQuery, missingTopicDataMessage(topic, parkCode))
	}
	notice := ""
	if !s.gate.HasCompleteData(parkCode) {
		notice = partialDataNotice
	}

	// 8. Static fixtures through the cache, volatile data through the daily
	// tier with fetch-on-miss.
	park := loadCached[types.Park](s, parkCode, fetcher.FixtureParkDetails)
	campgrounds := loadCached[[]types.Campground](s, parkCode, fetcher.FixtureCampgrounds)
	visitorCenters := loadCached[[]types.VisitorCenter](s, parkCode, fetcher.FixtureVisitorCenters)
	things := loadCached[[]types.ThingToDo](s, parkCode, fetcher.FixtureThingsToDo)
	photoSpots := loadCached[[]types.PhotoSpot](s, parkCode, fetcher.FixturePhotoSpots)
	scenicDrives := loadCached[[]types.ScenicDrive](s, parkCode, fetcher.FixtureScenicDrives)
	amenities := loadCached[[]types.Amenity](s, parkCode, fetcher.FixtureAmenities)

	weather := s.loadWeather(ctx, parkCode, &park)
	alerts := s.loadAlerts(ctx, parkCode)
	events := s.loadEvents(ctx, parkCode)

	// 9. Trails with mock fallback and rating self-heal.
	trails := s.loadTrails(parkCode)

	// 10. Deterministic filtering and safety.
	filtered := constraints.FilterTrails(trails, intent.UserPrefs)
	safety := constraints.AnalyzeSafety(weather, alerts)

	// 11. Reviews side-path.
	if s.reviews != nil && (intent.ResponseType == types.ResponseReviews || len(intent.ReviewTargets) > 0) {
		trails, filtered = s.refreshReviews(ctx, parkCode, &intent, trails)
	}

	// 12. Relaxation rule: entity questions with default prefs see raw trails.
	contextTrails := filtered
	switch intent.ResponseType {
	case types.ResponseGeneralChat, types.ResponseEntityLookup, types.ResponseReviews:
		if intent.UserPrefs.IsDefault() {
			contextTrails = trails
		}
	}

	// 13. Generate.
	in := llm.GenerateInput{
		Intent:         intent,
		Park:           &park,
		Weather:        weather,
		Alerts:         alerts,
		Events:         events,
		Campgrounds:    campgrounds,
		VisitorCenters: visitorCenters,
		Trails:         contextTrails,
		Things:         things,
		PhotoSpots:     photoSpots,
		ScenicDrives:   scenicDrives,
		Amenities:      amenities,
		Safety:         safety,
		History:        session.History,
		Now:            s.now(),
	}
	message, err := s.assistant.GenerateResponse(ctx, in)
	if err != nil {
		l.Error("response generation failed", slog.Any("error", err))
		message = generationFailedMessage()
	}

	// 14. Trailing notice.
	message += notice

	// 15. Session bookkeeping.
	resp := s.respond(session, intent, &park, safety, contextTrails, req.UserQuery, message)
	if intent.ResponseType == types.ResponseItinerary && err == nil {
		resp.UpdatedContext.LastItinerary = message
		resp.VettedThings = things
	}
	return resp
}

// respond finalizes a turn: history append and envelope assembly.
func (s *Service) respond(session types.SessionContext, intent types.Intent, park *types.Park, safety types.SafetyAnalysis, trails []types.Trail, query, message string) types.QueryResponse {
	now := s.now()
	session.History = append(session.History,
		types.ChatMessage{Role: "user", Content: query, Timestamp: now},
		types.ChatMessage{Role: "assistant", Content: message, Timestamp: now},
	)
	if len(session.History) > maxHistoryLength {
		session.History = session.History[len(session.History)-maxHistoryLength:]
	}

	var names []string
	for _, t := range trails {
		names = append(names, t.Name)
	}
	return types.QueryResponse{
		ChatResponse: types.ChatResponse{
			Message:         message,
			SafetyStatus:    safety.Status,
			SafetyReasons:   safety.Reasons,
			SuggestedTrails: names,
		},
		ParsedIntent:   intent,
		UpdatedContext: session,
		ParkContext:    park,
		VettedTrails:   trails,
	}
}

// topicGates binds each data topic to its fixture and keyword surface.
var topicGates = []struct {
	topic    string
	fixture  string
	keywords []string
	// responseTypes that imply the topic regardless of keywords.
	responseTypes []string
}{
	{
		topic:         "trails",
		fixture:       fetcher.FixtureTrails,
		keywords:      []string{"trail", "hike", "hiking", "backpack"},
		responseTypes: []string{types.ResponseItinerary, types.ResponseListOptions, types.ResponseReviews},
	},
	{
		topic:    "photos",
		fixture:  fetcher.FixturePhotoSpots,
		keywords: []string{"photo", "photography", "picture", "sunrise spot", "sunset spot"},
	},
	{
		topic:    "drives",
		fixture:  fetcher.FixtureScenicDrives,
		keywords: []string{"scenic drive", "road trip"},
	},
	{
		topic:    "amenities",
		fixture:  fetcher.FixtureAmenities,
		keywords: []string{"gas", "fuel", "restaurant", "food", "grocery", "medical", "hospital", "pharmacy", "ev charg", "amenit"},
	},
}

// missingTopicData short-circuits queries that target a topic whose backing
// fixture is absent.
func (s *Service) missingTopicData(parkCode string, intent types.Intent) (string, bool) {
	query := strings.ToLower(intent.RawQuery)
	for _, gate := range topicGates {
		matched := false
		for _, rt := range gate.responseTypes {
			if intent.ResponseType == rt {
				matched = true
				break
			}
		}
		if !matched {
			for _, kw := range gate.keywords {
				if strings.Contains(query, kw) {
					matched = true
					break
				}
			}
		}
		if matched && !s.store.HasFixture(parkCode, gate.fixture) {
			return gate.topic, true
		}
	}
	return "", false
}

// loadTrails reads the trail fixture with the mock fallback and the rating
// self-heal pass.
func (s *Service) loadTrails(parkCode string) []types.Trail {
	trails := loadCached[[]types.Trail](s, parkCode, fetcher.FixtureTrails)
	if len(trails) == 0 {
		return mockTrails(parkCode)
	}
	for i := range trails {
		if trails[i].AverageRating == 0 && len(trails[i].RecentReviews) > 0 {
			trails[i].RecomputeRating()
		}
	}
	return trails
}

// loadWeather serves today's cached summary, fetching on miss when the park
// has a geolocation.
func (s *Service) loadWeather(ctx context.Context, parkCode string, park *types.Park) *types.WeatherSummary {
	var cached types.WeatherSummary
	if err := s.store.LoadDailyCache(parkCode, "weather", &cached); err == nil {
		return &cached
	}
	if s.weather == nil || park.Latitude == 0 || park.Longitude == 0 {
		return nil
	}
	resp, err := s.weather.Forecast(ctx, park.Latitude, park.Longitude, weatherDays)
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

func (s *Service) loadAlerts(ctx context.Context, parkCode string) []types.Alert {
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

func (s *Service) loadEvents(ctx context.Context, parkCode string) []types.Event {
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

// refreshReviews runs the review side-path: scrape each target (or the top
// trails when none were named), reload the fixture the scraper updated,
// canonicalize targets and re-filter.
func (s *Service) refreshReviews(ctx context.Context, parkCode string, intent *types.Intent, trails []types.Trail) (raw, filtered []types.Trail) {
	targets := intent.ReviewTargets
	usedFallback := false
	if len(targets) == 0 {
		targets = topTrailNames(trails, 3)
		usedFallback = true
	}
	for _, target := range targets {
		s.reviews.FetchReviews(ctx, parkCode, target)
	}

	// The scraper wrote through the store; drop the stale cache entry.
	s.cache.Delete(parkCode + ":" + fetcher.FixtureTrails)
	trails = s.loadTrails(parkCode)

	if usedFallback {
		intent.ReviewTargets = targets
	} else {
		var canonical []string
		for _, target := range targets {
			found := target
			for _, t := range trails {
				if match.Names(t.Name, target) {
					found = t.Name
					break
				}
			}
			canonical = append(canonical, found)
		}
		intent.ReviewTargets = canonical
	}
	return trails, constraints.FilterTrails(trails, intent.UserPrefs)
}

// topTrailNames picks the most popular trails: ranked ones first, then by
// rating.
func topTrailNames(trails []types.Trail, n int) []string {
	sorted := make([]types.Trail, len(trails))
	copy(sorted, trails)
	sort.SliceStable(sorted, func(i, j int) bool {
		return trailMorePopular(sorted[i], sorted[j])
	})
	var names []string
	for i := 0; i < len(sorted) && i < n; i++ {
		names = append(names, sorted[i].Name)
	}
	return names
}

func trailMorePopular(a, b types.Trail) bool {
	if a.PopularityRank != b.PopularityRank {
		if a.PopularityRank == 0 {
			return false
		}
		if b.PopularityRank == 0 {
			return true
		}
		return a.PopularityRank < b.PopularityRank
	}
	return a.AverageRating > b.AverageRating
}

// mockTrails is the built-in fallback when a park has no trail fixture yet.
func mockTrails(parkCode string) []types.Trail {
	seed := []types.Trail{
		{
			Name:          "Scenic Valley Trail",
			Difficulty:    types.DifficultyEasy,
			LengthMiles:   2.4,
			RouteType:     types.RouteLoop,
			AverageRating: 4.2,
			Description:   "A gentle loop through the valley floor with broad views.",
			Features:      []string{"views", "kid-friendly"},
			IsKidFriendly: true,
		},
		{
			Name:            "Ridgeline Overlook Trail",
			Difficulty:      types.DifficultyModerate,
			LengthMiles:     5.1,
			ElevationGainFt: 900,
			RouteType:       types.RouteOutAndBack,
			AverageRating:   4.5,
			Description:     "Climbs steadily to a panoramic overlook.",
			Features:        []string{"views", "wildflowers"},
		},
		{
			Name:            "Summit Push Trail",
			Difficulty:      types.DifficultyStrenuous,
			LengthMiles:     10.8,
			ElevationGainFt: 3200,
			RouteType:       types.RouteOutAndBack,
			AverageRating:   4.8,
			Description:     "An all-day climb to the summit, steep and exposed.",
			Features:        []string{"views", "summit"},
		},
	}
	for i := range seed {
		seed[i].ParkCode = parkCode
	}
	return seed
}
