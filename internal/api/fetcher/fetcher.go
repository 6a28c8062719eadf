// Package fetcher implements the park data pipeline: an idempotent sequence
// of stages that turns "this park has no data" into "this park has all
// required fixtures" without redoing finished stages. Stages run in a fixed
// order, each one catches its own failure and the pipeline keeps going.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/trailwise-ai/trailwise/app/observability/metrics"
	"github.com/trailwise-ai/trailwise/internal/api/datastore"
	"github.com/trailwise-ai/trailwise/internal/api/llm"
	"github.com/trailwise-ai/trailwise/internal/client/elevation"
	"github.com/trailwise-ai/trailwise/internal/client/serper"
	"github.com/trailwise-ai/trailwise/internal/types"
)

// Fixture names. These double as the on-disk file names under the park's
// fixture directory.
const (
	FixtureParkDetails    = "park_details"
	FixtureCampgrounds    = "campgrounds"
	FixtureVisitorCenters = "visitor_centers"
	FixtureWebcams        = "webcams"
	FixtureThingsToDo     = "things_to_do"
	FixturePlaces         = "places"
	FixturePassportStamps = "passport_stamps"
	FixtureTrails         = "trails_v2"
	FixtureRankings       = "rankings"
	FixturePhotoSpots     = "photo_spots"
	FixtureScenicDrives   = "scenic_drives"
	FixtureAmenities      = "amenities_consolidated"

	rawTrailCandidates = "raw_trails"
)

// RequiredFixtures is the minimum set the orchestrator needs to respond.
var RequiredFixtures = []string{
	FixtureParkDetails,
	FixtureCampgrounds,
	FixtureVisitorCenters,
	FixtureWebcams,
	FixtureThingsToDo,
	FixturePlaces,
}

// OptionalFixtures are produced by the scrape/LLM stages; the orchestrator
// degrades gracefully without them.
var OptionalFixtures = []string{
	FixtureTrails,
	FixtureRankings,
	FixturePhotoSpots,
	FixtureScenicDrives,
	FixtureAmenities,
}

// RegistryClient pulls paginated record lists from the park registry.
type RegistryClient interface {
	FetchAll(ctx context.Context, endpoint, parkCode string) ([]json.RawMessage, []byte, error)
}

// ElevationLookup resolves elevations for a batch of coordinates.
type ElevationLookup interface {
	LookupFeet(ctx context.Context, points []elevation.Point) ([]float64, error)
}

// Searcher runs web and maps searches.
type Searcher interface {
	Search(ctx context.Context, query string) ([]serper.WebResult, error)
	SearchPlaces(ctx context.Context, query string, lat, lon float64, zoom int) ([]serper.PlaceResult, error)
}

// Scraper turns a page into markdown and discovers candidate page links.
type Scraper interface {
	Markdown(ctx context.Context, pageURL string) (string, error)
	SearchLinks(ctx context.Context, query string) ([]string, error)
}

// Extractor is the LLM-backed structured extraction surface the pipeline
// depends on.
type Extractor interface {
	ExtractTrailEnrichment(ctx context.Context, parkName, title, description string) (*llm.TrailEnrichment, error)
	ExtractRankings(ctx context.Context, parkName, markdown string) ([]types.Ranking, error)
	ExtractPhotoSpots(ctx context.Context, parkName, markdown string) ([]types.PhotoSpot, error)
	ExtractScenicDrives(ctx context.Context, parkName, markdown string) ([]types.ScenicDrive, error)
}

// Service runs the park data pipeline.
type Service struct {
	store     *datastore.Store
	registry  RegistryClient
	elevation ElevationLookup
	search    Searcher
	scraper   Scraper
	extractor Extractor
	logger    *slog.Logger

	// llmDelay spaces out extraction calls so the model quota survives a
	// full-park enrichment run.
	llmDelay time.Duration
	now      func() time.Time
}

// NewService wires the pipeline. Any of elevation/search/scraper/extractor may
// be nil; the stages that need them report a stage error instead of running.
func NewService(store *datastore.Store, registry RegistryClient, elev ElevationLookup, search Searcher, scraper Scraper, extractor Extractor, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		registry:  registry,
		elevation: elev,
		search:    search,
		scraper:   scraper,
		extractor: extractor,
		logger:    logger,
		llmDelay:  500 * time.Millisecond,
		now:       time.Now,
	}
}

// HasBasicData reports whether the park has its core details fixture.
func (s *Service) HasBasicData(parkCode string) bool {
	return s.store.HasFixture(parkCode, FixtureParkDetails)
}

// HasCompleteData reports whether every required fixture exists.
func (s *Service) HasCompleteData(parkCode string) bool {
	for _, name := range RequiredFixtures {
		if !s.store.HasFixture(parkCode, name) {
			return false
		}
	}
	return true
}

// MissingFixtures enumerates absent fixtures in both tiers.
type MissingFixtures struct {
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

// GetMissingFixtures lists which fixtures the park still lacks.
func (s *Service) GetMissingFixtures(parkCode string) MissingFixtures {
	var missing MissingFixtures
	for _, name := range RequiredFixtures {
		if !s.store.HasFixture(parkCode, name) {
			missing.Required = append(missing.Required, name)
		}
	}
	for _, name := range OptionalFixtures {
		if !s.store.HasFixture(parkCode, name) {
			missing.Optional = append(missing.Optional, name)
		}
	}
	return missing
}

// Flags selects which pipeline stages may run. The zero value runs nothing;
// AllFlags runs everything.
type Flags struct {
	Static       bool
	Trails       bool
	Rankings     bool
	PhotoSpots   bool
	ScenicDrives bool
	Amenities    bool
}

// AllFlags enables every stage.
func AllFlags() Flags {
	return Flags{Static: true, Trails: true, Rankings: true, PhotoSpots: true, ScenicDrives: true, Amenities: true}
}

// ProgressFunc receives coarse progress while a stage runs.
type ProgressFunc func(current, total int, message string)

func nopProgress(int, int, string) {}

// Status is the aggregate pipeline result: one entry per stage, either a
// result payload, "already_exists", "skipped", or {"error": msg}.
type Status struct {
	ParkCode   string         `json:"park_code"`
	Operations map[string]any `json:"operations"`
}

type stage struct {
	name    string
	enabled bool
	// done reports whether the stage's output already exists.
	done func() bool
	run  func(ctx context.Context, progress ProgressFunc) (any, error)
}

// EnsureParkData runs only the stages whose output fixture is missing. Every
// stage failure is captured into the status map and later stages still run.
func (s *Service) EnsureParkData(ctx context.Context, parkCode string, flags Flags, progress ProgressFunc) Status {
	if progress == nil {
		progress = nopProgress
	}
	l := s.logger.With(slog.String("method", "EnsureParkData"), slog.String("park", parkCode))

	stages := []stage{
		{
			name:    "static_fetch",
			enabled: flags.Static,
			done:    func() bool { return s.HasCompleteData(parkCode) },
			run: func(ctx context.Context, p ProgressFunc) (any, error) {
				return s.runStaticFetch(ctx, parkCode, p)
			},
		},
		{
			name:    "classify_trails",
			enabled: flags.Trails,
			done:    func() bool { return s.store.HasFixture(parkCode, FixtureTrails) },
			run: func(ctx context.Context, p ProgressFunc) (any, error) {
				return s.runClassifyTrails(ctx, parkCode, p)
			},
		},
		{
			name:    "enrich_trails",
			enabled: flags.Trails,
			done:    func() bool { return s.store.HasFixture(parkCode, FixtureTrails) },
			run: func(ctx context.Context, p ProgressFunc) (any, error) {
				return s.runEnrichTrails(ctx, parkCode, p)
			},
		},
		{
			name:    "rankings",
			enabled: flags.Rankings,
			done:    func() bool { return s.store.HasFixture(parkCode, FixtureRankings) },
			run: func(ctx context.Context, p ProgressFunc) (any, error) {
				return s.runRankings(ctx, parkCode, p)
			},
		},
		{
			name:    "photo_spots",
			enabled: flags.PhotoSpots,
			done:    func() bool { return s.store.HasFixture(parkCode, FixturePhotoSpots) },
			run: func(ctx context.Context, p ProgressFunc) (any, error) {
				return s.runPhotoSpots(ctx, parkCode, p)
			},
		},
		{
			name:    "scenic_drives",
			enabled: flags.ScenicDrives,
			done:    func() bool { return s.store.HasFixture(parkCode, FixtureScenicDrives) },
			run: func(ctx context.Context, p ProgressFunc) (any, error) {
				return s.runScenicDrives(ctx, parkCode, p)
			},
		},
		{
			name:    "amenities",
			enabled: flags.Amenities,
			done:    func() bool { return s.store.HasFixture(parkCode, FixtureAmenities) },
			run: func(ctx context.Context, p ProgressFunc) (any, error) {
				return s.runAmenities(ctx, parkCode, p)
			},
		},
	}

	status := Status{ParkCode: parkCode, Operations: map[string]any{}}
	for i, st := range stages {
		progress(i+1, len(stages), st.name)
		switch {
		case !st.enabled:
			status.Operations[st.name] = "skipped"
		case st.done():
			status.Operations[st.name] = "already_exists"
		default:
			stageStart := time.Now()
			result, err := st.run(ctx, progress)
			metrics.Get().PipelineStageSeconds.Record(ctx, time.Since(stageStart).Seconds(),
				metric.WithAttributes(attribute.String("stage", st.name)))
			if err != nil {
				l.Warn("pipeline stage failed", slog.String("stage", st.name), slog.Any("error", err))
				status.Operations[st.name] = map[string]any{"error": err.Error()}
				continue
			}
			status.Operations[st.name] = result
		}
	}
	return status
}

// parkName resolves the display name for prompts and search queries; the
// park code is the fallback before the details fixture exists.
func (s *Service) parkName(parkCode string) string {
	var park types.Park
	if err := s.store.LoadFixture(parkCode, FixtureParkDetails, &park); err == nil && park.FullName != "" {
		return park.FullName
	}
	return parkCode
}

var errNotConfigured = errors.New("fetcher: required client not configured")

func (s *Service) pause(ctx context.Context) {
	if s.llmDelay <= 0 {
		return
	}
	select {
	case <-time.After(s.llmDelay):
	case <-ctx.Done():
	}
}
