// Package reviews refreshes trail reviews from third-party hiking pages:
// locate the trail, discover its source URL once, scrape under a hard
// timeout, extract with the LLM and persist. Failures always degrade to the
// cached reviews; this service never surfaces an error to the caller.
package reviews

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/trailwise-ai/trailwise/app/observability/metrics"
	"github.com/trailwise-ai/trailwise/internal/api/datastore"
	"github.com/trailwise-ai/trailwise/internal/api/fetcher"
	"github.com/trailwise-ai/trailwise/internal/api/match"
	"github.com/trailwise-ai/trailwise/internal/types"
)

// defaultScrapeTimeout is the wall-clock ceiling on one scrape. The
// provider's own timeout has proven unreliable, so it is enforced here.
const defaultScrapeTimeout = 45 * time.Second

// hikingSite is the third-party source reviews are discovered on.
const hikingSite = "www.alltrails.com"

// Scraper renders a page as markdown and discovers source links.
type Scraper interface {
	Markdown(ctx context.Context, pageURL string) (string, error)
	SearchLinks(ctx context.Context, query string) ([]string, error)
}

// Extractor pulls structured reviews out of scraped markdown.
type Extractor interface {
	ExtractReviewsFromText(ctx context.Context, trailName, markdown string) []types.Review
}

// Service is the review scraper.
type Service struct {
	store     *datastore.Store
	scraper   Scraper
	extractor Extractor
	logger    *slog.Logger

	scrapeTimeout time.Duration
	now           func() time.Time
}

// NewService wires the review scraper. A nil scraper or extractor disables
// refreshes; cached reviews are still served.
func NewService(store *datastore.Store, scraper Scraper, extractor Extractor, logger *slog.Logger) *Service {
	return &Service{
		store:         store,
		scraper:       scraper,
		extractor:     extractor,
		logger:        logger,
		scrapeTimeout: defaultScrapeTimeout,
		now:           time.Now,
	}
}

// FetchReviews returns the freshest reviews available for the named trail.
// The trail fixture is updated in place on a successful refresh; on any
// failure the cached reviews come back and the fixture is unchanged except
// for a newly discovered source URL.
func (s *Service) FetchReviews(ctx context.Context, parkCode, trailName string) []types.Review {
	l := s.logger.With(slog.String("method", "FetchReviews"),
		slog.String("park", parkCode), slog.String("trail", trailName))

	var trails []types.Trail
	if err := s.store.LoadFixture(parkCode, fetcher.FixtureTrails, &trails); err != nil {
		l.Warn("no trail fixture", slog.Any("error", err))
		return nil
	}
	idx := locateTrail(trails, trailName)
	if idx < 0 {
		l.Warn("trail not found")
		return nil
	}
	trail := &trails[idx]

	if trail.ReviewsFreshToday(s.now()) {
		return trail.RecentReviews
	}
	if s.scraper == nil || s.extractor == nil {
		return trail.RecentReviews
	}

	urlDiscovered := false
	if trail.ReviewsURL == "" {
		url, err := s.discoverSourceURL(ctx, trail.Name, s.parkName(parkCode))
		if err != nil || url == "" {
			l.Warn("source URL discovery failed", slog.Any("error", err))
			return trail.RecentReviews
		}
		trail.ReviewsURL = url
		urlDiscovered = true
	}

	persistURLOnly := func() {
		if !urlDiscovered {
			return
		}
		if err := s.store.SaveFixture(parkCode, fetcher.FixtureTrails, trails); err != nil {
			l.Warn("persisting discovered URL failed", slog.Any("error", err))
		}
	}

	markdown, err := s.scrapeWithDeadline(ctx, trail.ReviewsURL)
	if err != nil || strings.TrimSpace(markdown) == "" {
		l.Warn("scrape failed", slog.Any("error", err))
		persistURLOnly()
		return trail.RecentReviews
	}

	extracted := s.extractor.ExtractReviewsFromText(ctx, trail.Name, markdown)
	if len(extracted) == 0 {
		l.Info("no reviews extracted")
		persistURLOnly()
		return trail.RecentReviews
	}

	now := s.now().Format(time.RFC3339)
	trail.RecentReviews = extracted
	trail.ReviewsLastUpdated = now
	trail.LastEnriched = now
	trail.RecomputeRating()

	if err := s.store.SaveFixture(parkCode, fetcher.FixtureTrails, trails); err != nil {
		l.Warn("persisting refreshed reviews failed", slog.Any("error", err))
	}
	l.Info("reviews refreshed", slog.Int("count", len(extracted)),
		slog.Float64("average_rating", trail.AverageRating))
	return trail.RecentReviews
}

// locateTrail finds the trail by exact lowercase name first, then fuzzy.
func locateTrail(trails []types.Trail, name string) int {
	lower := strings.ToLower(strings.TrimSpace(name))
	for i, t := range trails {
		if strings.ToLower(t.Name) == lower {
			return i
		}
	}
	for i, t := range trails {
		if match.Names(t.Name, name) {
			return i
		}
	}
	return -1
}

// parkName resolves the park's display name for search queries; the short
// code is a useless search term.
func (s *Service) parkName(parkCode string) string {
	var park types.Park
	if err := s.store.LoadFixture(parkCode, fetcher.FixtureParkDetails, &park); err == nil && park.FullName != "" {
		return park.FullName
	}
	return parkCode
}

// discoverSourceURL searches the hiking site for the trail's page and keeps
// the first /trail/ link.
func (s *Service) discoverSourceURL(ctx context.Context, trailName, parkName string) (string, error) {
	query := fmt.Sprintf("site:%s %s %s", hikingSite, cleanTrailName(trailName), parkName)
	links, err := s.scraper.SearchLinks(ctx, query)
	if err != nil {
		return "", err
	}
	for _, link := range links {
		if strings.Contains(link, hikingSite) && strings.Contains(link, "/trail/") {
			return link, nil
		}
	}
	return "", nil
}

// cleanTrailName drops punctuation that defeats site-restricted search.
func cleanTrailName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// scrapeWithDeadline runs the scrape on its own goroutine so the wall-clock
// ceiling holds even when the provider ignores context cancellation. The
// worker mutates no shared state; its result comes back on the channel.
func (s *Service) scrapeWithDeadline(ctx context.Context, pageURL string) (string, error) {
	metrics.Get().ScrapeRequestsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("kind", "reviews")))

	ctx, cancel := context.WithTimeout(ctx, s.scrapeTimeout)
	defer cancel()

	type result struct {
		markdown string
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		markdown, err := s.scraper.Markdown(ctx, pageURL)
		ch <- result{markdown, err}
	}()

	select {
	case r := <-ch:
		return r.markdown, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("scrape exceeded %s: %w", s.scrapeTimeout, ctx.Err())
	}
}
