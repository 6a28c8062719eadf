package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trailwise-ai/trailwise/internal/types"
)

const (
	maxGuidePages  = 5
	maxUniqueSpots = 25
)

// runPhotoSpots scrapes photography guides for the park and extracts a
// deduplicated, re-ranked list of photo spots.
func (s *Service) runPhotoSpots(ctx context.Context, parkCode string, progress ProgressFunc) (any, error) {
	if s.scraper == nil || s.extractor == nil {
		return nil, errNotConfigured
	}
	l := s.logger.With(slog.String("method", "runPhotoSpots"), slog.String("park", parkCode))
	parkName := s.parkName(parkCode)

	links, err := s.scraper.SearchLinks(ctx, fmt.Sprintf("best photography spots %s", parkName))
	if err != nil {
		return nil, fmt.Errorf("searching photography guides: %w", err)
	}
	if len(links) > maxGuidePages {
		links = links[:maxGuidePages]
	}

	seen := map[string]bool{}
	var spots []types.PhotoSpot
	for i, link := range links {
		if len(spots) >= maxUniqueSpots {
			break
		}
		progress(i+1, len(links), fmt.Sprintf("scraping guide %d of %d", i+1, len(links)))

		markdown, err := s.scraper.Markdown(ctx, link)
		if err != nil {
			l.Warn("guide scrape failed", slog.String("url", link), slog.Any("error", err))
			continue
		}
		extracted, err := s.extractor.ExtractPhotoSpots(ctx, parkName, markdown)
		if err != nil {
			l.Warn("photo spot extraction failed", slog.String("url", link), slog.Any("error", err))
			continue
		}
		for _, spot := range extracted {
			key := spotKey(spot.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			spot.SourceURL = link
			spots = append(spots, spot)
			if len(spots) >= maxUniqueSpots {
				break
			}
		}
		s.pause(ctx)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	// Emission order becomes the final rank.
	for i := range spots {
		spots[i].Rank = i + 1
	}
	if err := s.store.SaveFixture(parkCode, FixturePhotoSpots, spots); err != nil {
		return nil, fmt.Errorf("saving photo spots: %w", err)
	}
	l.Info("collected photo spots", slog.Int("spots", len(spots)), slog.Int("pages", len(links)))
	return map[string]any{"status": "completed", "spots": len(spots)}, nil
}

func spotKey(name string) string {
	return strings.Join(strings.Fields(normalizeWords(name)), " ")
}
