package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/trailwise-ai/trailwise/internal/types"
)

// runRankings scrapes a third-party hiking index for the park, extracts a
// ranked trail list and merges it into the local trail fixture. Ranked
// entries with no local counterpart are appended as minimal records.
func (s *Service) runRankings(ctx context.Context, parkCode string, progress ProgressFunc) (any, error) {
	if s.scraper == nil || s.extractor == nil {
		return nil, errNotConfigured
	}
	l := s.logger.With(slog.String("method", "runRankings"), slog.String("park", parkCode))
	parkName := s.parkName(parkCode)

	progress(1, 3, "locating hiking index page")
	links, err := s.scraper.SearchLinks(ctx, fmt.Sprintf("alltrails best trails %s", parkName))
	if err != nil {
		return nil, fmt.Errorf("searching for hiking index: %w", err)
	}
	pageURL := ""
	for _, link := range links {
		if strings.Contains(link, "alltrails.com") {
			pageURL = link
			break
		}
	}
	if pageURL == "" && len(links) > 0 {
		pageURL = links[0]
	}
	if pageURL == "" {
		return nil, fmt.Errorf("no hiking index page found for %s", parkName)
	}

	progress(2, 3, "scraping hiking index")
	markdown, err := s.scraper.Markdown(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("scraping %s: %w", pageURL, err)
	}

	progress(3, 3, "extracting rankings")
	rankings, err := s.extractor.ExtractRankings(ctx, parkName, markdown)
	if err != nil {
		return nil, fmt.Errorf("extracting rankings: %w", err)
	}
	if err := s.store.SaveFixture(parkCode, FixtureRankings, rankings); err != nil {
		return nil, fmt.Errorf("saving rankings: %w", err)
	}

	var trails []types.Trail
	if err := s.store.LoadFixture(parkCode, FixtureTrails, &trails); err != nil {
		l.Warn("no trail fixture to merge rankings into")
		return map[string]any{"status": "completed", "rankings": len(rankings), "merged": 0}, nil
	}

	merged, appended := mergeRankings(trails, rankings, parkCode)
	for i := range merged {
		merged[i].EstimatedTime = normalizeDashes(merged[i].EstimatedTime)
	}
	if err := s.store.SaveFixture(parkCode, FixtureTrails, merged); err != nil {
		return nil, fmt.Errorf("saving merged trails: %w", err)
	}
	l.Info("merged rankings", slog.Int("rankings", len(rankings)), slog.Int("appended", appended))
	return map[string]any{"status": "completed", "rankings": len(rankings), "appended": appended}, nil
}

// rankingKey is the heavy normalization used to match ranked entries to
// local trails: lowercase, generic words out, "falls" folded to "fall",
// "via ..." approach qualifiers dropped, then alphanumerics only.
func rankingKey(name string) string {
	lower := strings.ToLower(name)
	if i := strings.Index(lower, " via "); i >= 0 {
		lower = lower[:i]
	}
	lower = strings.ReplaceAll(lower, "falls", "fall")
	var kept []string
	for _, tok := range strings.Fields(normalizeWords(lower)) {
		if tok == "trail" || tok == "trailhead" || tok == "the" {
			continue
		}
		kept = append(kept, tok)
	}
	var b strings.Builder
	for _, r := range strings.Join(kept, "") {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// mergeRankings matches each ranked entry to a local trail by normalized
// key, filling gaps and recording the third-party attributes under their
// own namespace. Unmatched entries become minimal appended trails.
func mergeRankings(trails []types.Trail, rankings []types.Ranking, parkCode string) ([]types.Trail, int) {
	index := map[string]int{}
	for i, t := range trails {
		index[rankingKey(t.Name)] = i
	}

	appended := 0
	for _, r := range rankings {
		key := rankingKey(r.Name)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			t := &trails[i]
			t.PopularityRank = r.Rank
			t.AllTrailsURL = r.URL
			t.AllTrailsDifficulty = r.Difficulty
			t.AllTrailsLength = r.LengthMiles
			t.AllTrailsElevation = r.ElevationFt
			if t.ReviewsURL == "" {
				t.ReviewsURL = r.ReviewsURL
			}
			if t.Difficulty == "" && r.Difficulty != "" {
				t.Difficulty = canonicalDifficulty(r.Difficulty)
			}
			if t.LengthMiles == 0 {
				t.LengthMiles = r.LengthMiles
			}
			if t.ElevationGainFt == 0 {
				t.ElevationGainFt = r.ElevationFt
			}
			continue
		}
		minimal := types.Trail{
			Name:                r.Name,
			ParkCode:            parkCode,
			LengthMiles:         r.LengthMiles,
			ElevationGainFt:     r.ElevationFt,
			PopularityRank:      r.Rank,
			AllTrailsURL:        r.URL,
			AllTrailsDifficulty: r.Difficulty,
			AllTrailsLength:     r.LengthMiles,
			AllTrailsElevation:  r.ElevationFt,
			ReviewsURL:          r.ReviewsURL,
		}
		if r.Difficulty != "" {
			minimal.Difficulty = canonicalDifficulty(r.Difficulty)
		}
		trails = append(trails, minimal)
		index[key] = len(trails) - 1
		appended++
	}
	return trails, appended
}

var dashReplacer = strings.NewReplacer("–", "-", "—", "-", "−", "-")

func normalizeDashes(s string) string {
	return dashReplacer.Replace(s)
}
