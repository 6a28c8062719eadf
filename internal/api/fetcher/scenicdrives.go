package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/trailwise-ai/trailwise/internal/types"
)

// guidePage is one scraped guide kept in the raw dump for re-extraction.
type guidePage struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}

// Suffix words stripped before comparing drive names; "Rim Road" and "Rim
// Road Scenic Drive" are the same drive.
var driveSuffixWords = map[string]bool{
	"road": true, "drive": true, "highway": true, "byway": true, "scenic": true,
}

var parentheticalRe = regexp.MustCompile(`\([^)]*\)`)

func driveKey(name string) string {
	lower := parentheticalRe.ReplaceAllString(strings.ToLower(name), " ")
	var kept []string
	for _, tok := range strings.Fields(normalizeWords(lower)) {
		if !driveSuffixWords[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// runScenicDrives mirrors the photo spot stage for scenic drives, with a
// stricter dedup key and the raw scraped markdown saved alongside the
// extracted records.
func (s *Service) runScenicDrives(ctx context.Context, parkCode string, progress ProgressFunc) (any, error) {
	if s.scraper == nil || s.extractor == nil {
		return nil, errNotConfigured
	}
	l := s.logger.With(slog.String("method", "runScenicDrives"), slog.String("park", parkCode))
	parkName := s.parkName(parkCode)

	links, err := s.scraper.SearchLinks(ctx, fmt.Sprintf("scenic drives %s", parkName))
	if err != nil {
		return nil, fmt.Errorf("searching scenic drive guides: %w", err)
	}
	if len(links) > maxGuidePages {
		links = links[:maxGuidePages]
	}

	seen := map[string]bool{}
	var drives []types.ScenicDrive
	var rawPages []guidePage
	for i, link := range links {
		progress(i+1, len(links), fmt.Sprintf("scraping guide %d of %d", i+1, len(links)))

		markdown, err := s.scraper.Markdown(ctx, link)
		if err != nil {
			l.Warn("guide scrape failed", slog.String("url", link), slog.Any("error", err))
			continue
		}
		rawPages = append(rawPages, guidePage{URL: link, Markdown: markdown})

		extracted, err := s.extractor.ExtractScenicDrives(ctx, parkName, markdown)
		if err != nil {
			l.Warn("scenic drive extraction failed", slog.String("url", link), slog.Any("error", err))
			continue
		}
		for _, drive := range extracted {
			key := driveKey(drive.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			drive.SourceURL = link
			drives = append(drives, drive)
		}
		s.pause(ctx)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	for i := range drives {
		drives[i].Rank = i + 1
	}
	if len(rawPages) > 0 {
		if raw, err := json.Marshal(rawPages); err == nil {
			if err := s.store.SaveRaw(parkCode, "scenic_drives_pages", raw); err != nil {
				l.Warn("saving raw scenic drive pages failed", slog.Any("error", err))
			}
		}
	}
	if err := s.store.SaveFixture(parkCode, FixtureScenicDrives, drives); err != nil {
		return nil, fmt.Errorf("saving scenic drives: %w", err)
	}
	l.Info("collected scenic drives", slog.Int("drives", len(drives)), slog.Int("pages", len(links)))
	return map[string]any{"status": "completed", "drives": len(drives)}, nil
}
