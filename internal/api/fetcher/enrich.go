package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/trailwise-ai/trailwise/internal/types"
)

// minEnrichableDescription is the combined-description floor below which a
// candidate carries too little signal for extraction.
const minEnrichableDescription = 50

// runEnrichTrails turns classified candidates into enriched trail records:
// one extraction call per candidate, difficulty inference when the model
// omits it, then dedup and merge.
func (s *Service) runEnrichTrails(ctx context.Context, parkCode string, progress ProgressFunc) (any, error) {
	if s.extractor == nil {
		return nil, errNotConfigured
	}
	l := s.logger.With(slog.String("method", "runEnrichTrails"), slog.String("park", parkCode))

	var candidates []trailCandidate
	if err := s.store.LoadRaw(parkCode, rawTrailCandidates, &candidates); err != nil {
		return nil, fmt.Errorf("no trail candidates; run classification first: %w", err)
	}
	parkName := s.parkName(parkCode)

	var enriched []types.Trail
	for i, cand := range candidates {
		progress(i+1, len(candidates), fmt.Sprintf("enriching %s", cand.Title))
		if len(strings.TrimSpace(cand.Description)) < minEnrichableDescription {
			continue
		}

		record, err := s.extractor.ExtractTrailEnrichment(ctx, parkName, cand.Title, cand.Description)
		if err != nil {
			l.Warn("trail enrichment failed", slog.String("trail", cand.Title), slog.Any("error", err))
			continue
		}
		if !record.IsValidHikingTrail {
			continue
		}

		trail := types.Trail{
			Name:                   cand.Title,
			ParkCode:               parkCode,
			Description:            record.Description,
			Features:               record.Features,
			SurfaceTypes:           record.SurfaceTypes,
			IsWheelchairAccessible: record.IsWheelchairAccessible,
			IsKidFriendly:          record.IsKidFriendly,
			IsPetFriendly:          record.IsPetFriendly,
			NPSURL:                 cand.URL,
			LastEnriched:           s.now().Format(time.RFC3339),
		}
		if record.LengthMiles != nil {
			trail.LengthMiles = *record.LengthMiles
		}
		if record.ElevationGainFt != nil {
			trail.ElevationGainFt = *record.ElevationGainFt
		}
		if record.RouteType != nil {
			trail.RouteType = *record.RouteType
		}
		if record.EstimatedTime != nil {
			trail.EstimatedTime = *record.EstimatedTime
		}
		if record.Difficulty != nil && *record.Difficulty != "" {
			trail.Difficulty = canonicalDifficulty(*record.Difficulty)
		} else {
			trail.Difficulty = inferDifficulty(trail.LengthMiles, trail.ElevationGainFt, parseHours(trail.EstimatedTime))
		}
		if !trail.IsPetFriendly {
			trail.IsPetFriendly = amenitiesAllowPets(cand.Amenities)
		}

		enriched = append(enriched, trail)
		s.pause(ctx)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	trails := dedupeTrails(enriched)
	if err := s.store.SaveFixture(parkCode, FixtureTrails, trails); err != nil {
		return nil, fmt.Errorf("saving trails: %w", err)
	}
	l.Info("enriched trails", slog.Int("candidates", len(candidates)), slog.Int("trails", len(trails)))
	return map[string]any{"status": "completed", "trails": len(trails)}, nil
}

// canonicalDifficulty folds extractor vocabulary onto the three-level scale.
func canonicalDifficulty(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "easy":
		return types.DifficultyEasy
	case "moderate", "medium":
		return types.DifficultyModerate
	case "hard", "strenuous", "difficult", "very hard":
		return types.DifficultyStrenuous
	default:
		return types.DifficultyModerate
	}
}

// inferDifficulty scores each available metric on a ternary scale and takes
// the worst-over-best reading: any strenuous-band metric wins outright;
// Easy needs every available metric in its band. Bands are empirical:
// Easy ≤3 mi, ≤300 ft, ≤2 h; Strenuous ≥8 mi, ≥1000 ft, ≥5 h.
func inferDifficulty(lengthMiles, elevationFt, hours float64) string {
	var scores []int
	band := func(v, easyMax, hardMin float64) int {
		switch {
		case v >= hardMin:
			return 3
		case v <= easyMax:
			return 1
		default:
			return 2
		}
	}
	if lengthMiles > 0 {
		scores = append(scores, band(lengthMiles, 3, 8))
	}
	if elevationFt > 0 {
		scores = append(scores, band(elevationFt, 300, 1000))
	}
	if hours > 0 {
		scores = append(scores, band(hours, 2, 5))
	}
	if len(scores) == 0 {
		return types.DifficultyModerate
	}
	allEasy := true
	for _, sc := range scores {
		if sc == 3 {
			return types.DifficultyStrenuous
		}
		if sc != 1 {
			allEasy = false
		}
	}
	if allEasy {
		return types.DifficultyEasy
	}
	return types.DifficultyModerate
}

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseHours extracts an upper-bound duration in hours out of free text
// like "2-4 hours" or "45 minutes". Zero means unparseable.
func parseHours(text string) float64 {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	matches := numberRe.FindAllString(lower, -1)
	if len(matches) == 0 {
		return 0
	}
	max := 0.0
	for _, m := range matches {
		if v, err := strconv.ParseFloat(m, 64); err == nil && v > max {
			max = v
		}
	}
	if strings.Contains(lower, "minute") && !strings.Contains(lower, "hour") {
		return max / 60
	}
	return max
}

func amenitiesAllowPets(amenities []string) bool {
	for _, a := range amenities {
		lower := strings.ToLower(a)
		if strings.Contains(lower, "no pet") || strings.Contains(lower, "no dog") {
			return false
		}
		if strings.Contains(lower, "pets allowed") || strings.Contains(lower, "pet friendly") || strings.Contains(lower, "dog") {
			return true
		}
	}
	return false
}

var dedupeStripWords = map[string]bool{
	"trail": true, "trailhead": true, "hike": true, "path": true, "loop": true,
}

// Normalized names that are promotional programs rather than trails.
var promotionalNames = map[string]bool{
	"the hoodoos":      true,
	"hoodoos":          true,
	"junior ranger":    true,
	"ranger program":   true,
}

// dedupeKey builds the normalized grouping name: lowercase, generic suffix
// words removed, "peek-a-boo" folded, apostrophes and hyphens dropped.
func dedupeKey(name string) string {
	lower := strings.ToLower(name)
	lower = strings.ReplaceAll(lower, "peek-a-boo", "peekaboo")
	lower = strings.ReplaceAll(lower, "'", "")
	lower = strings.ReplaceAll(lower, "’", "")
	lower = strings.ReplaceAll(lower, "-", " ")
	var kept []string
	for _, tok := range strings.Fields(normalizeWords(lower)) {
		if !dedupeStripWords[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// trailScore rewards completeness and penalizes promotional phrasing so the
// richest record of a duplicate group survives.
func trailScore(t types.Trail) int {
	score := 0
	if t.Difficulty != "" {
		score++
	}
	if t.LengthMiles > 0 {
		score++
	}
	if t.ElevationGainFt > 0 {
		score++
	}
	if t.RouteType != "" {
		score++
	}
	if t.EstimatedTime != "" {
		score++
	}
	if t.Description != "" {
		score++
	}
	score += len(t.Features)
	lower := strings.ToLower(t.Name)
	if strings.HasPrefix(lower, "hike the ") {
		score -= 3
	}
	if strings.HasSuffix(lower, "trailhead") {
		score -= 2
	}
	return score
}

// mergeMissing fills zero fields of dst from src.
func mergeMissing(dst *types.Trail, src types.Trail) {
	if dst.Difficulty == "" {
		dst.Difficulty = src.Difficulty
	}
	if dst.LengthMiles == 0 {
		dst.LengthMiles = src.LengthMiles
	}
	if dst.ElevationGainFt == 0 {
		dst.ElevationGainFt = src.ElevationGainFt
	}
	if dst.RouteType == "" {
		dst.RouteType = src.RouteType
	}
	if dst.EstimatedTime == "" {
		dst.EstimatedTime = src.EstimatedTime
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
	if len(dst.Features) == 0 {
		dst.Features = src.Features
	}
	if len(dst.SurfaceTypes) == 0 {
		dst.SurfaceTypes = src.SurfaceTypes
	}
	if dst.NPSURL == "" {
		dst.NPSURL = src.NPSURL
	}
	dst.IsKidFriendly = dst.IsKidFriendly || src.IsKidFriendly
	dst.IsPetFriendly = dst.IsPetFriendly || src.IsPetFriendly
	dst.IsWheelchairAccessible = dst.IsWheelchairAccessible || src.IsWheelchairAccessible
}

// dedupeTrails groups by normalized name, keeps the highest-scoring record
// per group and backfills its gaps from the dropped duplicates.
func dedupeTrails(trails []types.Trail) []types.Trail {
	groups := map[string][]types.Trail{}
	var order []string
	for _, t := range trails {
		key := dedupeKey(t.Name)
		if key == "" || promotionalNames[key] {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t)
	}

	out := make([]types.Trail, 0, len(order))
	for _, key := range order {
		group := groups[key]
		best := 0
		for i := 1; i < len(group); i++ {
			if trailScore(group[i]) > trailScore(group[best]) {
				best = i
			}
		}
		winner := group[best]
		for i, t := range group {
			if i != best {
				mergeMissing(&winner, t)
			}
		}
		out = append(out, winner)
	}
	return out
}
