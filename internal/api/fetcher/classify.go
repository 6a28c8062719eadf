package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/trailwise-ai/trailwise/internal/client/nps"
	"github.com/trailwise-ai/trailwise/internal/types"
)

// trailCandidate is the intermediate record between classification and
// enrichment, persisted to the raw tier.
type trailCandidate struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	URL         string  `json:"url,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	Source      string  `json:"source"` // "places" or "thingstodo"
}

// Title keywords that mark an item as a trail candidate outright.
var trailTitleWords = []string{"trail", "trails", "trailhead", "hike", "hikes", "hiking", "trek"}

// Description phrases counted as trail evidence; two or more mark a
// candidate even without a trail word in the title.
var contentIndicators = []string{
	"hike", "hiking", "trail", "trailhead", "switchback", "summit",
	"round trip", "roundtrip", "out and back", "elevation gain",
	"strenuous", "steep", "miles one way", "mile loop",
}

// Title keywords that mark park infrastructure, never a trail.
var infrastructureWords = []string{
	"parking", "shuttle", "entrance", "visitor center", "campground",
	"amphitheater", "picnic", "museum", "lodge", "store", "restroom",
	"gas station", "ev charging", "ranger station",
}

func normalizeWords(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return " " + strings.Join(strings.Fields(b.String()), " ") + " "
}

// containsWord reports a whole-word (or whole-phrase) match.
func containsWord(text, word string) bool {
	return strings.Contains(normalizeWords(text), " "+word+" ")
}

func countIndicators(description string) int {
	n := 0
	for _, ind := range contentIndicators {
		if containsWord(description, ind) {
			n++
		}
	}
	return n
}

var viewpointRe = regexp.MustCompile(`\b(overlook|point)\b`)

// classifyItem decides trail-candidate vs. not. Viewpoints ("overlook",
// "... point") need corroborating trail evidence since most are drive-up.
func classifyItem(title, description string) bool {
	for _, w := range infrastructureWords {
		if containsWord(title, w) {
			return false
		}
	}
	titleHasTrailWord := false
	for _, w := range trailTitleWords {
		if containsWord(title, w) {
			titleHasTrailWord = true
			break
		}
	}
	indicators := countIndicators(description)

	if viewpointRe.MatchString(strings.ToLower(title)) && !titleHasTrailWord {
		return indicators >= 2
	}
	if titleHasTrailWord {
		return true
	}
	return indicators >= 2
}

// nps raw dumps keep the upstream envelope.
type rawEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

// runClassifyTrails merges raw places and things-to-do by id, classifies
// each item and persists the candidates for the enrichment stage.
func (s *Service) runClassifyTrails(ctx context.Context, parkCode string, progress ProgressFunc) (any, error) {
	_ = ctx
	l := s.logger.With(slog.String("method", "runClassifyTrails"), slog.String("park", parkCode))

	items := map[string]trailCandidate{}
	order := []string{}
	add := func(c trailCandidate) {
		key := c.ID
		if key == "" {
			key = strings.ToLower(c.Title)
		}
		if existing, ok := items[key]; ok {
			// Same record seen on both endpoints: keep the longer description.
			if len(c.Description) > len(existing.Description) {
				existing.Description = c.Description
			}
			items[key] = existing
			return
		}
		items[key] = c
		order = append(order, key)
	}

	var placesRaw rawEnvelope
	if err := s.store.LoadRaw(parkCode, nps.EndpointPlaces, &placesRaw); err == nil {
		for _, raw := range placesRaw.Data {
			p := adaptPlace(raw)
			add(trailCandidate{ID: p.ID, Title: p.Title, Description: p.Description,
				Latitude: p.Latitude, Longitude: p.Longitude, URL: p.URL, Amenities: p.Amenities, Source: "places"})
		}
	} else {
		var places []types.Place
		if err := s.store.LoadFixture(parkCode, FixturePlaces, &places); err != nil {
			return nil, fmt.Errorf("no places data to classify: %w", err)
		}
		for _, p := range places {
			add(trailCandidate{ID: p.ID, Title: p.Title, Description: p.Description,
				Latitude: p.Latitude, Longitude: p.Longitude, URL: p.URL, Amenities: p.Amenities, Source: "places"})
		}
	}

	var thingsRaw rawEnvelope
	if err := s.store.LoadRaw(parkCode, nps.EndpointThingsToDo, &thingsRaw); err == nil {
		for _, raw := range thingsRaw.Data {
			t := adaptThingToDo(raw)
			desc := t.Description
			if desc == "" {
				desc = t.ShortDescription
			}
			add(trailCandidate{ID: t.ID, Title: t.Title, Description: desc,
				Latitude: t.Latitude, Longitude: t.Longitude, URL: t.URL, Source: "thingstodo"})
		}
	}

	var candidates []trailCandidate
	for _, key := range order {
		item := items[key]
		if classifyItem(item.Title, item.Description) {
			candidates = append(candidates, item)
		}
	}

	encoded, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("encoding trail candidates: %w", err)
	}
	if err := s.store.SaveRaw(parkCode, rawTrailCandidates, encoded); err != nil {
		return nil, fmt.Errorf("saving trail candidates: %w", err)
	}
	l.Info("classified trail candidates",
		slog.Int("total_items", len(order)), slog.Int("candidates", len(candidates)))
	return map[string]any{"status": "completed", "candidates": len(candidates)}, nil
}
