package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/trailwise-ai/trailwise/internal/api/datastore"
	"github.com/trailwise-ai/trailwise/internal/types"
)

// Hub derivation thresholds, all in miles.
const (
	maxHubDistanceFromPark = 50
	hubDedupeRadius        = 3
	entranceDominanceRadius = 25
	maxAmenitiesPerCategory = 5
	placeSearchZoom         = 12
)

// hubWhitelist marks titles that can anchor amenity searches.
var hubWhitelist = []string{"entrance", "visitor center", "information station", "welcome center"}

// hubBlacklist rejects infrastructure that whitelist words would otherwise
// pull in ("North Entrance Gas Station").
var hubBlacklist = []string{
	"ev charging", "gas station", "market", "store", "parking", "stop",
	"amphitheater", "shuttle",
}

// parkCentroids pins the known center of each supported park; registry
// place coordinates are occasionally wrong by whole degrees, so hubs are
// sanity-checked against this table.
var parkCentroids = map[string]struct{ lat, lon float64 }{
	"yose": {37.8651, -119.5383},
	"zion": {37.2982, -113.0263},
	"grca": {36.1069, -112.1129},
	"brca": {37.5930, -112.1871},
	"glac": {48.7596, -113.7870},
	"glba": {58.6658, -136.9002},
	"grte": {43.7904, -110.6818},
}

// Fixed place-search queries per hub, with the human category label each
// one consolidates under.
var amenityQueries = []struct {
	query    string
	category string
}{
	{"hospital urgent care", "Medical"},
	{"gas station", "Gas Station"},
	{"ev charging station", "EV Charging"},
	{"restaurant", "Restaurant"},
	{"grocery store", "Grocery Store"},
}

// runAmenities derives search hubs from entrances and visitor centers, runs
// the fixed query set against each hub and consolidates the top results per
// category into one fixture.
func (s *Service) runAmenities(ctx context.Context, parkCode string, progress ProgressFunc) (any, error) {
	if s.search == nil {
		return nil, errNotConfigured
	}
	l := s.logger.With(slog.String("method", "runAmenities"), slog.String("park", parkCode))

	hubs, err := s.deriveHubs(parkCode)
	if err != nil {
		return nil, err
	}
	if len(hubs) == 0 {
		return nil, fmt.Errorf("no amenity hubs derivable for %s", parkCode)
	}

	var consolidated []types.Amenity
	for i, hub := range hubs {
		progress(i+1, len(hubs), fmt.Sprintf("searching near %s", hub.Name))

		// Per-hub results cache: categories already fetched are not re-queried.
		byCategory := map[string][]types.Amenity{}
		if err := s.store.LoadAmenities(parkCode, hub.Name, &byCategory); err != nil && !errors.Is(err, datastore.ErrMiss) {
			byCategory = map[string][]types.Amenity{}
		}

		for _, q := range amenityQueries {
			if _, cached := byCategory[q.category]; cached {
				continue
			}
			places, err := s.search.SearchPlaces(ctx, q.query, hub.Latitude, hub.Longitude, placeSearchZoom)
			if err != nil {
				l.Warn("place search failed", slog.String("hub", hub.Name),
					slog.String("query", q.query), slog.Any("error", err))
				continue
			}
			var results []types.Amenity
			for _, p := range places {
				results = append(results, types.Amenity{
					Name:          p.Title,
					Category:      q.category,
					Address:       p.Address,
					Latitude:      p.Latitude,
					Longitude:     p.Longitude,
					Rating:        p.Rating,
					RatingCount:   p.RatingCount,
					Phone:         p.PhoneNumber,
					Website:       p.Website,
					DistanceMiles: round1(haversineMiles(hub.Latitude, hub.Longitude, p.Latitude, p.Longitude)),
					HubName:       hub.Name,
				})
			}
			byCategory[q.category] = results
		}

		if err := s.store.SaveAmenities(parkCode, hub.Name, byCategory); err != nil {
			l.Warn("saving hub amenities failed", slog.String("hub", hub.Name), slog.Any("error", err))
		}

		for _, q := range amenityQueries {
			results := byCategory[q.category]
			sort.SliceStable(results, func(a, b int) bool {
				return results[a].DistanceMiles < results[b].DistanceMiles
			})
			if len(results) > maxAmenitiesPerCategory {
				results = results[:maxAmenitiesPerCategory]
			}
			consolidated = append(consolidated, results...)
		}
	}

	if err := s.store.SaveFixture(parkCode, FixtureAmenities, consolidated); err != nil {
		return nil, fmt.Errorf("saving consolidated amenities: %w", err)
	}
	l.Info("consolidated amenities", slog.Int("hubs", len(hubs)), slog.Int("amenities", len(consolidated)))
	return map[string]any{"status": "completed", "hubs": len(hubs), "amenities": len(consolidated)}, nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// deriveHubs builds the entrance/visitor-center hub list from fixtures.
func (s *Service) deriveHubs(parkCode string) ([]types.Hub, error) {
	var candidates []types.Hub

	var places []types.Place
	if err := s.store.LoadFixture(parkCode, FixturePlaces, &places); err == nil {
		for _, p := range places {
			if hubEligible(p.Title) && p.Latitude != 0 {
				candidates = append(candidates, types.Hub{
					Name: p.Title, Kind: hubKind(p.Title), Latitude: p.Latitude, Longitude: p.Longitude,
				})
			}
		}
	}
	var centers []types.VisitorCenter
	if err := s.store.LoadFixture(parkCode, FixtureVisitorCenters, &centers); err == nil {
		for _, vc := range centers {
			if vc.Latitude == 0 || !hubEligible(vc.Name) {
				continue
			}
			candidates = append(candidates, types.Hub{
				Name: vc.Name, Kind: "visitor_center", Latitude: vc.Latitude, Longitude: vc.Longitude,
			})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	centroid, ok := parkCentroids[strings.ToLower(parkCode)]
	if !ok {
		var park types.Park
		if err := s.store.LoadFixture(parkCode, FixtureParkDetails, &park); err != nil || park.Latitude == 0 {
			return nil, fmt.Errorf("no centroid known for %s", parkCode)
		}
		centroid.lat, centroid.lon = park.Latitude, park.Longitude
	}

	// Coordinate sanity: registry items sometimes carry wrong coordinates.
	var nearby []types.Hub
	for _, h := range candidates {
		if haversineMiles(centroid.lat, centroid.lon, h.Latitude, h.Longitude) <= maxHubDistanceFromPark {
			nearby = append(nearby, h)
		}
	}

	// Spatial dedupe: two hubs inside the radius are the same stop.
	var deduped []types.Hub
	for _, h := range nearby {
		dup := false
		for _, kept := range deduped {
			if haversineMiles(h.Latitude, h.Longitude, kept.Latitude, kept.Longitude) <= hubDedupeRadius {
				dup = true
				break
			}
		}
		if !dup {
			deduped = append(deduped, h)
		}
	}

	// Entrance dominance: a visitor center near an entrance adds nothing.
	var hubs []types.Hub
	for _, h := range deduped {
		if h.Kind == "visitor_center" {
			dominated := false
			for _, other := range deduped {
				if other.Kind == "entrance" &&
					haversineMiles(h.Latitude, h.Longitude, other.Latitude, other.Longitude) <= entranceDominanceRadius {
					dominated = true
					break
				}
			}
			if dominated {
				continue
			}
		}
		hubs = append(hubs, h)
	}
	return hubs, nil
}

func hubEligible(title string) bool {
	lower := strings.ToLower(title)
	for _, w := range hubBlacklist {
		if strings.Contains(lower, w) {
			return false
		}
	}
	for _, w := range hubWhitelist {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func hubKind(title string) string {
	if strings.Contains(strings.ToLower(title), "entrance") {
		return "entrance"
	}
	return "visitor_center"
}
