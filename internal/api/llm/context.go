package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/trailwise-ai/trailwise/internal/api/match"
	"github.com/trailwise-ai/trailwise/internal/types"
)

const maxListItems = 15

// GenerateInput bundles everything the response generator may ground on.
// The orchestrator assembles it; the builder decides what survives into the
// bounded context string.
type GenerateInput struct {
	Intent         types.Intent
	Park           *types.Park
	Weather        *types.WeatherSummary
	Alerts         []types.Alert
	Events         []types.Event
	Campgrounds    []types.Campground
	VisitorCenters []types.VisitorCenter
	Trails         []types.Trail
	Things         []types.ThingToDo
	PhotoSpots     []types.PhotoSpot
	ScenicDrives   []types.ScenicDrive
	Amenities      []types.Amenity
	Safety         types.SafetyAnalysis
	History        []types.ChatMessage
	Now            time.Time
}

// topic flags derived from the query surface; they drive context narrowing.
type queryTopics struct {
	trails     bool
	events     bool
	activities bool
	photos     bool
	amenities  bool
	drives     bool
}

func detectTopics(query string) queryTopics {
	q := strings.ToLower(query)
	contains := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
	return queryTopics{
		trails:     contains("trail", "hike", "hiking", "backpack"),
		events:     contains("event", "program", "ranger talk"),
		activities: contains("activity", "activities", "things to do", "what to do"),
		photos:     contains("photo", "photography", "picture", "sunset spot", "sunrise spot"),
		amenities:  contains("gas", "fuel", "restaurant", "food", "grocery", "medical", "hospital", "pharmacy", "ev charg", "amenit"),
		drives:     contains("scenic drive", "drive", "road trip"),
	}
}

func (t queryTopics) any() bool {
	return t.trails || t.events || t.activities || t.photos || t.amenities || t.drives
}

// isBroadQuery marks general chat with no topic surface, "tell me about"
// phrasing, or a very short query; those get the park overview template.
func isBroadQuery(query string, topics queryTopics) bool {
	if topics.any() {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(query))
	return strings.Contains(q, "tell me about") || len(strings.Fields(q)) <= 4
}

// buildDataContext renders the bounded multi-source context block. All
// markdown links in the source data are preserved.
func buildDataContext(in GenerateInput) string {
	var b strings.Builder
	topics := detectTopics(in.Intent.RawQuery)
	targetsOnly := (in.Intent.ResponseType == types.ResponseReviews || in.Intent.ResponseType == types.ResponseEntityLookup) &&
		len(in.Intent.ReviewTargets) > 0

	if in.Park != nil {
		fmt.Fprintf(&b, "# Park: %s (%s)\n\n", in.Park.FullName, in.Park.ParkCode)
		if !targetsOnly && in.Park.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", in.Park.Description)
		}
	}

	if !targetsOnly {
		writeWeatherSection(&b, in.Weather, in.Alerts)
		writeSafetySection(&b, in.Safety)
	}

	trails := in.Trails
	if targetsOnly {
		trails = restrictToTargets(trails, in.Intent.ReviewTargets)
	}
	writeTrailsSection(&b, trails, in.Alerts, targetsOnly)

	if targetsOnly {
		// Unrelated sections are suppressed for targeted lookups.
		return b.String()
	}

	if !topics.trails || topics.activities {
		writeThingsSection(&b, in.Things, topics.trails)
	}
	if topics.photos || !topics.any() {
		writePhotoSpotsSection(&b, in.PhotoSpots)
	}
	if topics.drives || !topics.any() {
		writeScenicDrivesSection(&b, in.ScenicDrives)
	}
	if topics.amenities {
		writeAmenitiesSection(&b, in.Amenities)
	}
	writeEventsSection(&b, in.Events)
	if !topics.any() || in.Intent.ResponseType == types.ResponseItinerary {
		writeCampgroundsSection(&b, in.Campgrounds)
		writeVisitorCentersSection(&b, in.VisitorCenters)
	}

	return b.String()
}

func writeWeatherSection(b *strings.Builder, w *types.WeatherSummary, alerts []types.Alert) {
	if w == nil {
		return
	}
	b.WriteString("## Current Weather\n")
	fmt.Fprintf(b, "Now: %.0f°F, %s, wind %.0f mph, humidity %.0f%%\n", w.CurrentTempF, w.Condition, w.WindMph, w.Humidity)
	if w.Sunrise != "" || w.Sunset != "" {
		fmt.Fprintf(b, "Sunrise %s, sunset %s\n", w.Sunrise, w.Sunset)
	}
	days := w.Forecast
	if len(days) > 3 {
		days = days[:3]
	}
	for _, d := range days {
		fmt.Fprintf(b, "- %s: %.0f-%.0f°F, %s, %.0f%% chance of rain\n", d.Date, d.MinTempF, d.MaxTempF, d.Condition, d.ChanceOfRain)
	}
	if len(w.Alerts) > 0 {
		b.WriteString("Weather alerts:\n")
		for _, a := range capStrings(w.Alerts, maxListItems) {
			fmt.Fprintf(b, "- %s\n", a)
		}
	}
	if len(alerts) > 0 {
		b.WriteString("Park alerts:\n")
		for _, a := range capAlerts(alerts, maxListItems) {
			fmt.Fprintf(b, "- %s\n", a.Title)
		}
	}
	b.WriteString("\n")
}

func writeSafetySection(b *strings.Builder, safety types.SafetyAnalysis) {
	if safety.Status == "" {
		return
	}
	fmt.Fprintf(b, "## Safety Assessment: %s\n", safety.Status)
	for _, r := range safety.Reasons {
		fmt.Fprintf(b, "- %s\n", r)
	}
	b.WriteString("\n")
}

// writeTrailsSection renders each trail on one line with any matching alert
// inlined, plus an image tag when available.
func writeTrailsSection(b *strings.Builder, trails []types.Trail, alerts []types.Alert, detailed bool) {
	if len(trails) == 0 {
		return
	}
	b.WriteString("## Trails\n")
	if len(trails) > maxListItems {
		trails = trails[:maxListItems]
	}
	for _, t := range trails {
		b.WriteString(formatTrailLine(t, alerts))
		if detailed {
			writeTrailDetail(b, t)
		}
	}
	b.WriteString("\n")
}

func formatTrailLine(t types.Trail, alerts []types.Alert) string {
	name := t.Name
	if link := t.AllTrailsURL; link != "" {
		name = fmt.Sprintf("[%s](%s)", t.Name, link)
	} else if t.NPSURL != "" {
		name = fmt.Sprintf("[%s](%s)", t.Name, t.NPSURL)
	}

	difficulty := t.Difficulty
	if difficulty == "" {
		difficulty = "Unrated"
	}

	line := fmt.Sprintf("- **%s** (%s, %.1f mi) — %.1f/5", name, difficulty, t.LengthMiles, t.AverageRating)
	for _, a := range MatchingAlerts(alerts, t.Name) {
		line += fmt.Sprintf(" ⚠️ ALERT: %s", a.Title)
	}
	line += "\n"
	return line
}

func writeTrailDetail(b *strings.Builder, t types.Trail) {
	if t.Description != "" {
		fmt.Fprintf(b, "  %s\n", t.Description)
	}
	if t.ElevationGainFt > 0 || t.RouteType != "" || t.EstimatedTime != "" {
		fmt.Fprintf(b, "  Elevation gain %.0f ft, %s, typical time %s\n", t.ElevationGainFt, t.RouteType, t.EstimatedTime)
	}
	if len(t.Features) > 0 {
		fmt.Fprintf(b, "  Features: %s\n", strings.Join(t.Features, ", "))
	}
	for i, r := range t.RecentReviews {
		if i >= maxExtractedReviews {
			break
		}
		fmt.Fprintf(b, "  Review by %s (%s, %.0f/5): %s\n", r.Author, r.Date, r.Rating, r.Text)
	}
}

func writeThingsSection(b *strings.Builder, things []types.ThingToDo, excludeHiking bool) {
	if len(things) == 0 {
		return
	}
	b.WriteString("## Things To Do\n")
	count := 0
	for _, thing := range things {
		if count >= maxListItems {
			break
		}
		if excludeHiking && hasHikingTag(thing) {
			continue
		}
		desc := thing.ShortDescription
		if desc == "" {
			desc = thing.Description
		}
		if thing.URL != "" {
			fmt.Fprintf(b, "- [%s](%s): %s\n", thing.Title, thing.URL, firstSentence(desc))
		} else {
			fmt.Fprintf(b, "- %s: %s\n", thing.Title, firstSentence(desc))
		}
		count++
	}
	b.WriteString("\n")
}

func hasHikingTag(t types.ThingToDo) bool {
	for _, tag := range t.Tags {
		lt := strings.ToLower(tag)
		if strings.Contains(lt, "hik") || strings.Contains(lt, "trail") {
			return true
		}
	}
	return false
}

func writePhotoSpotsSection(b *strings.Builder, spots []types.PhotoSpot) {
	if len(spots) == 0 {
		return
	}
	b.WriteString("## Photography Spots\n")
	if len(spots) > maxListItems {
		spots = spots[:maxListItems]
	}
	for _, s := range spots {
		fmt.Fprintf(b, "- #%d %s: %s", s.Rank, s.Name, s.Description)
		if len(s.BestTimeOfDay) > 0 {
			fmt.Fprintf(b, " Best at: %s.", strings.Join(s.BestTimeOfDay, ", "))
		}
		if s.ImageURL != "" {
			fmt.Fprintf(b, " ![%s](%s)", s.Name, s.ImageURL)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeScenicDrivesSection(b *strings.Builder, drives []types.ScenicDrive) {
	if len(drives) == 0 {
		return
	}
	b.WriteString("## Scenic Drives\n")
	if len(drives) > maxListItems {
		drives = drives[:maxListItems]
	}
	for _, d := range drives {
		fmt.Fprintf(b, "- #%d %s: %s", d.Rank, d.Name, d.Description)
		if len(d.Highlights) > 0 {
			fmt.Fprintf(b, " Highlights: %s.", strings.Join(d.Highlights, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// Amenity category caps: at most 8 per human-labeled group.
const maxPerAmenityCategory = 8

func amenityGroup(category string) string {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "restaurant"), strings.Contains(c, "food"), strings.Contains(c, "grocery"), strings.Contains(c, "cafe"):
		return "Restaurants & Food"
	case strings.Contains(c, "gas"), strings.Contains(c, "fuel"), strings.Contains(c, "ev"), strings.Contains(c, "charging"):
		return "Gas & Fuel"
	case strings.Contains(c, "medical"), strings.Contains(c, "hospital"), strings.Contains(c, "clinic"), strings.Contains(c, "pharmacy"):
		return "Medical"
	default:
		return "Other Services"
	}
}

func writeAmenitiesSection(b *strings.Builder, amenities []types.Amenity) {
	if len(amenities) == 0 {
		return
	}
	b.WriteString("## Nearby Amenities\n")
	groups := map[string][]types.Amenity{}
	order := []string{"Restaurants & Food", "Gas & Fuel", "Medical", "Other Services"}
	for _, a := range amenities {
		g := amenityGroup(a.Category)
		if len(groups[g]) < maxPerAmenityCategory {
			groups[g] = append(groups[g], a)
		}
	}
	for _, g := range order {
		if len(groups[g]) == 0 {
			continue
		}
		fmt.Fprintf(b, "### %s\n", g)
		for _, a := range groups[g] {
			fmt.Fprintf(b, "- %s", a.Name)
			if a.HubName != "" {
				fmt.Fprintf(b, " (near %s)", a.HubName)
			}
			if a.DistanceMiles > 0 {
				fmt.Fprintf(b, ", %.1f mi", a.DistanceMiles)
			}
			if a.Address != "" {
				fmt.Fprintf(b, " — %s", a.Address)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
}

func writeEventsSection(b *strings.Builder, events []types.Event) {
	if len(events) == 0 {
		return
	}
	b.WriteString("## Events\n")
	if len(events) > maxListItems {
		events = events[:maxListItems]
	}
	for _, e := range events {
		fmt.Fprintf(b, "- %s (%s)", e.Title, e.DateStart)
		if e.Location != "" {
			fmt.Fprintf(b, " at %s", e.Location)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeCampgroundsSection(b *strings.Builder, campgrounds []types.Campground) {
	if len(campgrounds) == 0 {
		return
	}
	b.WriteString("## Campgrounds\n")
	if len(campgrounds) > maxListItems {
		campgrounds = campgrounds[:maxListItems]
	}
	for _, c := range campgrounds {
		fmt.Fprintf(b, "- %s (%d sites)", c.Name, c.TotalSites)
		if c.ReservationURL != "" {
			fmt.Fprintf(b, " [reserve](%s)", c.ReservationURL)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeVisitorCentersSection(b *strings.Builder, centers []types.VisitorCenter) {
	if len(centers) == 0 {
		return
	}
	b.WriteString("## Visitor Centers\n")
	if len(centers) > maxListItems {
		centers = centers[:maxListItems]
	}
	for _, vc := range centers {
		if vc.URL != "" {
			fmt.Fprintf(b, "- [%s](%s)\n", vc.Name, vc.URL)
		} else {
			fmt.Fprintf(b, "- %s\n", vc.Name)
		}
	}
	b.WriteString("\n")
}

// restrictToTargets keeps trails whose names fuzzily match any target.
func restrictToTargets(trails []types.Trail, targets []string) []types.Trail {
	var kept []types.Trail
	for _, t := range trails {
		for _, target := range targets {
			if match.Names(t.Name, target) {
				kept = append(kept, t)
				break
			}
		}
	}
	return kept
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, ". "); idx > 0 {
		return s[:idx+1]
	}
	if len(s) > 220 {
		return s[:220] + "…"
	}
	return s
}

func capStrings(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func capAlerts(items []types.Alert, n int) []types.Alert {
	if len(items) > n {
		return items[:n]
	}
	return items
}
