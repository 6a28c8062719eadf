package fetcher

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/trailwise-ai/trailwise/internal/client/weatherapi"
	"github.com/trailwise-ai/trailwise/internal/types"
)

// Adapters map raw upstream payloads onto internal records. Every field is
// optional upstream; missing keys become zero values, never errors.

// rawField digs a string out of a decoded JSON object, tolerating numbers.
func rawField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func rawFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func rawBool(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true") || v == "1"
	default:
		return false
	}
}

func decodeItem(raw json.RawMessage) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes tags and collapses whitespace.
func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	return strings.Join(strings.Fields(s), " ")
}

func adaptPark(raw json.RawMessage) types.Park {
	m := decodeItem(raw)
	park := types.Park{
		ParkCode:    strings.ToLower(rawField(m, "parkCode")),
		FullName:    rawField(m, "fullName"),
		Description: rawField(m, "description"),
		Latitude:    rawFloat(m, "latitude"),
		Longitude:   rawFloat(m, "longitude"),
		URL:         rawField(m, "url"),
		States:      rawField(m, "states"),
	}

	if contacts, ok := m["contacts"].(map[string]any); ok {
		if phones, ok := contacts["phoneNumbers"].([]any); ok {
			for _, p := range phones {
				if pm, ok := p.(map[string]any); ok {
					if num := rawField(pm, "phoneNumber"); num != "" {
						park.Contacts = append(park.Contacts, types.Contact{Type: "phone", Value: num})
					}
				}
			}
		}
		if emails, ok := contacts["emailAddresses"].([]any); ok {
			for _, e := range emails {
				if em, ok := e.(map[string]any); ok {
					if addr := rawField(em, "emailAddress"); addr != "" {
						park.Contacts = append(park.Contacts, types.Contact{Type: "email", Value: addr})
					}
				}
			}
		}
	}

	park.Images = adaptImages(m["images"])

	if hours, ok := m["operatingHours"].([]any); ok {
		for _, h := range hours {
			hm, ok := h.(map[string]any)
			if !ok {
				continue
			}
			record := types.OperatingHour{
				Name:        rawField(hm, "name"),
				Description: rawField(hm, "description"),
			}
			if std, ok := hm["standardHours"].(map[string]any); ok {
				record.Hours = map[string]string{}
				for day, val := range std {
					if text, ok := val.(string); ok {
						record.Hours[day] = text
					}
				}
			}
			park.OperatingHours = append(park.OperatingHours, record)
		}
	}
	return park
}

func adaptImages(v any) []types.ParkImage {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var images []types.ParkImage
	for _, item := range items {
		im, ok := item.(map[string]any)
		if !ok {
			continue
		}
		img := types.ParkImage{
			Title:   rawField(im, "title"),
			Caption: rawField(im, "caption"),
			URL:     rawField(im, "url"),
			Credit:  rawField(im, "credit"),
		}
		if img.URL != "" {
			images = append(images, img)
		}
	}
	return images
}

func adaptAlert(raw json.RawMessage) types.Alert {
	m := decodeItem(raw)
	return types.Alert{
		ID:          rawField(m, "id"),
		Title:       rawField(m, "title"),
		Description: stripHTML(rawField(m, "description")),
		Category:    rawField(m, "category"),
		URL:         rawField(m, "url"),
		LastUpdated: rawField(m, "lastIndexedDate"),
	}
}

func adaptEvent(raw json.RawMessage) types.Event {
	m := decodeItem(raw)
	event := types.Event{
		ID:          rawField(m, "id"),
		Title:       rawField(m, "title"),
		Description: stripHTML(rawField(m, "description")),
		Location:    rawField(m, "location"),
		DateStart:   rawField(m, "datestart"),
		DateEnd:     rawField(m, "dateend"),
		IsFree:      rawBool(m, "isfree"),
		URL:         rawField(m, "infourl"),
	}
	if times, ok := m["times"].([]any); ok {
		for _, t := range times {
			if tm, ok := t.(map[string]any); ok {
				start, end := rawField(tm, "timestart"), rawField(tm, "timeend")
				if start != "" {
					event.Times = append(event.Times, start+" - "+end)
				}
			}
		}
	}
	return event
}

func adaptCampground(raw json.RawMessage) types.Campground {
	m := decodeItem(raw)
	cg := types.Campground{
		ID:          rawField(m, "id"),
		Name:        rawField(m, "name"),
		Description: stripHTML(rawField(m, "description")),
		Latitude:    rawFloat(m, "latitude"),
		Longitude:   rawFloat(m, "longitude"),
		ReservationURL: rawField(m, "reservationUrl"),
	}
	if campsites, ok := m["campsites"].(map[string]any); ok {
		cg.TotalSites = int(rawFloat(campsites, "totalSites"))
	}
	cg.Reservable = cg.ReservationURL != ""
	if amenities, ok := m["amenities"].(map[string]any); ok {
		for key, val := range amenities {
			if text, ok := val.(string); ok && text != "" && !strings.EqualFold(text, "no") {
				cg.Amenities = append(cg.Amenities, key)
			}
		}
	}
	return cg
}

func adaptVisitorCenter(raw json.RawMessage) types.VisitorCenter {
	m := decodeItem(raw)
	return types.VisitorCenter{
		ID:          rawField(m, "id"),
		Name:        rawField(m, "name"),
		Description: stripHTML(rawField(m, "description")),
		Latitude:    rawFloat(m, "latitude"),
		Longitude:   rawFloat(m, "longitude"),
		URL:         rawField(m, "url"),
	}
}

func adaptWebcam(raw json.RawMessage) types.Webcam {
	m := decodeItem(raw)
	cam := types.Webcam{
		ID:          rawField(m, "id"),
		Title:       rawField(m, "title"),
		Description: stripHTML(rawField(m, "description")),
		URL:         rawField(m, "url"),
		IsActive:    strings.EqualFold(rawField(m, "status"), "active"),
	}
	if images, ok := m["images"].([]any); ok && len(images) > 0 {
		if im, ok := images[0].(map[string]any); ok {
			cam.ImageURL = rawField(im, "url")
		}
	}
	return cam
}

func adaptPlace(raw json.RawMessage) types.Place {
	m := decodeItem(raw)
	place := types.Place{
		ID:          rawField(m, "id"),
		Title:       rawField(m, "title"),
		Description: stripHTML(rawField(m, "bodyText")),
		Latitude:    rawFloat(m, "latitude"),
		Longitude:   rawFloat(m, "longitude"),
		URL:         rawField(m, "url"),
		Images:      adaptImages(m["images"]),
	}
	if place.Description == "" {
		place.Description = stripHTML(rawField(m, "listingDescription"))
	}
	if amenities, ok := m["amenities"].([]any); ok {
		for _, a := range amenities {
			if text, ok := a.(string); ok {
				place.Amenities = append(place.Amenities, text)
			}
		}
	}
	if tags, ok := m["tags"].([]any); ok {
		for _, t := range tags {
			if text, ok := t.(string); ok {
				place.Tags = append(place.Tags, text)
			}
		}
	}
	return place
}

func adaptThingToDo(raw json.RawMessage) types.ThingToDo {
	m := decodeItem(raw)
	thing := types.ThingToDo{
		ID:               rawField(m, "id"),
		Title:            rawField(m, "title"),
		ShortDescription: stripHTML(rawField(m, "shortDescription")),
		Description:      stripHTML(rawField(m, "longDescription")),
		Latitude:         rawFloat(m, "latitude"),
		Longitude:        rawFloat(m, "longitude"),
		Duration:         rawField(m, "duration"),
		URL:              rawField(m, "url"),
	}
	if seasons, ok := m["season"].([]any); ok {
		for _, s := range seasons {
			if text, ok := s.(string); ok {
				thing.Season = append(thing.Season, text)
			}
		}
	}
	if tags, ok := m["tags"].([]any); ok {
		for _, t := range tags {
			if text, ok := t.(string); ok {
				thing.Tags = append(thing.Tags, text)
			}
		}
	}
	return thing
}

func adaptPassportStamp(raw json.RawMessage) types.PassportStamp {
	m := decodeItem(raw)
	return types.PassportStamp{
		ID:          rawField(m, "id"),
		Title:       rawField(m, "label"),
		Description: stripHTML(rawField(m, "description")),
		Type:        rawField(m, "type"),
	}
}

// AdaptAlerts converts raw registry alert items. Used both by the static
// stage and by the orchestrator's daily volatile fetch.
func AdaptAlerts(items []json.RawMessage) []types.Alert {
	alerts := make([]types.Alert, 0, len(items))
	for _, item := range items {
		alerts = append(alerts, adaptAlert(item))
	}
	return alerts
}

// AdaptEvents converts raw registry event items.
func AdaptEvents(items []json.RawMessage) []types.Event {
	events := make([]types.Event, 0, len(items))
	for _, item := range items {
		events = append(events, adaptEvent(item))
	}
	return events
}

// AdaptWeather converts the provider forecast into the daily weather
// summary. The provider's alert list folds into plain strings.
func AdaptWeather(parkCode string, resp *weatherapi.ForecastResponse) types.WeatherSummary {
	summary := types.WeatherSummary{
		ParkCode:     parkCode,
		CurrentTempF: resp.Current.TempF,
		Condition:    resp.Current.Condition.Text,
		WindMph:      resp.Current.WindMph,
		Humidity:     resp.Current.Humidity,
	}
	for i, day := range resp.Forecast.ForecastDay {
		summary.Forecast = append(summary.Forecast, types.DailyForecast{
			Date:         day.Date,
			MinTempF:     day.Day.MinTempF,
			MaxTempF:     day.Day.MaxTempF,
			AvgTempF:     day.Day.AvgTempF,
			ChanceOfRain: day.Day.DailyChanceOfRain,
			Condition:    day.Day.Condition.Text,
			UVIndex:      day.Day.UV,
		})
		if i == 0 {
			summary.Sunrise = day.Astro.Sunrise
			summary.Sunset = day.Astro.Sunset
		}
	}
	for _, alert := range resp.Alerts.Alert {
		text := alert.Headline
		if text == "" {
			text = alert.Event
		}
		if text != "" {
			summary.Alerts = append(summary.Alerts, text)
		}
	}
	return summary
}
