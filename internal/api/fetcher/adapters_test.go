package fetcher

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trailwise-ai/trailwise/internal/client/weatherapi"
)

func TestAdaptParkToleratesStringCoordinates(t *testing.T) {
	raw := json.RawMessage(`{
		"parkCode": "BRCA",
		"fullName": "Bryce Canyon National Park",
		"latitude": "37.5930",
		"longitude": "-112.1871",
		"contacts": {"phoneNumbers": [{"phoneNumber": "435-834-5322"}]}
	}`)
	park := adaptPark(raw)
	assert.Equal(t, "brca", park.ParkCode)
	assert.InDelta(t, 37.5930, park.Latitude, 1e-9)
	assert.InDelta(t, -112.1871, park.Longitude, 1e-9)
	assert.Len(t, park.Contacts, 1)
	assert.Equal(t, "phone", park.Contacts[0].Type)
}

func TestAdaptParkMissingKeys(t *testing.T) {
	park := adaptPark(json.RawMessage(`{"parkCode":"zion"}`))
	assert.Equal(t, "zion", park.ParkCode)
	assert.Zero(t, park.Latitude)
	assert.Empty(t, park.Contacts)

	// Malformed payloads become empty records, never panics.
	assert.Zero(t, adaptPark(json.RawMessage(`not json`)).ParkCode)
}

func TestAdaptAlertStripsHTML(t *testing.T) {
	alert := adaptAlert(json.RawMessage(`{
		"title": "Trail Closure",
		"description": "<p>The trail is <b>closed</b> due to rockfall.</p>",
		"category": "Park Closure"
	}`))
	assert.Equal(t, "The trail is closed due to rockfall.", alert.Description)
}

func TestAdaptWeatherMapsForecastAndAlerts(t *testing.T) {
	var resp weatherapi.ForecastResponse
	err := json.Unmarshal([]byte(`{
		"current": {"temp_f": 88.5, "condition": {"text": "Sunny"}, "wind_mph": 6.5, "humidity": 20},
		"forecast": {"forecastday": [
			{"date": "2026-08-31",
			 "day": {"maxtemp_f": 95, "mintemp_f": 65, "condition": "Clear", "daily_chance_of_rain": 10},
			 "astro": {"sunrise": "06:45 AM", "sunset": "07:52 PM"}}
		]},
		"alerts": {"alert": [{"headline": "Excessive Heat Warning"}]}
	}`), &resp)
	assert.NoError(t, err)

	summary := AdaptWeather("zion", &resp)
	assert.Equal(t, "zion", summary.ParkCode)
	assert.Equal(t, 88.5, summary.CurrentTempF)
	assert.Equal(t, "Sunny", summary.Condition)
	assert.Len(t, summary.Forecast, 1)
	// Bare-string condition shape tolerated.
	assert.Equal(t, "Clear", summary.Forecast[0].Condition)
	assert.Equal(t, "06:45 AM", summary.Sunrise)
	assert.Equal(t, []string{"Excessive Heat Warning"}, summary.Alerts)
}
