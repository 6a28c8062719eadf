package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trailwise-ai/trailwise/internal/types"
)

func mildWeather() *types.WeatherSummary {
	return &types.WeatherSummary{
		CurrentTempF: 72,
		Condition:    "Sunny",
		Forecast: []types.DailyForecast{
			{Date: "2025-06-10", Condition: "Sunny"},
			{Date: "2025-06-11", Condition: "Partly cloudy"},
			{Date: "2025-06-12", Condition: "Clear"},
		},
	}
}

func TestAnalyzeSafetyGo(t *testing.T) {
	got := AnalyzeSafety(mildWeather(), nil)
	assert.Equal(t, types.SafetyGo, got.Status)
	assert.Empty(t, got.Reasons)
}

func TestAnalyzeSafetyExtremeHeat(t *testing.T) {
	w := mildWeather()
	w.CurrentTempF = 114
	got := AnalyzeSafety(w, nil)
	assert.Equal(t, types.SafetyNoGo, got.Status)
	assert.Contains(t, got.Reasons[0], "Extreme heat")
}

func TestAnalyzeSafetyExtremeCold(t *testing.T) {
	w := mildWeather()
	w.CurrentTempF = -4
	got := AnalyzeSafety(w, nil)
	assert.Equal(t, types.SafetyNoGo, got.Status)
	assert.Contains(t, got.Reasons[0], "Extreme cold")
}

func TestAnalyzeSafetyStormForecastIsCaution(t *testing.T) {
	w := mildWeather()
	w.Forecast[1].Condition = "Thunderstorms possible"
	got := AnalyzeSafety(w, nil)
	assert.Equal(t, types.SafetyCaution, got.Status)
}

func TestAnalyzeSafetyOnlyFirstThreeForecastDays(t *testing.T) {
	w := mildWeather()
	w.Forecast = append(w.Forecast, types.DailyForecast{Date: "2025-06-13", Condition: "Blizzard"})
	got := AnalyzeSafety(w, nil)
	assert.Equal(t, types.SafetyGo, got.Status, "day four must not influence the verdict")
}

func TestAnalyzeSafetyAlertClosureCaution(t *testing.T) {
	alerts := []types.Alert{{Title: "Trail Closure: Angels Landing chains section"}}
	got := AnalyzeSafety(mildWeather(), alerts)
	assert.Equal(t, types.SafetyCaution, got.Status)
}

func TestAnalyzeSafetyParkClosedNoGo(t *testing.T) {
	alerts := []types.Alert{{Title: "Park Closed due to flooding"}}
	got := AnalyzeSafety(mildWeather(), alerts)
	assert.Equal(t, types.SafetyNoGo, got.Status)
}

func TestAnalyzeSafetyInformationalAlertIgnored(t *testing.T) {
	alerts := []types.Alert{{Title: "Park Information: shuttle schedule change"}}
	got := AnalyzeSafety(mildWeather(), alerts)
	assert.Equal(t, types.SafetyGo, got.Status)
}

// Adding an alert or a worse weather day can only keep or escalate the
// status, never lower it.
func TestAnalyzeSafetyMonotonic(t *testing.T) {
	w := mildWeather()
	w.CurrentTempF = 114 // already No-Go

	base := AnalyzeSafety(w, nil)
	assert.Equal(t, types.SafetyNoGo, base.Status)

	withCaution := AnalyzeSafety(w, []types.Alert{{Title: "Trail Closure: west rim"}})
	assert.Equal(t, types.SafetyNoGo, withCaution.Status, "a Caution-grade alert must not lower No-Go")
	assert.Greater(t, len(withCaution.Reasons), len(base.Reasons))

	w2 := mildWeather()
	cautious := AnalyzeSafety(w2, []types.Alert{{Title: "Danger: rockfall area"}})
	assert.Equal(t, types.SafetyCaution, cautious.Status)
	worse := AnalyzeSafety(w2, []types.Alert{
		{Title: "Danger: rockfall area"},
		{Title: "Park Closed for severe weather"},
	})
	assert.Equal(t, types.SafetyNoGo, worse.Status)
}

func TestAnalyzeSafetyNilWeather(t *testing.T) {
	got := AnalyzeSafety(nil, []types.Alert{{Title: "Road closure on scenic drive"}})
	assert.Equal(t, types.SafetyCaution, got.Status)
}
