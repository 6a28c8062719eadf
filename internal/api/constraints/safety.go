package constraints

import (
	"fmt"
	"strings"

	"github.com/trailwise-ai/trailwise/internal/types"
)

const (
	extremeHeatF = 110
	extremeColdF = 10
)

var stormWords = []string{"snow", "blizzard", "storm", "thunder"}

// AnalyzeSafety derives a Go / Caution / No-Go verdict from current weather
// and active alerts. Later rules may raise but never lower the status.
func AnalyzeSafety(weather *types.WeatherSummary, alerts []types.Alert) types.SafetyAnalysis {
	result := types.SafetyAnalysis{Status: types.SafetyGo}

	if weather != nil {
		if weather.CurrentTempF > extremeHeatF {
			escalate(&result, types.SafetyNoGo,
				fmt.Sprintf("Extreme heat: current temperature %.0f°F exceeds %d°F", weather.CurrentTempF, extremeHeatF))
		}
		if weather.CurrentTempF < extremeColdF {
			escalate(&result, types.SafetyNoGo,
				fmt.Sprintf("Extreme cold: current temperature %.0f°F is below %d°F", weather.CurrentTempF, extremeColdF))
		}
		days := weather.Forecast
		if len(days) > 3 {
			days = days[:3]
		}
		for _, day := range days {
			cond := strings.ToLower(day.Condition)
			for _, w := range stormWords {
				if strings.Contains(cond, w) {
					escalate(&result, types.SafetyCaution,
						fmt.Sprintf("Forecast for %s: %s", day.Date, day.Condition))
					break
				}
			}
		}
	}

	for _, alert := range alerts {
		title := strings.ToLower(alert.Title)
		if !strings.Contains(title, "closure") && !strings.Contains(title, "danger") && !strings.Contains(title, "closed") {
			continue
		}
		if strings.Contains(title, "park") && strings.Contains(title, "closed") {
			escalate(&result, types.SafetyNoGo, "Park closure: "+alert.Title)
		} else {
			escalate(&result, types.SafetyCaution, "Active alert: "+alert.Title)
		}
	}

	return result
}

func statusRank(status string) int {
	switch status {
	case types.SafetyNoGo:
		return 2
	case types.SafetyCaution:
		return 1
	default:
		return 0
	}
}

// escalate appends the reason and raises the status if target is worse than
// the current status. The status never moves back toward Go.
func escalate(r *types.SafetyAnalysis, target, reason string) {
	r.Reasons = append(r.Reasons, reason)
	if statusRank(target) > statusRank(r.Status) {
		r.Status = target
	}
}
