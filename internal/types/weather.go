package types

// WeatherSummary is the daily-volatile weather record for a park.
type WeatherSummary struct {
	ParkCode     string          `json:"park_code"`
	CurrentTempF float64         `json:"current_temp_f"`
	Condition    string          `json:"condition"`
	WindMph      float64         `json:"wind_mph,omitempty"`
	Humidity     float64         `json:"humidity,omitempty"`
	Forecast     []DailyForecast `json:"forecast,omitempty"`
	Sunrise      string          `json:"sunrise,omitempty"`
	Sunset       string          `json:"sunset,omitempty"`
	Alerts       []string        `json:"alerts,omitempty"`
}

// DailyForecast is one day of forecast data.
type DailyForecast struct {
	Date         string  `json:"date"`
	MinTempF     float64 `json:"min_temp_f"`
	MaxTempF     float64 `json:"max_temp_f"`
	AvgTempF     float64 `json:"avg_temp_f,omitempty"`
	ChanceOfRain float64 `json:"chance_of_rain,omitempty"`
	Condition    string  `json:"condition,omitempty"`
	UVIndex      float64 `json:"uv_index,omitempty"`
}

// ZonalForecast extends a weather summary with the zone it was sampled at
// and its deviation from the park's base zone.
type ZonalForecast struct {
	WeatherSummary
	ZoneName      string   `json:"zone_name"`
	ElevationFt   float64  `json:"elevation_ft"`
	DeltaFromBase *float64 `json:"delta_from_base,omitempty"`
}

// Safety verdict statuses, ordered: Go < Caution < No-Go. AnalyzeSafety
// never moves the status left.
const (
	SafetyGo      = "Go"
	SafetyCaution = "Caution"
	SafetyNoGo    = "No-Go"
)

// SafetyAnalysis is the deterministic rollup of weather plus alerts.
type SafetyAnalysis struct {
	Status  string   `json:"status"`
	Reasons []string `json:"reasons,omitempty"`
}

// Amenity is one place-search result anchored to a hub.
type Amenity struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Address       string  `json:"address,omitempty"`
	Latitude      float64 `json:"latitude,omitempty"`
	Longitude     float64 `json:"longitude,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
	RatingCount   int     `json:"rating_count,omitempty"`
	Phone         string  `json:"phone,omitempty"`
	Website       string  `json:"website,omitempty"`
	DistanceMiles float64 `json:"distance_miles,omitempty"`
	HubName       string  `json:"hub_name,omitempty"`
}

// Hub anchors amenity searches: a park entrance or a visitor center.
type Hub struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"` // "entrance" or "visitor_center"
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
