package types

// Park is the permanent fixture record for a supported national park.
// It is replaced wholesale on refresh; only the weather-zone fields are
// auto-filled after the fact when absent.
type Park struct {
	ParkCode        string          `json:"park_code"`
	FullName        string          `json:"full_name"`
	Description     string          `json:"description"`
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	URL             string          `json:"url,omitempty"`
	States          string          `json:"states,omitempty"`
	Contacts        []Contact       `json:"contacts,omitempty"`
	Images          []ParkImage     `json:"images,omitempty"`
	OperatingHours  []OperatingHour `json:"operating_hours,omitempty"`
	WeatherZones    []WeatherZone   `json:"weather_zones,omitempty"`
	BaseWeatherZone string          `json:"base_weather_zone,omitempty"`
}

// WeatherZone is a named point within the park used for
// elevation-differentiated weather reporting.
type WeatherZone struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ElevationFt float64 `json:"elevation_ft"`
	Description string  `json:"description,omitempty"`
}

type Contact struct {
	Type  string `json:"type"` // "phone" or "email"
	Value string `json:"value"`
}

type ParkImage struct {
	Title   string `json:"title,omitempty"`
	Caption string `json:"caption,omitempty"`
	URL     string `json:"url"`
	Credit  string `json:"credit,omitempty"`
}

type OperatingHour struct {
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Hours       map[string]string `json:"hours,omitempty"` // day -> hours text
}

// Alert is a registry alert for a park. Presentational only; the safety
// engine and the trail context builder match on Title/Description.
type Alert struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	URL         string `json:"url,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}

type Event struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	DateStart   string   `json:"date_start,omitempty"`
	DateEnd     string   `json:"date_end,omitempty"`
	Times       []string `json:"times,omitempty"`
	IsFree      bool     `json:"is_free,omitempty"`
	URL         string   `json:"url,omitempty"`
}

type Campground struct {
	ID             string   `json:"id,omitempty"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Latitude       float64  `json:"latitude,omitempty"`
	Longitude      float64  `json:"longitude,omitempty"`
	TotalSites     int      `json:"total_sites,omitempty"`
	Reservable     bool     `json:"reservable,omitempty"`
	ReservationURL string   `json:"reservation_url,omitempty"`
	Amenities      []string `json:"amenities,omitempty"`
}

type VisitorCenter struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	URL         string  `json:"url,omitempty"`
}

type Webcam struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	IsActive    bool   `json:"is_active,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Place is a generic registry place record (overlooks, entrances,
// trailheads and so on). The trail classifier consumes these.
type Place struct {
	ID          string      `json:"id,omitempty"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Latitude    float64     `json:"latitude,omitempty"`
	Longitude   float64     `json:"longitude,omitempty"`
	URL         string      `json:"url,omitempty"`
	Amenities   []string    `json:"amenities,omitempty"`
	Images      []ParkImage `json:"images,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
}

// ThingToDo is a registry activity record. Hiking entries are filtered out
// during the static fetch; those belong to the trail pipeline.
type ThingToDo struct {
	ID               string   `json:"id,omitempty"`
	Title            string   `json:"title"`
	ShortDescription string   `json:"short_description,omitempty"`
	Description      string   `json:"description,omitempty"`
	Latitude         float64  `json:"latitude,omitempty"`
	Longitude        float64  `json:"longitude,omitempty"`
	Duration         string   `json:"duration,omitempty"`
	Season           []string `json:"season,omitempty"`
	URL              string   `json:"url,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

type PassportStamp struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

// PhotoSpot is an extracted photography location from scraped guides.
type PhotoSpot struct {
	Rank          int      `json:"rank"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	BestTimeOfDay []string `json:"best_time_of_day,omitempty"`
	Tips          []string `json:"tips,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	SourceURL     string   `json:"source_url,omitempty"`
}

// ScenicDrive is an extracted scenic drive from scraped guides.
type ScenicDrive struct {
	Rank        int      `json:"rank"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	LengthMiles float64  `json:"length_miles,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Highlights  []string `json:"highlights,omitempty"`
	Tips        []string `json:"tips,omitempty"`
	SourceURL   string   `json:"source_url,omitempty"`
}
