package types

import (
	"math"
	"time"
)

// Trail difficulty values. "Hard" from upstream extractors is mapped to
// Strenuous during enrichment.
const (
	DifficultyEasy      = "Easy"
	DifficultyModerate  = "Moderate"
	DifficultyStrenuous = "Strenuous"
)

// Route types.
const (
	RouteLoop         = "Loop"
	RouteOutAndBack   = "Out & Back"
	RoutePointToPoint = "Point to Point"
)

// Trail is the enriched trail fixture record.
type Trail struct {
	Name             string   `json:"name"`
	ParkCode         string   `json:"park_code"`
	Difficulty       string   `json:"difficulty,omitempty"`
	LengthMiles      float64  `json:"length_miles,omitempty"`
	ElevationGainFt  float64  `json:"elevation_gain_ft,omitempty"`
	RouteType        string   `json:"route_type,omitempty"`
	EstimatedTime    string   `json:"estimated_time,omitempty"`
	AverageRating    float64  `json:"average_rating,omitempty"`
	TotalReviews     int      `json:"total_reviews,omitempty"`
	Description      string   `json:"description,omitempty"`
	Features         []string `json:"features,omitempty"`
	SurfaceTypes     []string `json:"surface_types,omitempty"`
	IsWheelchairAccessible bool `json:"is_wheelchair_accessible,omitempty"`
	IsKidFriendly    bool     `json:"is_kid_friendly,omitempty"`
	IsPetFriendly    bool     `json:"is_pet_friendly,omitempty"`
	TrailheadElevationFt float64 `json:"trailhead_elevation_ft,omitempty"`
	WeatherZone      string   `json:"weather_zone,omitempty"`

	// External references.
	NPSURL        string `json:"nps_url,omitempty"`
	AllTrailsURL  string `json:"alltrails_url,omitempty"`
	ReviewsURL    string `json:"reviews_url,omitempty"`
	PopularityRank int   `json:"popularity_rank,omitempty"`

	// Third-party ranking attributes kept under their own namespace so a
	// registry refresh never clobbers them.
	AllTrailsDifficulty string  `json:"alltrails_difficulty,omitempty"`
	AllTrailsLength     float64 `json:"alltrails_length,omitempty"`
	AllTrailsElevation  float64 `json:"alltrails_elevation,omitempty"`

	RecentReviews      []Review `json:"recent_reviews,omitempty"`
	LastEnriched       string   `json:"last_enriched,omitempty"`
	ReviewsLastUpdated string   `json:"reviews_last_updated,omitempty"`
}

// Review is a single trail review. Immutable once stored.
type Review struct {
	Author        string   `json:"author,omitempty"`
	Date          string   `json:"date,omitempty"`
	Rating        float64  `json:"rating"`
	Text          string   `json:"text,omitempty"`
	ConditionTags []string `json:"condition_tags,omitempty"`
	ImageURLs     []string `json:"image_urls,omitempty"`
}

// RecomputeRating sets AverageRating to the mean of the embedded review
// ratings rounded to one decimal, and TotalReviews to the count. No-op when
// there are no reviews.
func (t *Trail) RecomputeRating() {
	if len(t.RecentReviews) == 0 {
		return
	}
	var sum float64
	for _, r := range t.RecentReviews {
		sum += r.Rating
	}
	t.AverageRating = math.Round(sum/float64(len(t.RecentReviews))*10) / 10
	t.TotalReviews = len(t.RecentReviews)
}

// ReviewsFreshToday reports whether the trail's reviews were refreshed on the
// local calendar day of now.
func (t *Trail) ReviewsFreshToday(now time.Time) bool {
	if t.ReviewsLastUpdated == "" || len(t.RecentReviews) == 0 {
		return false
	}
	ts, err := time.Parse(time.RFC3339, t.ReviewsLastUpdated)
	if err != nil {
		return false
	}
	return ts.Local().Format("2006-01-02") == now.Local().Format("2006-01-02")
}

// Ranking is one entry extracted from a third-party hiking index page.
type Ranking struct {
	Rank        int     `json:"rank"`
	Name        string  `json:"name"`
	URL         string  `json:"url,omitempty"`
	Difficulty  string  `json:"difficulty,omitempty"`
	LengthMiles float64 `json:"length_miles,omitempty"`
	ElevationFt float64 `json:"elevation_ft,omitempty"`
	ReviewsURL  string  `json:"reviews_url,omitempty"`
}
