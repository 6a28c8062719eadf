// Package weatherapi fetches current conditions, multi-day forecast and
// alerts for a coordinate. The upstream condition field drifts between an
// object and a bare string; Condition normalizes both.
package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/trailwise-ai/trailwise/internal/client/resilience"
)

// DefaultBaseURL is the weather provider base URL.
const DefaultBaseURL = "https://api.weatherapi.com/v1"

// ClientConfig holds configuration for the weather client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *resilience.Client
	Logger     *slog.Logger
}

// Client is the weather provider client. Auth is a query-string key.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     *slog.Logger
}

// NewClient creates a weather client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("weatherapi"))
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Condition tolerates the upstream schema drift between {"text": "..."} and
// a plain string.
type Condition struct {
	Text string
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.Text != "" {
		c.Text = obj.Text
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		return nil
	}
	// Unknown shape: leave empty rather than failing the whole payload.
	return nil
}

// ForecastResponse is the raw provider payload the adapter consumes.
type ForecastResponse struct {
	Current struct {
		TempF     float64   `json:"temp_f"`
		Condition Condition `json:"condition"`
		WindMph   float64   `json:"wind_mph"`
		Humidity  float64   `json:"humidity"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempF          float64   `json:"maxtemp_f"`
				MinTempF          float64   `json:"mintemp_f"`
				AvgTempF          float64   `json:"avgtemp_f"`
				DailyChanceOfRain float64   `json:"daily_chance_of_rain"`
				Condition         Condition `json:"condition"`
				UV                float64   `json:"uv"`
			} `json:"day"`
			Astro struct {
				Sunrise string `json:"sunrise"`
				Sunset  string `json:"sunset"`
			} `json:"astro"`
		} `json:"forecastday"`
	} `json:"forecast"`
	Alerts struct {
		Alert []struct {
			Headline string `json:"headline"`
			Event    string `json:"event"`
			Desc     string `json:"desc"`
		} `json:"alert"`
	} `json:"alerts"`
}

// Forecast fetches a multi-day forecast with alerts for a coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, days int) (*ForecastResponse, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", fmt.Sprintf("%.4f,%.4f", lat, lon))
	q.Set("days", fmt.Sprintf("%d", days))
	q.Set("alerts", "yes")
	q.Set("aqi", "no")

	reqURL := fmt.Sprintf("%s/forecast.json?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather provider returned %d", resp.StatusCode)
	}

	var out ForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding forecast: %w", err)
	}
	return &out, nil
}
