// Package elevation is a batch lookup client for lat/lon to elevation,
// using the open-elevation POST API. No auth.
package elevation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/trailwise-ai/trailwise/internal/client/resilience"
)

// DefaultBaseURL is the open-elevation API endpoint.
const DefaultBaseURL = "https://api.open-elevation.com/api/v1/lookup"

const metersToFeet = 3.28084

// Client performs batch elevation lookups.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
}

// NewClient creates an elevation client.
func NewClient(baseURL string, httpClient *resilience.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("elevation"))
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// Point is one lookup coordinate.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LookupFeet resolves elevations for all points in one batch call and
// returns them in feet, in input order.
func (c *Client) LookupFeet(ctx context.Context, points []Point) ([]float64, error) {
	body, err := json.Marshal(map[string]any{"locations": points})
	if err != nil {
		return nil, fmt.Errorf("encoding locations: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("looking up elevations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevation API returned %d", resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			Elevation float64 `json:"elevation"` // meters
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding elevations: %w", err)
	}
	if len(payload.Results) != len(points) {
		return nil, fmt.Errorf("elevation API returned %d results for %d points", len(payload.Results), len(points))
	}

	feet := make([]float64, len(payload.Results))
	for i, r := range payload.Results {
		feet[i] = r.Elevation * metersToFeet
	}
	return feet, nil
}
