// Package serper wraps the search provider: "maps" place search near a
// coordinate for amenities, and web search for guide/blog URL discovery.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/trailwise-ai/trailwise/internal/client/resilience"
)

const (
	// DefaultSearchURL is the web search endpoint.
	DefaultSearchURL = "https://google.serper.dev/search"

	// DefaultPlacesURL is the maps place-search endpoint.
	DefaultPlacesURL = "https://google.serper.dev/places"
)

// ClientConfig holds configuration for the search client.
type ClientConfig struct {
	APIKey     string
	SearchURL  string
	PlacesURL  string
	HTTPClient *resilience.Client
	Logger     *slog.Logger
}

// Client posts JSON queries with the API key in a header.
type Client struct {
	apiKey     string
	searchURL  string
	placesURL  string
	httpClient *resilience.Client
	logger     *slog.Logger
}

// NewClient creates a search client.
func NewClient(cfg ClientConfig) *Client {
	searchURL := cfg.SearchURL
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	placesURL := cfg.PlacesURL
	if placesURL == "" {
		placesURL = DefaultPlacesURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("serper"))
	}
	return &Client{
		apiKey:     cfg.APIKey,
		searchURL:  searchURL,
		placesURL:  placesURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// WebResult is one organic web search hit.
type WebResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// PlaceResult is one maps place-search hit.
type PlaceResult struct {
	Title       string  `json:"title"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"ratingCount"`
	Category    string  `json:"category"`
	PhoneNumber string  `json:"phoneNumber"`
	Website     string  `json:"website"`
}

// Search runs a web search and returns organic results.
func (c *Client) Search(ctx context.Context, query string) ([]WebResult, error) {
	var payload struct {
		Organic []WebResult `json:"organic"`
	}
	if err := c.post(ctx, c.searchURL, map[string]any{"q": query}, &payload); err != nil {
		return nil, err
	}
	return payload.Organic, nil
}

// SearchPlaces runs a maps place search centered on a coordinate.
func (c *Client) SearchPlaces(ctx context.Context, query string, lat, lon float64, zoom int) ([]PlaceResult, error) {
	body := map[string]any{
		"q":  query,
		"ll": fmt.Sprintf("@%.6f,%.6f,%dz", lat, lon, zoom),
	}
	var payload struct {
		Places []PlaceResult `json:"places"`
	}
	if err := c.post(ctx, c.placesURL, body, &payload); err != nil {
		return nil, err
	}
	return payload.Places, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding search query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search provider returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding search response: %w", err)
	}
	return nil
}
