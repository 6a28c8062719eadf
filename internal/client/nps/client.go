// Package nps is a thin client for the National Park Service registry API.
package nps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/trailwise-ai/trailwise/internal/client/resilience"
)

const (
	// DefaultBaseURL is the NPS API base URL.
	DefaultBaseURL = "https://developer.nps.gov/api/v1"

	pageSize = 50
	maxPages = 20
)

// Endpoints the park data pipeline pulls from. Names double as raw-dump
// file names.
const (
	EndpointParks          = "parks"
	EndpointAlerts         = "alerts"
	EndpointEvents         = "events"
	EndpointCampgrounds    = "campgrounds"
	EndpointVisitorCenters = "visitorcenters"
	EndpointWebcams        = "webcams"
	EndpointThingsToDo     = "thingstodo"
	EndpointPlaces         = "places"
	EndpointPassportStamps = "passportstamplocations"
)

// ClientConfig holds configuration for the registry client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *resilience.Client
	Logger     *slog.Logger
}

// Client pages through registry endpoints with the API key in a header.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     *slog.Logger
}

// NewClient creates a registry client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig("nps"))
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

type pagedResponse struct {
	Total string            `json:"total"`
	Data  []json.RawMessage `json:"data"`
}

// FetchAll pulls every page of an endpoint for one park and returns the
// combined item list plus a re-serialized raw payload for the raw dump.
func (c *Client) FetchAll(ctx context.Context, endpoint, parkCode string) ([]json.RawMessage, []byte, error) {
	var items []json.RawMessage

	for page := 0; page < maxPages; page++ {
		batch, total, err := c.fetchPage(ctx, endpoint, parkCode, page*pageSize)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, batch...)
		if len(items) >= total || len(batch) == 0 {
			break
		}
	}

	raw, err := json.Marshal(map[string]any{"data": items})
	if err != nil {
		return nil, nil, fmt.Errorf("re-encoding %s payload: %w", endpoint, err)
	}
	return items, raw, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint, parkCode string, start int) ([]json.RawMessage, int, error) {
	q := url.Values{}
	q.Set("parkCode", parkCode)
	q.Set("limit", strconv.Itoa(pageSize))
	q.Set("start", strconv.Itoa(start))

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, fmt.Errorf("registry %s returned %d: %s", endpoint, resp.StatusCode, string(body))
	}

	var page pagedResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, 0, fmt.Errorf("decoding %s page: %w", endpoint, err)
	}

	total, err := strconv.Atoi(page.Total)
	if err != nil {
		total = len(page.Data)
	}
	return page.Data, total, nil
}
