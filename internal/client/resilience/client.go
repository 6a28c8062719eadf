// Package resilience wraps http.Client with retry and circuit-breaker
// behavior shared by every upstream provider client.
package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/trailwise-ai/trailwise/app/observability/metrics"
)

var (
	// ErrCircuitOpen is returned when the provider's circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ClientConfig holds configuration for one provider's resilient client.
type ClientConfig struct {
	// Name identifies the provider for circuit breaker naming.
	Name string

	// Timeout is the per-request timeout. Default: 10s.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the first try.
	// Default: 3, with 1s/2s/4s backoff.
	MaxRetries uint64

	// InitialInterval is the first retry backoff interval. Default: 1s.
	InitialInterval time.Duration
}

// DefaultClientConfig returns the defaults used by all park data providers.
func DefaultClientConfig(name string) ClientConfig {
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: time.Second,
	}
}

// Client retries transient failures (429, 5xx, network errors) with
// exponential backoff and trips a circuit breaker on persistent ones.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a resilient HTTP client for one provider.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
	}
}

// Do executes the request, retrying 429 and 5xx responses. Only idempotent
// requests should be passed here; callers own closing the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	metrics.Get().UpstreamRequestsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("provider", c.config.Name)))

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500 {
				r.Body.Close()
				return nil, &TransientError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			return err
		}
		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return lastResp, nil
}

// TransientError marks a retryable upstream status.
type TransientError struct {
	StatusCode int
}

func (e *TransientError) Error() string {
	return "transient upstream error: " + http.StatusText(e.StatusCode)
}

// State exposes the breaker state for ops endpoints.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}
