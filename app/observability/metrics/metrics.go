// Package metrics holds the application's OTel metric instruments.
package metrics

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the instruments recorded across the service.
type AppMetrics struct {
	QueriesTotal          metric.Int64Counter
	QueryDurationSeconds  metric.Float64Histogram
	LLMCallsTotal         metric.Int64Counter
	LLMDurationSeconds    metric.Float64Histogram
	PipelineStageSeconds  metric.Float64Histogram
	ScrapeRequestsTotal   metric.Int64Counter
	UpstreamRequestsTotal metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Get returns the shared instruments, creating them on first use from the
// global meter provider. Before tracer setup runs this records into the
// default no-op provider, so tests need no metrics bootstrap.
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("trailwise")
		m := &AppMetrics{}

		m.QueriesTotal, _ = meter.Int64Counter(
			"concierge_queries_total",
			metric.WithDescription("Concierge turns handled"),
			metric.WithUnit("{query}"),
		)
		m.QueryDurationSeconds, _ = meter.Float64Histogram(
			"concierge_query_duration_seconds",
			metric.WithDescription("End-to-end duration of a concierge turn"),
			metric.WithUnit("s"),
		)
		m.LLMCallsTotal, _ = meter.Int64Counter(
			"llm_calls_total",
			metric.WithDescription("Model generation calls by role"),
			metric.WithUnit("{call}"),
		)
		m.LLMDurationSeconds, _ = meter.Float64Histogram(
			"llm_call_duration_seconds",
			metric.WithDescription("Duration of model generation calls"),
			metric.WithUnit("s"),
		)
		m.PipelineStageSeconds, _ = meter.Float64Histogram(
			"pipeline_stage_duration_seconds",
			metric.WithDescription("Duration of acquisition pipeline stages"),
			metric.WithUnit("s"),
		)
		m.ScrapeRequestsTotal, _ = meter.Int64Counter(
			"scrape_requests_total",
			metric.WithDescription("Review and guide page scrape attempts"),
			metric.WithUnit("{request}"),
		)
		m.UpstreamRequestsTotal, _ = meter.Int64Counter(
			"upstream_requests_total",
			metric.WithDescription("Calls to upstream data providers"),
			metric.WithUnit("{request}"),
		)

		appMetrics = m
	})
	return appMetrics
}
