package observe

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome classifies how a fetch ended, for metric labelling.
type Outcome string

const (
	// OutcomeSuccess is a 2xx response decoded and cached.
	OutcomeSuccess Outcome = "success"
	// OutcomeUnavailable is a structurally unavailable endpoint (negative-cached).
	OutcomeUnavailable Outcome = "unavailable"
	// OutcomeFailed is any other non-2xx or decode failure.
	OutcomeFailed Outcome = "failed"
	// OutcomeTransport is a network-level failure after retries.
	OutcomeTransport Outcome = "transport_error"
)

// CacheResult classifies a cache lookup, for metric labelling.
type CacheResult string

const (
	CacheHit         CacheResult = "hit"
	CacheMiss        CacheResult = "miss"
	CacheNegativeHit CacheResult = "negative_hit"
)

// Metrics records fetch, cache, retry, and throttle measurements.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; recording never blocks a fetch.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordFetch records a completed fetch with its outcome and duration.
	RecordFetch(ctx context.Context, meta RequestMeta, outcome Outcome, status int, duration time.Duration)

	// RecordCache records the result of a cache lookup.
	RecordCache(ctx context.Context, meta RequestMeta, result CacheResult)

	// RecordRetry records one retry attempt and the status that caused it.
	RecordRetry(ctx context.Context, meta RequestMeta, status int)

	// RecordThrottleWait records time spent waiting for rate-limit tokens.
	RecordThrottleWait(ctx context.Context, meta RequestMeta, wait time.Duration)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	fetchCount   metric.Int64Counter
	fetchHist    metric.Float64Histogram
	cacheCount   metric.Int64Counter
	retryCount   metric.Int64Counter
	throttleHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	fetchCount, err := meter.Int64Counter(
		"armory.fetch.total",
		metric.WithDescription("Total number of game-data API fetches"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	fetchHist, err := meter.Float64Histogram(
		"armory.fetch.duration_ms",
		metric.WithDescription("Fetch duration in milliseconds, cache hits excluded"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheCount, err := meter.Int64Counter(
		"armory.cache.lookups",
		metric.WithDescription("Cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"armory.retry.attempts",
		metric.WithDescription("Retry attempts by triggering status"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	throttleHist, err := meter.Float64Histogram(
		"armory.throttle.wait_ms",
		metric.WithDescription("Time spent waiting for rate-limit tokens"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		fetchCount:   fetchCount,
		fetchHist:    fetchHist,
		cacheCount:   cacheCount,
		retryCount:   retryCount,
		throttleHist: throttleHist,
	}, nil
}

func (m *metricsImpl) RecordFetch(ctx context.Context, meta RequestMeta, outcome Outcome, status int, duration time.Duration) {
	attrs := append(baseAttrs(meta),
		attribute.String("outcome", string(outcome)),
		attribute.String("status", strconv.Itoa(status)),
	)
	m.fetchCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.fetchHist.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

func (m *metricsImpl) RecordCache(ctx context.Context, meta RequestMeta, result CacheResult) {
	attrs := append(baseAttrs(meta), attribute.String("result", string(result)))
	m.cacheCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metricsImpl) RecordRetry(ctx context.Context, meta RequestMeta, status int) {
	attrs := append(baseAttrs(meta), attribute.String("status", strconv.Itoa(status)))
	m.retryCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metricsImpl) RecordThrottleWait(ctx context.Context, meta RequestMeta, wait time.Duration) {
	m.throttleHist.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(baseAttrs(meta)...))
}

// baseAttrs keeps metric cardinality bounded: host and namespace only, never
// the full path or caller identity.
func baseAttrs(meta RequestMeta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("host", meta.Host),
	}
	if meta.Namespace != "" {
		attrs = append(attrs, attribute.String("namespace", meta.Namespace))
	}
	return attrs
}

// Ensure metricsImpl implements Metrics
var _ Metrics = (*metricsImpl)(nil)
