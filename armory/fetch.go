package armory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tidehollow/loremaster/cache"
	"github.com/tidehollow/loremaster/observe"
	"github.com/tidehollow/loremaster/resilience"
)

// GetCached fetches the URL through the cache and decodes the JSON response
// into T. This is the sole public entry point for API data.
//
// A cache hit returns immediately with no network call and no token charge.
// A miss acquires a token from the global bucket and the caller's bucket,
// performs the request with retry on 429/5xx, honors the server's
// Cache-Control max-age over ttl when present and numeric, and writes the
// result through both cache tiers. A 403/404 on a legacy-variant endpoint is
// negative-cached at double TTL and surfaces as ErrEndpointUnavailable.
func GetCached[T any](ctx context.Context, c *Client, rawURL string, ttl time.Duration, opts Options) (T, error) {
	var zero T
	raw, err := c.GetRaw(ctx, rawURL, ttl, opts)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("armory: failed to decode response from %s: %w", rawURL, err)
	}
	return out, nil
}

// GetRaw is GetCached without the typed decode: it returns the raw JSON
// payload, cached or fetched.
func (c *Client) GetRaw(ctx context.Context, rawURL string, ttl time.Duration, opts Options) (json.RawMessage, error) {
	req, err := c.prepare(rawURL, opts)
	if err != nil {
		return nil, err
	}

	if entry, ok := c.store.Get(ctx, req.key); ok {
		if entry.Negative {
			// Known variant gap: fail without touching the network.
			c.metrics.RecordCache(ctx, req.meta, observe.CacheNegativeHit)
			return nil, &Error{URL: req.url.String(), Status: entry.Status, EndpointUnavailable: true}
		}
		c.metrics.RecordCache(ctx, req.meta, observe.CacheHit)
		return entry.Value, nil
	}
	c.metrics.RecordCache(ctx, req.meta, observe.CacheMiss)

	if c.coalesce {
		// Concurrent identical requests share one outcome and one token
		// charge. The winning call runs under the first caller's context.
		v, err, _ := c.flight.Do(req.key, func() (any, error) {
			return c.fetch(ctx, req, ttl)
		})
		if err != nil {
			return nil, err
		}
		return v.(json.RawMessage), nil
	}

	return c.fetch(ctx, req, ttl)
}

// fetch wraps the network path with a span, metrics, and logging.
func (c *Client) fetch(ctx context.Context, req *request, ttl time.Duration) (json.RawMessage, error) {
	ctx, span := c.tracer.StartSpan(ctx, req.meta)
	start := time.Now()

	raw, status, err := c.fetchOnce(ctx, req, ttl)

	duration := time.Since(start)
	c.tracer.EndSpan(span, err)

	outcome := observe.OutcomeSuccess
	switch {
	case err == nil:
	case IsEndpointUnavailable(err):
		outcome = observe.OutcomeUnavailable
	case status > 0:
		outcome = observe.OutcomeFailed
	default:
		outcome = observe.OutcomeTransport
	}
	c.metrics.RecordFetch(ctx, req.meta, outcome, status, duration)

	logger := c.logger.WithRequest(req.meta)
	fields := []observe.Field{
		{Key: "status", Value: status},
		{Key: "duration_ms", Value: float64(duration.Milliseconds())},
	}
	if err != nil {
		fields = append(fields, observe.Field{Key: "error", Value: err.Error()})
		logger.Warn(ctx, "fetch failed", fields...)
	} else {
		logger.Debug(ctx, "fetch completed", fields...)
	}

	return raw, err
}

// fetchOnce is the orchestration core: throttle, request with retry,
// classify, cache, surface.
func (c *Client) fetchOnce(ctx context.Context, req *request, ttl time.Duration) (json.RawMessage, int, error) {
	// The token wait is the only suspension point before the network call.
	waitStart := time.Now()
	if err := c.buckets.AcquireBoth(ctx, req.caller); err != nil {
		return nil, 0, fmt.Errorf("armory: rate limit wait interrupted: %w", err)
	}
	c.metrics.RecordThrottleWait(ctx, req.meta, time.Since(waitStart))

	httpReq, err := req.build(ctx)
	if err != nil {
		return nil, 0, err
	}

	retryCfg := c.retryCfg
	retryCfg.OnRetry = func(attempt, status int, delay time.Duration) {
		c.metrics.RecordRetry(ctx, req.meta, status)
		c.logger.WithRequest(req.meta).Debug(ctx, "retrying request",
			observe.Field{Key: "attempt", Value: attempt},
			observe.Field{Key: "status", Value: status},
			observe.Field{Key: "delay_ms", Value: float64(delay.Milliseconds())},
		)
	}

	resp, err := resilience.NewRetryer(c.http, retryCfg).Do(ctx, httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("armory: request to %s failed: %w", req.url, err)
	}
	defer resp.Body.Close()

	status := resp.StatusCode

	if status >= 200 && status < 300 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, status, fmt.Errorf("armory: failed to read response from %s: %w", req.url, err)
		}
		// A body that is not JSON is a generic failure and is never cached.
		if !json.Valid(body) {
			return nil, status, fmt.Errorf("armory: response from %s is not valid JSON", req.url)
		}

		// max-age=0 resolves to a zero TTL: serve the body, cache nothing.
		effective := c.policy.EffectiveTTL(ttl, resp.Header.Get("Cache-Control"))
		if effective > 0 {
			if err := c.store.Set(ctx, req.key, cache.NewEntry(body, effective)); err != nil {
				// Cache I/O failure is local: log it, serve the response.
				c.logger.WithRequest(req.meta).Warn(ctx, "cache write failed",
					observe.Field{Key: "error", Value: err.Error()})
			}
		}
		return body, status, nil
	}

	// The failure body is never surfaced; release the connection.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if (status == 403 || status == 404) && VariantUnavailable(req.url, req.namespace) {
		negative := cache.NewNegativeEntry(status, c.policy.NegativeTTL(ttl))
		if err := c.store.Set(ctx, req.key, negative); err != nil {
			c.logger.WithRequest(req.meta).Warn(ctx, "negative cache write failed",
				observe.Field{Key: "error", Value: err.Error()})
		}
		return nil, status, &Error{URL: req.url.String(), Status: status, EndpointUnavailable: true}
	}

	return nil, status, &Error{URL: req.url.String(), Status: status}
}
