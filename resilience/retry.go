package resilience

import (
	"context"
	"errors"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// ErrNilRequest is returned when Do is called without a request.
var ErrNilRequest = errors.New("resilience: request is nil")

// RetryConfig configures the HTTP retry executor.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 4
	MaxAttempts int

	// InitialDelay is the backoff before the first retry.
	// Default: 1s
	InitialDelay time.Duration

	// MaxDelay caps the backoff between retries.
	// Default: 8s
	MaxDelay time.Duration

	// MaxJitter bounds the random delay added to each backoff.
	// Default: DefaultMaxJitter
	MaxJitter time.Duration

	// DisableJitter turns the random delay off entirely.
	DisableJitter bool

	// OnRetry is called before each retry attempt.
	OnRetry func(attempt int, status int, delay time.Duration)
}

// Retryer performs HTTP requests, retrying on rate-limit (429) and server
// error (5xx) responses with exponential backoff and jitter.
//
// HTTP status is data at this layer, never an error: any non-retryable
// status returns immediately, and exhausting the retry budget returns the
// last response as-is for the caller to interpret. Only transport failures
// are reported as errors.
type Retryer struct {
	config RetryConfig
	client *http.Client
}

// NewRetryer creates a retry executor over the given HTTP client.
// A nil client falls back to http.DefaultClient.
func NewRetryer(client *http.Client, config RetryConfig) *Retryer {
	// Apply defaults
	if client == nil {
		client = http.DefaultClient
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 4
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 1 * time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 8 * time.Second
	}
	if config.MaxJitter <= 0 {
		config.MaxJitter = DefaultMaxJitter
	}

	return &Retryer{config: config, client: client}
}

// RetryableStatus reports whether a status code is transient: HTTP 429 or
// any 5xx. Everything else - including 403/404 on endpoints that do not
// exist for a data variant - is not transient, and retrying it wastes the
// request budget.
func RetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Do executes the request, retrying transient responses and transport
// failures up to MaxAttempts. Bodied requests must set GetBody (as requests
// built by http.NewRequest do) so attempts after the first can be replayed.
func (r *Retryer) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	var (
		resp    *http.Response
		lastErr error
	)

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		attemptReq, err := r.cloneRequest(ctx, req)
		if err != nil {
			return nil, err
		}

		resp, lastErr = r.client.Do(attemptReq)
		if lastErr == nil && !RetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		// Don't retry if this was the last attempt
		if attempt >= r.config.MaxAttempts {
			break
		}

		status := 0
		if lastErr == nil {
			status = resp.StatusCode
			// The retried response is never surfaced; release its
			// connection before backing off.
			drain(resp)
		}

		delay := r.calculateDelay(attempt)

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, status, delay)
		}

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	// Retries exhausted: the last response (e.g. a final 429) is returned
	// as data for the caller to interpret.
	if lastErr != nil {
		return nil, lastErr
	}
	return resp, nil
}

// cloneRequest prepares a fresh request for one attempt, rewinding the body
// via GetBody when present.
func (r *Retryer) cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	clone := req.Clone(ctx)
	if req.Body == nil || req.GetBody == nil {
		return clone, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}

// calculateDelay computes min(initial * 2^(attempt-1), max) plus jitter.
func (r *Retryer) calculateDelay(attempt int) time.Duration {
	multiplier := math.Pow(2, float64(attempt-1))
	delay := time.Duration(float64(r.config.InitialDelay) * multiplier)

	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}

	if !r.config.DisableJitter && r.config.MaxJitter > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(r.config.MaxJitter)))
	}

	return delay
}

// drain discards and closes a response body so the underlying connection
// can be reused by the next attempt.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
}
