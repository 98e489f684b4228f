// Package resilience provides the rate limiting and retry primitives that
// guard every outbound call to the game-data API.
//
// # Token buckets
//
// Bucket is a blocking token-bucket limiter: Acquire suspends the caller
// until a token is available, then debits exactly one. Registry pairs one
// fixed global bucket with lazily created per-caller buckets; a request
// proceeds only once both have granted a token.
//
//	reg := resilience.NewRegistry(
//	    resilience.BucketConfig{Capacity: 50, Rate: 10},
//	    resilience.BucketConfig{Capacity: 10, Rate: 2},
//	)
//	if err := reg.AcquireBoth(ctx, callerID); err != nil {
//	    return err
//	}
//
// # Retrying
//
// Retryer performs an HTTP request, retrying on 429 and 5xx with exponential
// backoff and jitter. HTTP status is data, not an error: exhausting retries
// returns the last response as-is, and only transport failures error.
//
//	retryer := resilience.NewRetryer(http.DefaultClient, resilience.RetryConfig{})
//	resp, err := retryer.Do(ctx, req)
package resilience
