package resilience

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultMaxJitter is the default upper bound on the random delay added to
// grants and waits, to avoid synchronized bursts against the API.
const DefaultMaxJitter = 250 * time.Millisecond

// BucketConfig configures a token bucket.
type BucketConfig struct {
	// Capacity is the maximum token count (burst size).
	// Default: 10
	Capacity float64

	// Rate is the refill rate in tokens per second.
	// Default: 1
	Rate float64

	// MaxJitter bounds the random delay added after a grant and to waits.
	// Default: DefaultMaxJitter
	MaxJitter time.Duration

	// DisableJitter turns the random delay off entirely.
	DisableJitter bool
}

// Bucket is a blocking token-bucket rate limiter. Tokens are real-valued,
// refilled as a pure function of elapsed wall-clock time, and never exceed
// capacity or go negative.
type Bucket struct {
	config BucketConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewBucket creates a full bucket.
func NewBucket(config BucketConfig) *Bucket {
	// Apply defaults
	if config.Capacity <= 0 {
		config.Capacity = 10
	}
	if config.Rate <= 0 {
		config.Rate = 1
	}
	if config.MaxJitter <= 0 {
		config.MaxJitter = DefaultMaxJitter
	}

	return &Bucket{
		config:     config,
		tokens:     config.Capacity,
		lastRefill: time.Now(),
	}
}

// Acquire suspends the caller until one token is available, debits it, and
// returns. The only early exit is context cancellation. Cancellation while
// still waiting leaves no token debited; once granted, the token stays
// consumed even if the caller is cancelled during the post-grant delay.
// After a grant a small random delay is inserted so concurrent callers do
// not hit the API in lockstep.
func (b *Bucket) Acquire(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		b.mu.Lock()
		b.refillLocked()
		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()
			return sleep(ctx, b.jitter())
		}
		// Time needed to accumulate one whole token.
		wait := time.Duration((1 - b.tokens) / b.config.Rate * float64(time.Second))
		b.mu.Unlock()

		if err := sleep(ctx, wait+b.jitter()); err != nil {
			return err
		}
	}
}

// TryAcquire debits a token without waiting. Returns false when none is
// available.
func (b *Bucket) TryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked()
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Tokens returns the current token count after refill.
func (b *Bucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refillLocked()
	return b.tokens
}

func (b *Bucket) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	b.lastRefill = now

	b.tokens += elapsed.Seconds() * b.config.Rate
	if b.tokens > b.config.Capacity {
		b.tokens = b.config.Capacity
	}
}

func (b *Bucket) jitter() time.Duration {
	if b.config.DisableJitter || b.config.MaxJitter <= 0 {
		return 0
	}
	// #nosec G404 -- jitter is non-cryptographic timing variance.
	return time.Duration(rand.Int64N(int64(b.config.MaxJitter)))
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Registry holds the process-wide global bucket plus one lazily created
// bucket per caller identity. Caller buckets live for the registry's
// lifetime and are never removed, so a caller's refill state survives
// between requests.
type Registry struct {
	global    *Bucket
	callerCfg BucketConfig

	mu      sync.Mutex
	callers map[string]*Bucket
}

// NewRegistry creates a registry with the given global and per-caller
// bucket configurations.
func NewRegistry(global, perCaller BucketConfig) *Registry {
	return &Registry{
		global:    NewBucket(global),
		callerCfg: perCaller,
		callers:   make(map[string]*Bucket),
	}
}

// Global returns the process-wide bucket.
func (r *Registry) Global() *Bucket {
	return r.global
}

// Caller returns the bucket for the given caller identity, creating it at
// standard per-caller capacity on first use. One caller waiting on its
// bucket never blocks another caller's bucket from refilling or granting.
func (r *Registry) Caller(id string) *Bucket {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, ok := r.callers[id]
	if !ok {
		bucket = NewBucket(r.callerCfg)
		r.callers[id] = bucket
	}
	return bucket
}

// AcquireBoth grants a token from the global bucket and then the caller's
// bucket before returning. Both grants must succeed before a request
// proceeds; the only early exit is context cancellation, and tokens already
// granted stay consumed, so an abandoned request still charges the budget
// it was given.
func (r *Registry) AcquireBoth(ctx context.Context, callerID string) error {
	if err := r.global.Acquire(ctx); err != nil {
		return err
	}
	return r.Caller(callerID).Acquire(ctx)
}
