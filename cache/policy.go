package cache

import (
	"strconv"
	"strings"
	"time"
)

// Policy configures TTL resolution for cached responses.
type Policy struct {
	// DefaultTTL is the TTL to use when the caller supplies none.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Resolved TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// NegativeFactor multiplies the resolved TTL for negative entries so a
	// structurally dead endpoint is not re-probed at the normal cadence.
	// If zero, defaults to 2.
	NegativeFactor int
}

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 1 hour, MaxTTL: 24 hours, NegativeFactor: 2
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL:     1 * time.Hour,
		MaxTTL:         24 * time.Hour,
		NegativeFactor: 2,
	}
}

// EffectiveTTL resolves the TTL for a successful response. A numeric
// Cache-Control max-age from the server wins over the caller-supplied TTL,
// including max-age=0: a response the server marked uncacheable resolves to
// zero, it does not fall back to the default. A missing or non-numeric
// max-age falls back to the requested TTL, then to the policy default. The
// result is clamped to MaxTTL.
func (p Policy) EffectiveTTL(requested time.Duration, cacheControl string) time.Duration {
	if maxAge, ok := parseMaxAge(cacheControl); ok {
		if p.MaxTTL > 0 && maxAge > p.MaxTTL {
			return p.MaxTTL
		}
		return maxAge
	}
	ttl := requested
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}

// NegativeTTL resolves the extended TTL applied to negative entries.
func (p Policy) NegativeTTL(requested time.Duration) time.Duration {
	factor := p.NegativeFactor
	if factor <= 0 {
		factor = 2
	}
	ttl := requested
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	return ttl * time.Duration(factor)
}

// parseMaxAge extracts a numeric max-age directive from a Cache-Control
// header value. Returns (0, false) when absent or non-numeric.
func parseMaxAge(cacheControl string) (time.Duration, bool) {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		value, ok := strings.CutPrefix(directive, "max-age=")
		if !ok {
			continue
		}
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	return 0, false
}
