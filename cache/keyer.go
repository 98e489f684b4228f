package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Keyer derives deterministic cache keys from request facets.
//
// Contract:
// - Determinism: two logically identical requests must produce the same key,
//   regardless of query-parameter order; distinct requests must (with
//   overwhelming probability) produce distinct keys.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key derives a cache key for the request facets.
	Key(req Request) (string, error)
}

// Request holds the facets that identify a cacheable API call. Caller
// partitions the key space per logical user so two users never share entries.
type Request struct {
	Method    string
	URL       string
	Namespace string
	Locale    string
	Caller    string
}

// DefaultKeyer generates SHA-256 based cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key derives a deterministic cache key.
// Format: req:<caller>:<hash>
// where hash is the first 16 hex characters of SHA-256 over the canonical
// request string (method, URL with sorted query, namespace, locale, caller).
func (k *DefaultKeyer) Key(req Request) (string, error) {
	canonical, err := canonicalize(req)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize request: %w", err)
	}

	hash := sha256.Sum256([]byte(canonical))
	hashStr := hex.EncodeToString(hash[:8]) // First 8 bytes = 16 hex chars

	caller := req.Caller
	if caller == "" {
		caller = "anonymous"
	}
	return fmt.Sprintf("req:%s:%s", caller, hashStr), nil
}

// canonicalize produces a deterministic string form of the request.
// Query parameters are sorted by name (then value) so that logically
// identical URLs hash identically regardless of parameter order.
func canonicalize(req Request) (string, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	names := make([]string, 0, len(q))
	for name := range q {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(strings.ToUpper(req.Method))
	sb.WriteByte('\x00')
	sb.WriteString(u.Scheme)
	sb.WriteString("://")
	sb.WriteString(u.Host)
	sb.WriteString(u.EscapedPath())
	for _, name := range names {
		values := q[name]
		sort.Strings(values)
		for _, v := range values {
			sb.WriteByte('\x00')
			sb.WriteString(name)
			sb.WriteByte('=')
			sb.WriteString(v)
		}
	}
	sb.WriteByte('\x00')
	sb.WriteString(req.Namespace)
	sb.WriteByte('\x00')
	sb.WriteString(req.Locale)
	sb.WriteByte('\x00')
	sb.WriteString(req.Caller)

	return sb.String(), nil
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
