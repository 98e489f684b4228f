package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilCache   = errors.New("cache: cache is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// Entry is a single cached API response. Entries are immutable once stored:
// an update replaces the entry wholesale, never mutates it in place.
type Entry struct {
	// Value is the raw JSON payload of a successful response.
	// Empty for negative entries.
	Value json.RawMessage `json:"value,omitempty"`

	// Negative marks the entry as "this query has no data", as opposed to
	// "value not yet fetched". Negative entries are stored with an extended
	// TTL so a structurally dead endpoint is not hammered repeatedly.
	Negative bool `json:"negative,omitempty"`

	// Status is the HTTP status that produced a negative entry.
	Status int `json:"status,omitempty"`

	// ExpiresAt is the absolute expiry timestamp.
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewEntry builds a positive entry expiring ttl from now.
func NewEntry(value json.RawMessage, ttl time.Duration) Entry {
	return Entry{Value: value, ExpiresAt: time.Now().Add(ttl)}
}

// NewNegativeEntry builds a negative entry recording the HTTP status that
// classified the endpoint as unavailable, expiring ttl from now.
func NewNegativeEntry(status int, ttl time.Duration) Entry {
	return Entry{Negative: true, Status: status, ExpiresAt: time.Now().Add(ttl)}
}

// Expired reports whether the entry has expired as of now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Cache is the interface shared by the memory tier, the disk tier, and their
// two-tier composition.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get never errors; it returns (Entry{}, false) on miss or expiry.
type Cache interface {
	// Get retrieves an unexpired entry. Returns (Entry{}, false) on miss.
	Get(ctx context.Context, key string) (Entry, bool)

	// Set stores an entry, replacing any previous entry for the key.
	Set(ctx context.Context, key string, entry Entry) error

	// Delete removes an entry. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
