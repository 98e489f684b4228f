package cache_test

import (
	"context"
	"fmt"
	"time"

	"github.com/tidehollow/loremaster/cache"
)

func ExampleNewMemoryCache() {
	c, _ := cache.NewMemoryCache(128)
	ctx := context.Background()

	// Store a response
	_ = c.Set(ctx, "req:anonymous:0011223344556677", cache.NewEntry([]byte(`{"id":19019}`), 5*time.Minute))

	// Retrieve it
	entry, ok := c.Get(ctx, "req:anonymous:0011223344556677")
	if ok {
		fmt.Println("Value:", string(entry.Value))
	}
	// Output:
	// Value: {"id":19019}
}

func ExampleNewDefaultKeyer() {
	keyer := cache.NewDefaultKeyer()

	req := cache.Request{
		Method:    "GET",
		URL:       "https://eu.api.example.com/data/wow/item/19019?locale=en_GB",
		Namespace: "static-eu",
		Locale:    "en_GB",
		Caller:    "anonymous",
	}

	key1, _ := keyer.Key(req)
	fmt.Println("Key prefix:", key1[:14])

	// Deterministic - same request produces the same key
	key2, _ := keyer.Key(req)
	fmt.Println("Keys match:", key1 == key2)

	// The caller identity partitions the key space
	req.Caller = "user-7"
	key3, _ := keyer.Key(req)
	fmt.Println("Different caller, different key:", key1 != key3)
	// Output:
	// Key prefix: req:anonymous:
	// Keys match: true
	// Different caller, different key: true
}

func ExamplePolicy_EffectiveTTL() {
	policy := cache.Policy{
		DefaultTTL: time.Hour,
		MaxTTL:     24 * time.Hour,
	}

	// No request TTL - uses default
	fmt.Println("No override:", policy.EffectiveTTL(0, ""))

	// Server's Cache-Control max-age wins over the requested TTL
	fmt.Println("Server max-age:", policy.EffectiveTTL(time.Hour, "public, max-age=300"))

	// Excessive TTL - clamped to max
	fmt.Println("Clamped:", policy.EffectiveTTL(48*time.Hour, ""))
	// Output:
	// No override: 1h0m0s
	// Server max-age: 5m0s
	// Clamped: 24h0m0s
}

func ExampleNewNegativeEntry() {
	entry := cache.NewNegativeEntry(404, 2*time.Hour)

	fmt.Println("Negative:", entry.Negative)
	fmt.Println("Status:", entry.Status)
	// Output:
	// Negative: true
	// Status: 404
}
