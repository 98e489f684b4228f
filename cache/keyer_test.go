package cache

import (
	"strings"
	"testing"
)

func TestDefaultKeyer_Deterministic(t *testing.T) {
	keyer := NewDefaultKeyer()

	req := Request{
		Method:    "GET",
		URL:       "https://eu.api.example.com/data/wow/item/19019?namespace=static-eu&locale=en_GB",
		Namespace: "static-eu",
		Locale:    "en_GB",
		Caller:    "user-1",
	}

	key1, err := keyer.Key(req)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	key2, err := keyer.Key(req)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if key1 != key2 {
		t.Errorf("same request produced different keys: %q vs %q", key1, key2)
	}
}

func TestDefaultKeyer_QueryOrderIrrelevant(t *testing.T) {
	keyer := NewDefaultKeyer()

	a := Request{
		Method: "GET",
		URL:    "https://eu.api.example.com/data/wow/item/19019?namespace=static-eu&locale=en_GB",
		Caller: "user-1",
	}
	b := Request{
		Method: "GET",
		URL:    "https://eu.api.example.com/data/wow/item/19019?locale=en_GB&namespace=static-eu",
		Caller: "user-1",
	}

	keyA, err := keyer.Key(a)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	keyB, err := keyer.Key(b)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if keyA != keyB {
		t.Errorf("parameter order changed the key: %q vs %q", keyA, keyB)
	}
}

func TestDefaultKeyer_DistinctRequestsDistinctKeys(t *testing.T) {
	keyer := NewDefaultKeyer()

	base := Request{
		Method:    "GET",
		URL:       "https://eu.api.example.com/profile/wow/character/silvermoon/aeryn",
		Namespace: "profile-eu",
		Locale:    "en_GB",
		Caller:    "user-1",
	}

	variants := []Request{
		{Method: "POST", URL: base.URL, Namespace: base.Namespace, Locale: base.Locale, Caller: base.Caller},
		{Method: base.Method, URL: base.URL + "/equipment", Namespace: base.Namespace, Locale: base.Locale, Caller: base.Caller},
		{Method: base.Method, URL: base.URL, Namespace: "profile-us", Locale: base.Locale, Caller: base.Caller},
		{Method: base.Method, URL: base.URL, Namespace: base.Namespace, Locale: "de_DE", Caller: base.Caller},
		{Method: base.Method, URL: base.URL, Namespace: base.Namespace, Locale: base.Locale, Caller: "user-2"},
	}

	baseKey, err := keyer.Key(base)
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}

	seen := map[string]bool{baseKey: true}
	for i, v := range variants {
		key, err := keyer.Key(v)
		if err != nil {
			t.Fatalf("Key failed for variant %d: %v", i, err)
		}
		if seen[key] {
			t.Errorf("variant %d collided with another request: %q", i, key)
		}
		seen[key] = true
	}
}

func TestDefaultKeyer_Format(t *testing.T) {
	keyer := NewDefaultKeyer()

	key, err := keyer.Key(Request{
		Method: "GET",
		URL:    "https://eu.api.example.com/data/wow/realm/index",
		Caller: "user-1",
	})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if !strings.HasPrefix(key, "req:user-1:") {
		t.Errorf("key %q does not carry the caller partition prefix", key)
	}

	anon, err := keyer.Key(Request{
		Method: "GET",
		URL:    "https://eu.api.example.com/data/wow/realm/index",
	})
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if !strings.HasPrefix(anon, "req:anonymous:") {
		t.Errorf("key %q does not default to the anonymous partition", anon)
	}
}

func TestDefaultKeyer_InvalidURL(t *testing.T) {
	keyer := NewDefaultKeyer()

	if _, err := keyer.Key(Request{Method: "GET", URL: "://not-a-url"}); err == nil {
		t.Error("expected error for unparseable URL")
	}
}
