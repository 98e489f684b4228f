package armory

import (
	"errors"
	"testing"
)

func newBareClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	if cfg.CacheDir == "" {
		cfg.CacheDir = t.TempDir()
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestPrepare_URLParamsWin(t *testing.T) {
	c := newBareClient(t, Config{DefaultNamespace: "static-us", DefaultLocale: "en_US"})

	req, err := c.prepare("https://eu.api.example.com/data/wow/item/19019?namespace=static-eu", Options{
		Namespace: "static-kr",
		Locale:    "ko_KR",
	})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}

	if req.namespace != "static-eu" {
		t.Errorf("namespace = %q, URL value must win", req.namespace)
	}
	if req.locale != "ko_KR" {
		t.Errorf("locale = %q, option value should apply when URL has none", req.locale)
	}

	q := req.url.Query()
	if got := q.Get("namespace"); got != "static-eu" {
		t.Errorf("outbound namespace = %q, want static-eu", got)
	}
	if got := q.Get("locale"); got != "ko_KR" {
		t.Errorf("outbound locale = %q, want ko_KR", got)
	}
}

func TestPrepare_ClientDefaultsApply(t *testing.T) {
	c := newBareClient(t, Config{DefaultNamespace: "dynamic-eu", DefaultLocale: "de_DE"})

	req, err := c.prepare("https://eu.api.example.com/data/wow/token/index", Options{})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}

	if req.namespace != "dynamic-eu" || req.locale != "de_DE" {
		t.Errorf("got namespace=%q locale=%q, want client defaults", req.namespace, req.locale)
	}
	q := req.url.Query()
	if q.Get("namespace") != "dynamic-eu" || q.Get("locale") != "de_DE" {
		t.Errorf("defaults not written back into query: %v", q)
	}
}

func TestPrepare_NoDefaultsLeavesQueryClean(t *testing.T) {
	c := newBareClient(t, Config{})

	req, err := c.prepare("https://eu.api.example.com/data/wow/item/19019", Options{})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if req.url.RawQuery != "" {
		t.Errorf("query = %q, want empty when nothing resolves", req.url.RawQuery)
	}
}

func TestPrepare_RejectsRelativeURL(t *testing.T) {
	c := newBareClient(t, Config{})

	for _, raw := range []string{"/data/wow/item/19019", "not a url at all\x7f", ""} {
		if _, err := c.prepare(raw, Options{}); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("prepare(%q) = %v, want ErrInvalidURL", raw, err)
		}
	}
}

func TestPrepare_KeyVariesByCaller(t *testing.T) {
	c := newBareClient(t, Config{})
	const raw = "https://eu.api.example.com/profile/wow/character/silvermoon/aeryn"

	anon, err := c.prepare(raw, Options{})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	named, err := c.prepare(raw, Options{TokenUserID: "user-7"})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}

	if anon.key == named.key {
		t.Error("distinct callers must not share a cache key")
	}
	if anon.caller != AnonymousCaller || named.caller != "user-7" {
		t.Errorf("callers = %q / %q", anon.caller, named.caller)
	}
}

func TestPrepare_DefaultMethod(t *testing.T) {
	c := newBareClient(t, Config{})
	req, err := c.prepare("https://eu.api.example.com/data/wow/item/19019", Options{})
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if req.method != "GET" {
		t.Errorf("method = %q, want GET", req.method)
	}
}
