package armory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidehollow/loremaster/cache"
	"github.com/tidehollow/loremaster/observe"
)

// Options carries the per-call request parameters.
type Options struct {
	// Method is the HTTP method. Default: GET.
	Method string

	// Namespace is the game-data namespace added as a query parameter when
	// the URL does not already carry one. A namespace present in the URL is
	// never overwritten.
	Namespace string

	// Locale is the response locale, handled like Namespace.
	Locale string

	// TokenUserID selects the per-caller rate-limit bucket and cache-key
	// partition. Defaults to the anonymous identity.
	TokenUserID string

	// AccessToken, if present, is sent as a bearer credential.
	AccessToken string

	// Headers are extra request headers.
	Headers map[string]string
}

// request is a fully normalized fetch: resolved namespace/locale, caller
// identity, cache key, and telemetry metadata.
type request struct {
	method      string
	url         *url.URL
	namespace   string
	locale      string
	caller      string
	accessToken string
	headers     map[string]string
	key         string
	meta        observe.RequestMeta
}

// prepare normalizes the raw URL against the options and client defaults
// and derives the cache key. Query parameters already present in the URL
// always win over option- or client-supplied values.
func (c *Client) prepare(rawURL string, opts Options) (*request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, rawURL)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	q := u.Query()
	namespace := resolveParam(q, "namespace", opts.Namespace, c.defaultNamespace)
	locale := resolveParam(q, "locale", opts.Locale, c.defaultLocale)
	u.RawQuery = q.Encode()

	caller := CallerIdentity(opts)

	key, err := c.keyer.Key(cache.Request{
		Method:    method,
		URL:       u.String(),
		Namespace: namespace,
		Locale:    locale,
		Caller:    caller,
	})
	if err != nil {
		return nil, err
	}

	return &request{
		method:      method,
		url:         u,
		namespace:   namespace,
		locale:      locale,
		caller:      caller,
		accessToken: opts.AccessToken,
		headers:     opts.Headers,
		key:         key,
		meta: observe.RequestMeta{
			Method:    method,
			Host:      u.Host,
			Path:      u.Path,
			Namespace: namespace,
			Locale:    locale,
			Caller:    caller,
		},
	}, nil
}

// resolveParam picks the effective value for a query parameter: URL value,
// then option value, then client default. Non-URL values are written back
// into the query so the outbound request carries them.
func resolveParam(q url.Values, name, optValue, defaultValue string) string {
	if v := q.Get(name); v != "" {
		return v
	}
	v := optValue
	if v == "" {
		v = defaultValue
	}
	if v != "" {
		q.Set(name, v)
	}
	return v
}

// build converts the normalized request into an *http.Request, attaching
// extra headers and the bearer credential when present.
func (r *request) build(ctx context.Context) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, r.method, r.url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("armory: failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range r.headers {
		httpReq.Header.Set(k, v)
	}
	if r.accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.accessToken)
	}
	return httpReq, nil
}
