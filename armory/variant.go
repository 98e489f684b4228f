package armory

import (
	"net/url"
	"strings"
)

// legacyPathMarkers are URL path fragments identifying endpoints that serve
// legacy game-version data. A 403/404 on such an endpoint means the route
// does not exist for that variant, not that the resource is missing.
var legacyPathMarkers = []string{
	"classic",
	"season-of-discovery",
}

// legacyNamespaceHints are namespace substrings identifying legacy data
// variants (e.g. "profile-classic1x-eu", "static-classic-era-us").
var legacyNamespaceHints = []string{
	"classic",
	"era",
}

// VariantUnavailable decides whether a 403/404 for this request indicates a
// data variant that structurally lacks the endpoint, as opposed to a genuine
// not-found or permission error. Pure string matching; never touches the
// network.
func VariantUnavailable(u *url.URL, namespace string) bool {
	if u != nil {
		path := strings.ToLower(u.Path)
		for _, marker := range legacyPathMarkers {
			if strings.Contains(path, marker) {
				return true
			}
		}
	}

	ns := strings.ToLower(namespace)
	if ns == "" {
		return false
	}
	for _, hint := range legacyNamespaceHints {
		if strings.Contains(ns, hint) {
			return true
		}
	}
	return false
}
