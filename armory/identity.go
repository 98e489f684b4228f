package armory

import "github.com/golang-jwt/jwt/v5"

// AnonymousCaller is the caller identity used when none can be resolved.
// Anonymous callers share one rate-limit bucket and one cache partition.
const AnonymousCaller = "anonymous"

// CallerIdentity resolves the identity that partitions the rate-limit
// budget and the cache key space. An explicit TokenUserID wins; otherwise,
// if the access token is a JWT, its subject claim is used.
//
// The JWT parse is deliberately unverified: identity here only picks a
// bucket and a key prefix, it grants nothing. Signature verification is the
// API server's job.
func CallerIdentity(opts Options) string {
	if opts.TokenUserID != "" {
		return opts.TokenUserID
	}
	if opts.AccessToken != "" {
		if sub := jwtSubject(opts.AccessToken); sub != "" {
			return sub
		}
	}
	return AnonymousCaller
}

// jwtSubject extracts the sub claim from a JWT-shaped token. Returns ""
// for opaque tokens.
func jwtSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
