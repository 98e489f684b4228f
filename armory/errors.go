package armory

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed *Error below matches these through errors.Is,
// so callers can branch without unpacking the struct.
var (
	// ErrInvalidURL indicates the request URL could not be parsed or is not absolute.
	ErrInvalidURL = errors.New("armory: url is invalid")

	// ErrRequestFailed indicates a non-2xx response that is not a variant gap.
	ErrRequestFailed = errors.New("armory: request failed")

	// ErrEndpointUnavailable indicates the endpoint structurally does not
	// exist for the requested data variant. Callers render "unsupported for
	// this variant" instead of a generic failure.
	ErrEndpointUnavailable = errors.New("armory: endpoint unavailable for this data variant")
)

// Error is the typed failure surface of a fetch: the HTTP status that ended
// the request and whether the endpoint is structurally unavailable for the
// requested data variant.
type Error struct {
	URL                 string
	Status              int
	EndpointUnavailable bool
}

func (e *Error) Error() string {
	if e.EndpointUnavailable {
		return fmt.Sprintf("armory: endpoint unavailable for this data variant (status %d): %s", e.Status, e.URL)
	}
	return fmt.Sprintf("armory: request failed with status %d: %s", e.Status, e.URL)
}

// Is reports sentinel matches: ErrEndpointUnavailable for variant gaps,
// ErrRequestFailed for everything else.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrEndpointUnavailable:
		return e.EndpointUnavailable
	case ErrRequestFailed:
		return !e.EndpointUnavailable
	}
	return false
}

// IsEndpointUnavailable reports whether err represents a structurally
// unavailable endpoint.
func IsEndpointUnavailable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.EndpointUnavailable
}

// StatusCode extracts the HTTP status from a fetch error. Returns 0 when
// the error carries no status (transport or decode failures).
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
