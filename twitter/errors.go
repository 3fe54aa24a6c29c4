package twitter

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a tagged error for non-2xx provider responses. Callers match
// on the status predicates below instead of probing response shapes.
type APIError struct {
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("x api status %d: %s", e.StatusCode, e.Detail)
	}
	if e.Title != "" {
		return fmt.Sprintf("x api status %d: %s", e.StatusCode, e.Title)
	}
	return fmt.Sprintf("x api status %d", e.StatusCode)
}

// IsRateLimited reports whether the provider rejected a call with HTTP 429.
func IsRateLimited(err error) bool {
	return statusIs(err, http.StatusTooManyRequests)
}

// IsUnauthorized reports whether the provider rejected the access token.
func IsUnauthorized(err error) bool {
	return statusIs(err, http.StatusUnauthorized)
}

// IsForbidden reports whether the provider denied the operation itself.
func IsForbidden(err error) bool {
	return statusIs(err, http.StatusForbidden)
}

func statusIs(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
