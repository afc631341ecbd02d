package client

import (
	"errors"
	"fmt"
	"strings"
)

// APIError is a non-2xx backend response with the human-readable detail the
// server attached. The presentation layer shows Detail verbatim.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API %d: %s", e.Status, e.Detail)
}

// isTokenTooEarly recognizes the identity layer's transient rejection of a
// token used before its grace period elapsed. These are retried once after
// the grace delay rather than surfaced.
func isTokenTooEarly(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Status != 400 && apiErr.Status != 401 {
		return false
	}
	return strings.Contains(apiErr.Detail, "Token used too early") ||
		strings.Contains(apiErr.Detail, "TOKEN_TOO_EARLY")
}
