package engine

import (
	"errors"
	"fmt"
)

// APIError is returned for any non-2xx engine response.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("engine returned status %d for %s %s", e.StatusCode, e.Method, e.Path)
}

// StatusCode returns the engine HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
