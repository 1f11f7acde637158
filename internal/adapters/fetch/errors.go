package fetch

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrUpstream marks any failure talking to an upstream API.
	ErrUpstream = errors.New("upstream request failed")
	// ErrDecode marks a response body that is not the expected JSON.
	ErrDecode = errors.New("decode upstream response")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// Is lets errors.Is(err, ErrUpstream) match status failures.
func (e *StatusError) Is(target error) bool {
	return target == ErrUpstream
}

// Retryable reports whether another attempt may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// NotFound reports a 404 response.
func (e *StatusError) NotFound() bool {
	return e.StatusCode == 404
}
