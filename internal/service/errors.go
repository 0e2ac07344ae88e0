package service

import (
	"errors"
	"fmt"
	"net/http"
)

// UsageError reports a call the client refuses to send, e.g. creating a
// todo in the overview list.
type UsageError struct {
	Op     string
	ListID string
	Reason string
}

func (e *UsageError) Error() string {
	if e.ListID != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Reason, e.ListID)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// TransportError reports a network failure or timeout. Err is the cause.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BackendError reports a non-2xx response. Err carries the decoded body.
type BackendError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsUsage reports whether err is or wraps a *UsageError.
func IsUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// StatusCode returns the HTTP status of a wrapped *BackendError, or 0.
func StatusCode(err error) int {
	var be *BackendError
	if errors.As(err, &be) {
		return be.StatusCode
	}
	return 0
}
