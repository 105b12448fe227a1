package webhook

import (
	"errors"
	"fmt"
)

var (
	// ErrEndpointNotConfigured is returned when the URL for an action is empty.
	ErrEndpointNotConfigured = errors.New("webhook endpoint not configured")

	// ErrStatusNotSuccess is returned when a 2xx response carries a status
	// field other than "success".
	ErrStatusNotSuccess = errors.New("webhook status not success")

	// ErrMalformedResponse is returned when a 2xx body cannot be decoded into
	// the expected shape.
	ErrMalformedResponse = errors.New("webhook response malformed")

	// ErrMissingFile is returned by Upload when a part is absent or empty.
	ErrMissingFile = errors.New("upload file missing or empty")
)

// APIError is a non-2xx response from an automation endpoint.
type APIError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook %s: %s", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("webhook %s: %s: %s", e.Endpoint, e.Status, truncate(e.Body, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
