package thor

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidResponse marks a response the node sent but the client could not accept.
var ErrInvalidResponse = errors.New("invalid response from thor node")

// HTTPError is returned when the node answers with a non-200 status.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// NewHTTPError creates a new HTTPError, truncating very long bodies.
func NewHTTPError(method, path string, statusCode int, body []byte) *HTTPError {
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody]
	}

	return &HTTPError{Method: method, Path: path, StatusCode: statusCode, Body: string(body)}
}
