package t212

import (
	"fmt"
	"net/http"

	"github.com/etnz/t212sync"
)

// StatusError is returned when the broker answers with a non-2xx status.
//
// It unwraps to t212sync.ErrRateLimitExceeded for 429, t212sync.ErrAuth for 401 and
// 403, and t212sync.ErrExportAPI otherwise.
type StatusError struct {
	Op         string // operation that failed, like "submit export".
	StatusCode int
	Status     string
	Body       string // excerpt of the response body.
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return t212sync.ErrRateLimitExceeded
	case http.StatusUnauthorized, http.StatusForbidden:
		return t212sync.ErrAuth
	default:
		return t212sync.ErrExportAPI
	}
}
