package arxiv

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the arXiv client.
var (
	// ErrNetworkError indicates the request never produced an HTTP response.
	ErrNetworkError = errors.New("network error communicating with arXiv")

	// ErrInvalidResponse indicates the response body is not a readable Atom feed.
	ErrInvalidResponse = errors.New("invalid response from arXiv")
)

// APIError represents a non-success HTTP status from the arXiv API.
type APIError struct {
	StatusCode int
	Query      string // search_query of the failing request
	Start      int
}

func (e *APIError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("arXiv API error (status %d) for %q at offset %d", e.StatusCode, e.Query, e.Start)
	}
	return fmt.Sprintf("arXiv API error (status %d)", e.StatusCode)
}

// IsTransportError returns true for network failures and non-success statuses.
func IsTransportError(err error) bool {
	if errors.Is(err, ErrNetworkError) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsParseError returns true if the error came from an unreadable response body.
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// IsRateLimited returns true if arXiv answered 429 or 503, which it uses to ask clients to back off.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode == http.StatusServiceUnavailable
	}
	return false
}
