// Package fetcher resolves URLs to page bodies over HTTP with retry,
// backoff and an opt-in TLS downgrade for hosts with broken certificates.
package fetcher

import (
	"context"
	"fmt"
)

// Fetcher resolves a URL to its response body.
type Fetcher interface {
	// Fetch returns the body of rawURL. A non-nil error means no content is
	// available; callers treat it as a soft failure.
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetcher: http %d from %s", e.StatusCode, e.URL)
}

// Retryable reports whether the status is one the fetch policy retries
// (429 rate limited, 502 bad gateway).
func (e *StatusError) Retryable() bool {
	return IsRetryableStatus(e.StatusCode)
}

// IsRetryableStatus reports whether a page fetch should back off and retry
// on the given status.
func IsRetryableStatus(code int) bool {
	return code == 429 || code == 502
}
