package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/shpitdev/site-email-crawler/pkg/pipeline/redact"
)

var (
	// ErrDisallowed is returned when robots.txt forbids fetching a URL.
	ErrDisallowed = errors.New("disallowed by robots.txt")
	// ErrTooManyRedirects is returned when the redirect hop limit is exceeded.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// HTTPError is a sanitized summary of a non-2xx page response.
//
// Response bodies are never included.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	status := strings.TrimSpace(e.Status)
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: url=%s status=%s", redact.Secrets(e.URL), status)
}

// Temporary reports whether the status is worth retrying later (429 or 5xx).
func (e *HTTPError) Temporary() bool {
	return e != nil && (e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError)
}

// RaiseForStatus returns an *HTTPError unless p carries a 2xx status.
func RaiseForStatus(p *Page) error {
	if p == nil {
		return &HTTPError{}
	}
	if p.StatusCode >= 200 && p.StatusCode < 300 {
		return nil
	}
	return &HTTPError{URL: p.URL, StatusCode: p.StatusCode, Status: p.Status}
}

// IsTransient reports whether err is a failure another attempt could fix:
// timeouts, temporary network errors, 429 and 5xx responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDisallowed) || errors.Is(err, ErrTooManyRedirects) {
		return false
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Temporary()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
