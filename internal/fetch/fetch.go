package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// DefaultStatusCode is attached to failures that never got a response.
const DefaultStatusCode = http.StatusInternalServerError

// Fetcher retrieves the raw body behind a URL.
//
// Failures are always *StatusError so callers can branch on the status
// without knowing which transport produced it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// StatusError is a failed fetch annotated with an HTTP-like status code, either
// the one reported upstream or DefaultStatusCode.
type StatusError struct {
	StatusCode int
	Url        string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d: %v", e.Url, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// NewStatusError annotates err with status, a status <= 0 means none was
// available and DefaultStatusCode is used.
func NewStatusError(url string, status int, err error) *StatusError {
	if status <= 0 {
		status = DefaultStatusCode
	}
	return &StatusError{StatusCode: status, Url: url, Err: err}
}

// StatusCode returns the status annotated on err, DefaultStatusCode when err
// is not a StatusError and 0 when err is nil.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return DefaultStatusCode
}

var schemePrefix = regexp.MustCompile(`^(https?:)?//`)

// SecureURL coerces a locator into an https URL: http://, https:// and //
// prefixes are rewritten and bare hosts get https:// prepended.
func SecureURL(locator string) string {
	locator = strings.TrimSpace(locator)
	if schemePrefix.MatchString(locator) {
		return schemePrefix.ReplaceAllString(locator, "https://")
	}
	if strings.Contains(locator, "://") {
		return locator
	}
	return "https://" + locator
}
