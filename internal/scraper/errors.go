// internal/scraper/errors.go
package scraper

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	// KindNetwork covers connection failures, timeouts and 5xx responses.
	KindNetwork ErrorKind = "network"
	// KindParse covers responses whose price field is absent or non-numeric.
	KindParse ErrorKind = "parse"
	// KindRateLimited covers 429 responses from the extraction API.
	KindRateLimited ErrorKind = "rate_limited"
)

// Error is the typed failure surfaced at the scrape boundary. The
// orchestrator catches it per product and continues the batch.
type Error struct {
	Kind  ErrorKind
	URL   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("scrape %s failed (%s): %v", e.URL, e.Kind, e.cause)
	}
	return fmt.Sprintf("scrape %s failed (%s)", e.URL, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind ErrorKind, url string, cause error) *Error {
	return &Error{Kind: kind, URL: url, cause: cause}
}

// KindOf reports the error kind, or empty when err is not a scrape error.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
