package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a failed fetch.
type ErrorKind string

const (
	// Unreachable covers connection, DNS, TLS, redirect and body read failures.
	Unreachable ErrorKind = "unreachable"
	// NonSuccessStatus means the server answered with a non-2xx status.
	NonSuccessStatus ErrorKind = "non_success_status"
	// Timeout means the configured or the caller's deadline elapsed.
	Timeout ErrorKind = "timeout"
)

// Error describes a failed fetch of URL.
type Error struct {
	Kind       ErrorKind
	StatusCode int // set for NonSuccessStatus
	URL        string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == NonSuccessStatus:
		return fmt.Sprintf("fetching %s: status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetching %s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetching %s: %s", e.URL, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the fetch could help. A status reply
// is final.
func (e *Error) Retryable() bool {
	return e.Kind == Unreachable || e.Kind == Timeout
}

// classify turns a transport or read error into an *Error.
func classify(url string, err error) *Error {
	kind := Unreachable
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		kind = Timeout
	}

	return &Error{Kind: kind, URL: url, Err: err}
}
