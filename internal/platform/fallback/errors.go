package fallback

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrNotConfigured is returned by remote operations whose endpoint or
// credentials are absent. It is classified like any other remote failure.
var ErrNotConfigured = errors.New("remote endpoint not configured")

// StatusError reports a non-2xx response from a remote service.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
}

// MalformedError reports a response body that could not be decoded into the
// expected shape.
type MalformedError struct {
	Op  string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// PanicError wraps a value recovered from a panicking remote operation.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("remote operation panicked: %v", e.Value)
}

// Class labels a remote failure for logs and metrics.
type Class string

const (
	ClassNone         Class = ""
	ClassUnconfigured Class = "unconfigured"
	ClassTimeout      Class = "timeout"
	ClassStatus       Class = "status"
	ClassMalformed    Class = "malformed"
	ClassNetwork      Class = "network"
	ClassPanic        Class = "panic"
)

// Classify maps an error from a remote operation onto a failure class.
// Every class is recoverable; the distinction only matters for observability.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}

	var statusErr *StatusError
	var malformedErr *MalformedError
	var panicErr *PanicError
	var netErr net.Error

	switch {
	case errors.Is(err, ErrNotConfigured):
		return ClassUnconfigured
	case errors.As(err, &panicErr):
		return ClassPanic
	case errors.As(err, &malformedErr):
		return ClassMalformed
	case errors.As(err, &statusErr):
		return ClassStatus
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ClassTimeout
	default:
		return ClassNetwork
	}
}
