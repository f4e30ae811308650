// internal/dispatch/errors.go
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"thermal-print-service/internal/model"
)

var (
	// ErrDestinationUnavailable means the target is absent or resolved to nothing
	ErrDestinationUnavailable = errors.New("destination unavailable")
	// ErrPermissionDenied means the target exists but cannot be written
	ErrPermissionDenied = errors.New("permission denied")
	// ErrBackend is a transport or command failure
	ErrBackend = errors.New("backend error")
	// ErrAttemptTimeout means the attempt exceeded its time budget
	ErrAttemptTimeout = errors.New("attempt timed out")
	// ErrAllAttemptsFailed matches any *AggregateError
	ErrAllAttemptsFailed = errors.New("all print attempts failed")
)

// Classify maps an attempt error to a failure reason
func Classify(err error) model.FailureReason {
	switch {
	case err == nil:
		return model.ReasonNone
	case errors.Is(err, ErrPermissionDenied):
		return model.ReasonPermissionDenied
	case errors.Is(err, ErrDestinationUnavailable):
		return model.ReasonDestinationUnavailable
	case errors.Is(err, ErrAttemptTimeout), errors.Is(err, context.DeadlineExceeded):
		return model.ReasonTimeout
	default:
		return model.ReasonBackendError
	}
}

// AggregateError is returned when every attempt failed. Attempts are in
// the order they were made.
type AggregateError struct {
	DispatchID string
	Attempts   []model.AttemptResult
}

func (e *AggregateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d attempts)", ErrAllAttemptsFailed, len(e.Attempts))
	for i, a := range e.Attempts {
		fmt.Fprintf(&b, "; [%d] %s", i+1, a.Backend)
		if a.Destination != nil {
			fmt.Fprintf(&b, " %s", a.Destination)
		}
		if a.Encoding != "" {
			fmt.Fprintf(&b, " %s", a.Encoding)
			if a.RequestedEncoding != "" && a.RequestedEncoding != a.Encoding {
				fmt.Fprintf(&b, " (from %s)", a.RequestedEncoding)
			}
		}
		fmt.Fprintf(&b, ": %s", a.Reason)
		if a.Message != "" {
			fmt.Fprintf(&b, ": %s", a.Message)
		}
	}
	return b.String()
}

// Is reports ErrAllAttemptsFailed as matching
func (e *AggregateError) Is(target error) bool {
	return target == ErrAllAttemptsFailed
}

// Unwrap exposes each attempt's error to errors.Is and errors.As
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// HasPermissionDenied reports whether any attempt failed on permissions
func (e *AggregateError) HasPermissionDenied() bool {
	return e.Count(model.ReasonPermissionDenied) > 0
}

// Count returns how many attempts failed for reason
func (e *AggregateError) Count(reason model.FailureReason) int {
	n := 0
	for _, a := range e.Attempts {
		if a.Reason == reason {
			n++
		}
	}
	return n
}
