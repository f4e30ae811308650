// internal/model/attempt.go
package model

import "time"

// Outcome is the result of one attempt
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// FailureReason classifies why an attempt failed
type FailureReason string

const (
	ReasonNone                   FailureReason = ""
	ReasonDestinationUnavailable FailureReason = "DESTINATION_UNAVAILABLE"
	ReasonPermissionDenied       FailureReason = "PERMISSION_DENIED"
	ReasonBackendError           FailureReason = "BACKEND_ERROR"
	ReasonTimeout                FailureReason = "TIMEOUT"
)

// AttemptResult records a single backend × encoding × destination try.
// Destination is nil and Encoding empty when the backend resolved nothing.
// Encoding is the code page on the wire; RequestedEncoding is the profile
// that was asked for and differs only for degraded text.
type AttemptResult struct {
	Backend           string        `json:"backend"`
	Destination       *Destination  `json:"destination,omitempty"`
	Encoding          string        `json:"encoding,omitempty"`
	RequestedEncoding string        `json:"requested_encoding,omitempty"`
	Degraded          bool          `json:"degraded,omitempty"`
	Outcome           Outcome       `json:"outcome"`
	Reason            FailureReason `json:"reason,omitempty"`
	Message           string        `json:"error,omitempty"`
	Err               error         `json:"-"`
	Duration          time.Duration `json:"duration_ns"`
}

// Succeeded reports whether the attempt delivered the payload
func (r AttemptResult) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}
