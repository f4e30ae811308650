package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"thermal-print-service/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.FailureReason
	}{
		{name: "nil", err: nil, want: model.ReasonNone},
		{name: "permission", err: fmt.Errorf("open: %w", ErrPermissionDenied), want: model.ReasonPermissionDenied},
		{name: "unavailable", err: fmt.Errorf("%w: gone", ErrDestinationUnavailable), want: model.ReasonDestinationUnavailable},
		{name: "attempt timeout", err: ErrAttemptTimeout, want: model.ReasonTimeout},
		{name: "context deadline", err: fmt.Errorf("lpr did not finish: %w", context.DeadlineExceeded), want: model.ReasonTimeout},
		{name: "other", err: errors.New("boom"), want: model.ReasonBackendError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestAggregateError(t *testing.T) {
	dest := model.Destination{Kind: model.DestinationDevicePath, Identifier: "/dev/usb/lp0"}
	aggErr := &AggregateError{Attempts: []model.AttemptResult{
		{Backend: "usb", Outcome: model.OutcomeFailure, Reason: model.ReasonDestinationUnavailable, Err: ErrDestinationUnavailable, Message: "none"},
		{Backend: "raw-device", Destination: &dest, Encoding: "CP858", Outcome: model.OutcomeFailure, Reason: model.ReasonPermissionDenied, Err: ErrPermissionDenied, Message: "denied"},
	}}

	msg := aggErr.Error()
	assert.Contains(t, msg, "2 attempts")
	assert.Contains(t, msg, "[1] usb")
	assert.Contains(t, msg, "[2] raw-device DEVICE_PATH(/dev/usb/lp0) CP858: PERMISSION_DENIED: denied")

	assert.True(t, aggErr.HasPermissionDenied())
	assert.Equal(t, 1, aggErr.Count(model.ReasonDestinationUnavailable))
	assert.True(t, errors.Is(aggErr, ErrAllAttemptsFailed))
	assert.True(t, errors.Is(aggErr, ErrDestinationUnavailable))
	assert.False(t, errors.Is(aggErr, ErrAttemptTimeout))

	assert.False(t, (&AggregateError{}).HasPermissionDenied())
}
