// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventDispatchStarted   EventType = "DISPATCH_STARTED"
	EventAttemptCompleted  EventType = "ATTEMPT_COMPLETED"
	EventDispatchSucceeded EventType = "DISPATCH_SUCCEEDED"
	EventDispatchFailed    EventType = "DISPATCH_FAILED"
)

// DispatchEvent is published for every step of a dispatch
type DispatchEvent struct {
	ID         uuid.UUID      `json:"id"`
	EventType  EventType      `json:"event_type"`
	DispatchID string         `json:"dispatch_id"`
	JobKind    JobKind        `json:"job_kind,omitempty"`
	Attempt    *AttemptResult `json:"attempt,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Severity   string         `json:"severity"` // INFO, WARNING, ERROR
}

// NewDispatchEvent stamps a new event
func NewDispatchEvent(eventType EventType, dispatchID string) DispatchEvent {
	severity := "INFO"
	switch eventType {
	case EventDispatchFailed:
		severity = "ERROR"
	}
	return DispatchEvent{
		ID:         uuid.New(),
		EventType:  eventType,
		DispatchID: dispatchID,
		Timestamp:  time.Now(),
		Severity:   severity,
	}
}
