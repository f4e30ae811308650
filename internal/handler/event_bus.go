// internal/handler/event_bus.go
package handler

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"thermal-print-service/internal/model"
)

const (
	eventBufferSize      = 1000
	subscriberBufferSize = 100
)

// EventBus fans dispatch events out to subscribers. Publishing never
// blocks the dispatcher: a full bus or a slow subscriber drops events.
type EventBus struct {
	subscribers map[string]chan model.DispatchEvent
	events      chan model.DispatchEvent
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string]chan model.DispatchEvent),
		events:      make(chan model.DispatchEvent, eventBufferSize),
		logger:      logger,
	}
}

// Start distributes events until ctx is cancelled, then closes every
// subscriber channel.
func (eb *EventBus) Start(ctx context.Context) {
	defer eb.closeAll()
	for {
		select {
		case event := <-eb.events:
			eb.distributeEvent(event)
		case <-ctx.Done():
			return
		}
	}
}

// HandleDispatchEvent publishes an event from the dispatcher
func (eb *EventBus) HandleDispatchEvent(event model.DispatchEvent) {
	eb.Publish(event)
}

// Publish publishes an event
func (eb *EventBus) Publish(event model.DispatchEvent) {
	select {
	case eb.events <- event:
	default:
		if eb.logger != nil {
			eb.logger.Warn("Event bus full, dropping event",
				zap.String("event_type", string(event.EventType)),
				zap.String("dispatch_id", event.DispatchID),
			)
		}
	}
}

// Subscribe returns a subscription id and a channel receiving every event
func (eb *EventBus) Subscribe() (string, <-chan model.DispatchEvent) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	id := uuid.NewString()
	subscriber := make(chan model.DispatchEvent, subscriberBufferSize)
	eb.subscribers[id] = subscriber
	return id, subscriber
}

// Unsubscribe removes a subscription and closes its channel
func (eb *EventBus) Unsubscribe(id string) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	if subscriber, ok := eb.subscribers[id]; ok {
		delete(eb.subscribers, id)
		close(subscriber)
	}
}

// SubscriberCount returns the number of active subscriptions
func (eb *EventBus) SubscriberCount() int {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()
	return len(eb.subscribers)
}

// distributeEvent sends under the read lock so Unsubscribe cannot close
// a channel mid-send.
func (eb *EventBus) distributeEvent(event model.DispatchEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for _, subscriber := range eb.subscribers {
		select {
		case subscriber <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}

func (eb *EventBus) closeAll() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	for id, subscriber := range eb.subscribers {
		close(subscriber)
		delete(eb.subscribers, id)
	}
}
