// util/event_bus.go

package util

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/themis/logging"
)

const (
	EventDecisionEvaluated = "decision.evaluated"
	EventPolicyCreated     = "policy.created"
	EventPolicyDeleted     = "policy.deleted"
)

// Event represents an event in the system
type Event struct {
	Type    string
	Payload interface{}
}

// EventHandler is a function that handles an event
type EventHandler func(context.Context, Event) error

type subscription struct {
	id      uint64
	handler EventHandler
}

// EventBus fans events out to subscribers, each handler on its own goroutine.
type EventBus struct {
	subscribers map[string][]subscription
	nextID      uint64
	mu          sync.RWMutex
	errorChan   chan error
	inflight    sync.WaitGroup
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]subscription),
		errorChan:   make(chan error, 100),
	}
}

// Subscribe registers handler for eventType and returns an id for Unsubscribe.
func (eb *EventBus) Subscribe(eventType string, handler EventHandler) uint64 {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscription{id: eb.nextID, handler: handler})
	return eb.nextID
}

// Publish sends an event to all subscribers. Handlers outlive the caller's
// request, so they get a context that is never cancelled by it.
func (eb *EventBus) Publish(ctx context.Context, eventType string, payload interface{}) {
	eb.mu.RLock()
	subs := eb.subscribers[eventType]
	eb.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	event := Event{Type: eventType, Payload: payload}
	detached := context.WithoutCancel(ctx)

	for _, sub := range subs {
		eb.inflight.Add(1)
		go func(h EventHandler) {
			defer eb.inflight.Done()
			if err := h(detached, event); err != nil {
				select {
				case eb.errorChan <- fmt.Errorf("event handler error: %w", err):
				default:
					logger.Error("Error channel full, logging event handler error",
						zap.Error(err),
						zap.String("eventType", eventType))
				}
			}
		}(sub.handler)
	}
}

// Start begins processing events and handling errors
func (eb *EventBus) Start(ctx context.Context) {
	go eb.processErrors(ctx)
}

// Wait blocks until every handler started so far has returned.
func (eb *EventBus) Wait() {
	eb.inflight.Wait()
}

func (eb *EventBus) processErrors(ctx context.Context) {
	for {
		select {
		case err := <-eb.errorChan:
			logger.Error("Event handler error", zap.Error(err))
		case <-ctx.Done():
			return
		}
	}
}

func (eb *EventBus) Unsubscribe(eventType string, id uint64) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[eventType]
	for i, sub := range subs {
		if sub.id == id {
			eb.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}
