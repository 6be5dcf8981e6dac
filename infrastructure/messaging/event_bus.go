// Package messaging provides the in-process event bus. Mutations
// publish domain events after they commit; the UI push layer and any
// projections subscribe. Delivery is synchronous and best-effort, so a
// panicking subscriber cannot take the engine down.
package messaging

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/events"
)

type subscriber struct {
	id      int
	handler func(events.DomainEvent)
}

// EventBus dispatches domain events to in-process subscribers
type EventBus struct {
	mu     sync.RWMutex
	nextID int
	byType map[string][]subscriber
	all    []subscriber
	logger *zap.Logger
}

// NewEventBus creates an empty bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		byType: make(map[string][]subscriber),
		logger: logger,
	}
}

// Publish delivers each event to its type subscribers and to the
// catch-all subscribers
func (b *EventBus) Publish(ctx context.Context, evts ...events.DomainEvent) {
	for _, evt := range evts {
		b.mu.RLock()
		typed := append([]subscriber(nil), b.byType[evt.GetEventType()]...)
		all := append([]subscriber(nil), b.all...)
		b.mu.RUnlock()

		for _, sub := range typed {
			b.deliver(sub, evt)
		}
		for _, sub := range all {
			b.deliver(sub, evt)
		}
	}
}

// Subscribe registers a handler for one event type and returns the
// function that removes it
func (b *EventBus) Subscribe(eventType string, handler func(events.DomainEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.byType[eventType] = append(b.byType[eventType], subscriber{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.byType[eventType]
		for i, sub := range subs {
			if sub.id == id {
				b.byType[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll registers a handler for every event
func (b *EventBus) SubscribeAll(handler func(events.DomainEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscriber{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.all {
			if sub.id == id {
				b.all = append(b.all[:i], b.all[i+1:]...)
				return
			}
		}
	}
}

func (b *EventBus) deliver(sub subscriber, evt events.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked",
				zap.String("eventType", evt.GetEventType()),
				zap.Any("panic", r),
			)
		}
	}()
	sub.handler(evt)
}
