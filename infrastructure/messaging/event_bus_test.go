package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/modryn-studio/ProjectLoom-sub000/domain/core/valueobjects"
	"github.com/modryn-studio/ProjectLoom-sub000/domain/events"
)

func cardCreated() events.DomainEvent {
	return events.NewCardCreated(valueobjects.NewCardID(), valueobjects.NewWorkspaceID(), time.Now())
}

func workspaceCreated() events.DomainEvent {
	return events.NewWorkspaceCreated(valueobjects.NewWorkspaceID(), "bus test", time.Now())
}

func TestSubscribeByType(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	ctx := context.Background()

	var got []string
	bus.Subscribe(events.TypeCardCreated, func(evt events.DomainEvent) {
		got = append(got, evt.GetEventType())
	})

	bus.Publish(ctx, cardCreated(), workspaceCreated())
	assert.Equal(t, []string{events.TypeCardCreated}, got)
}

func TestSubscribeAllSeesEverything(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	ctx := context.Background()

	var count int
	bus.SubscribeAll(func(events.DomainEvent) { count++ })

	bus.Publish(ctx, cardCreated(), workspaceCreated(), cardCreated())
	assert.Equal(t, 3, count)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	ctx := context.Background()

	var count int
	unsubscribe := bus.Subscribe(events.TypeCardCreated, func(events.DomainEvent) { count++ })

	bus.Publish(ctx, cardCreated())
	unsubscribe()
	bus.Publish(ctx, cardCreated())

	assert.Equal(t, 1, count)
}

func TestPanickingSubscriberDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	ctx := context.Background()

	var reached bool
	bus.Subscribe(events.TypeCardCreated, func(events.DomainEvent) { panic("boom") })
	bus.Subscribe(events.TypeCardCreated, func(events.DomainEvent) { reached = true })

	bus.Publish(ctx, cardCreated())
	assert.True(t, reached)
}
