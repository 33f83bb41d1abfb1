package eventbus_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/colonyops/almanac/internal/core/eventbus"
	"github.com/colonyops/almanac/internal/core/eventbus/testbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_DeliversTypedPayload(t *testing.T) {
	tb := testbus.New(t)

	got := make(chan eventbus.CollectionClearedPayload, 1)
	tb.SubscribeCollectionCleared(func(p eventbus.CollectionClearedPayload) {
		got <- p
	})

	tb.PublishCollectionCleared(eventbus.CollectionClearedPayload{Collection: "books", Removed: 7})

	select {
	case p := <-got:
		assert.Equal(t, "books", p.Collection)
		assert.Equal(t, 7, p.Removed)
	case <-time.After(time.Second):
		t.Fatal("payload was not delivered")
	}
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := eventbus.New(1)

	var dropped atomic.Int32
	bus.OnDrop(func(eventbus.Event, any) { dropped.Add(1) })

	// Not started, so the second publish has nowhere to go.
	bus.PublishEntityDeleted(eventbus.EntityDeletedPayload{EntityID: "a"})
	bus.PublishEntityDeleted(eventbus.EntityDeletedPayload{EntityID: "b"})

	assert.Equal(t, int32(1), dropped.Load())
}

func TestEventBus_RecoversSubscriberPanic(t *testing.T) {
	tb := testbus.New(t)

	panicked := make(chan any, 1)
	tb.OnPanic(func(_ eventbus.Event, _ any, recovered any) { panicked <- recovered })
	tb.SubscribeEntityAdded(func(eventbus.EntityAddedPayload) { panic("boom") })

	tb.PublishEntityAdded(eventbus.EntityAddedPayload{})

	select {
	case r := <-panicked:
		assert.Equal(t, "boom", r)
	case <-time.After(time.Second):
		t.Fatal("panic hook did not fire")
	}

	// The recording subscriber still ran.
	tb.AssertPublished(t, eventbus.EventEntityAdded)
}

func TestEventBus_StartDrainsOnCancel(t *testing.T) {
	bus := eventbus.New(8)

	var n atomic.Int32
	bus.SubscribeEntityDeleted(func(eventbus.EntityDeletedPayload) { n.Add(1) })

	bus.PublishEntityDeleted(eventbus.EntityDeletedPayload{EntityID: "a"})
	bus.PublishEntityDeleted(eventbus.EntityDeletedPayload{EntityID: "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Start(ctx)

	require.Equal(t, int32(2), n.Load())
}

func TestEventBus_OnSubscribe(t *testing.T) {
	bus := eventbus.New(1)

	var seen []eventbus.Event
	bus.OnSubscribe(func(e eventbus.Event) { seen = append(seen, e) })
	bus.SubscribePersistFailed(func(eventbus.PersistFailedPayload) {})

	assert.Equal(t, []eventbus.Event{eventbus.EventPersistFailed}, seen)
}
