package eventbus

import (
	"context"
	"sync"
)

// Event names a published event type.
type Event string

const (
	EventCollectionCleared       Event = "collection.cleared"
	EventEntityAdded             Event = "entity.added"
	EventEntityCompletionToggled Event = "entity.completion-toggled"
	EventEntityDeleted           Event = "entity.deleted"
	EventEntityUpdated           Event = "entity.updated"
	EventPersistFailed           Event = "persist.failed"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus dispatches published events to subscribers on a single goroutine
// started with Start. Publishing never blocks: when the buffer is full the
// event is dropped and the OnDrop hooks fire.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled, then drains whatever is
// still buffered.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			bus.drain()
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) drain() {
	for {
		select {
		case env := <-bus.ch:
			bus.dispatch(env)
		default:
			return
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()

	bus.runOnSubscribe(event)
}

// PublishCollectionCleared enqueues a collection.cleared event.
func (bus *EventBus) PublishCollectionCleared(p CollectionClearedPayload) {
	bus.send(EventCollectionCleared, p)
}

// SubscribeCollectionCleared registers fn for collection.cleared events.
func (bus *EventBus) SubscribeCollectionCleared(fn func(CollectionClearedPayload)) {
	bus.subscribe(EventCollectionCleared, func(p any) { fn(p.(CollectionClearedPayload)) })
}

// PublishEntityAdded enqueues an entity.added event.
func (bus *EventBus) PublishEntityAdded(p EntityAddedPayload) {
	bus.send(EventEntityAdded, p)
}

// SubscribeEntityAdded registers fn for entity.added events.
func (bus *EventBus) SubscribeEntityAdded(fn func(EntityAddedPayload)) {
	bus.subscribe(EventEntityAdded, func(p any) { fn(p.(EntityAddedPayload)) })
}

// PublishEntityCompletionToggled enqueues an entity.completion-toggled event.
func (bus *EventBus) PublishEntityCompletionToggled(p EntityCompletionToggledPayload) {
	bus.send(EventEntityCompletionToggled, p)
}

// SubscribeEntityCompletionToggled registers fn for entity.completion-toggled events.
func (bus *EventBus) SubscribeEntityCompletionToggled(fn func(EntityCompletionToggledPayload)) {
	bus.subscribe(EventEntityCompletionToggled, func(p any) { fn(p.(EntityCompletionToggledPayload)) })
}

// PublishEntityDeleted enqueues an entity.deleted event.
func (bus *EventBus) PublishEntityDeleted(p EntityDeletedPayload) {
	bus.send(EventEntityDeleted, p)
}

// SubscribeEntityDeleted registers fn for entity.deleted events.
func (bus *EventBus) SubscribeEntityDeleted(fn func(EntityDeletedPayload)) {
	bus.subscribe(EventEntityDeleted, func(p any) { fn(p.(EntityDeletedPayload)) })
}

// PublishEntityUpdated enqueues an entity.updated event.
func (bus *EventBus) PublishEntityUpdated(p EntityUpdatedPayload) {
	bus.send(EventEntityUpdated, p)
}

// SubscribeEntityUpdated registers fn for entity.updated events.
func (bus *EventBus) SubscribeEntityUpdated(fn func(EntityUpdatedPayload)) {
	bus.subscribe(EventEntityUpdated, func(p any) { fn(p.(EntityUpdatedPayload)) })
}

// PublishPersistFailed enqueues a persist.failed event.
func (bus *EventBus) PublishPersistFailed(p PersistFailedPayload) {
	bus.send(EventPersistFailed, p)
}

// SubscribePersistFailed registers fn for persist.failed events.
func (bus *EventBus) SubscribePersistFailed(fn func(PersistFailedPayload)) {
	bus.subscribe(EventPersistFailed, func(p any) { fn(p.(PersistFailedPayload)) })
}
