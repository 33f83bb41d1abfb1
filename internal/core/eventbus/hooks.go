package eventbus

import "sync"

// hooks observe the bus itself rather than entity changes. The debug logger
// registered by almanac.Open is their main consumer.
type hooks struct {
	mu          sync.RWMutex
	onPublish   []func(Event, any)
	onDrop      []func(Event, any)
	onSubscribe []func(Event)
	onPanic     []func(Event, any, any)
}

// OnPublish registers fn to run after an event is enqueued.
func (bus *EventBus) OnPublish(fn func(Event, any)) {
	bus.addHook(func(h *hooks) { h.onPublish = append(h.onPublish, fn) })
}

// OnDrop registers fn to run when an event is discarded because the buffer
// is full. Store mutations never block on a slow subscriber.
func (bus *EventBus) OnDrop(fn func(Event, any)) {
	bus.addHook(func(h *hooks) { h.onDrop = append(h.onDrop, fn) })
}

// OnSubscribe registers fn to run after a subscriber is added.
func (bus *EventBus) OnSubscribe(fn func(Event)) {
	bus.addHook(func(h *hooks) { h.onSubscribe = append(h.onSubscribe, fn) })
}

// OnPanic registers fn to run when a subscriber panics. A panicking hook is
// itself recovered.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) {
	bus.addHook(func(h *hooks) { h.onPanic = append(h.onPanic, fn) })
}

func (bus *EventBus) addHook(add func(*hooks)) {
	bus.hooks.mu.Lock()
	add(&bus.hooks)
	bus.hooks.mu.Unlock()
}

// snapshot copies a hook list under the read lock so hooks run unlocked and
// may register further hooks.
func snapshot[F any](h *hooks, list *[]F) []F {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]F, len(*list))
	copy(out, *list)
	return out
}

// send enqueues an event without blocking. Used by the typed Publish methods.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		for _, fn := range snapshot(&bus.hooks, &bus.hooks.onPublish) {
			fn(event, payload)
		}
	default:
		for _, fn := range snapshot(&bus.hooks, &bus.hooks.onDrop) {
			fn(event, payload)
		}
	}
}

func (bus *EventBus) runOnSubscribe(event Event) {
	for _, fn := range snapshot(&bus.hooks, &bus.hooks.onSubscribe) {
		fn(event)
	}
}

func (bus *EventBus) runOnPanic(event Event, payload any, recovered any) {
	for _, fn := range snapshot(&bus.hooks, &bus.hooks.onPanic) {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn(event, payload, recovered)
		}()
	}
}
