package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger registers bus hooks that log all event activity at debug level.
// Uses OnPublish for event firing, OnDrop for buffer-full warnings, and OnPanic
// for subscriber panic reporting.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		e := logger.Debug().Str("event", string(event))
		if v, ok := versionOf(payload); ok {
			e = e.Uint64("version", v)
		}
		e.Msg("event fired")
	})

	bus.OnDrop(func(event Event, _ any) {
		logger.Warn().Str("event", string(event)).Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

func versionOf(payload any) (uint64, bool) {
	switch p := payload.(type) {
	case EntityAddedPayload:
		return p.Version, true
	case EntityUpdatedPayload:
		return p.Version, true
	case EntityDeletedPayload:
		return p.Version, true
	case EntityCompletionToggledPayload:
		return p.Version, true
	case CollectionClearedPayload:
		return p.Version, true
	default:
		return 0, false
	}
}
