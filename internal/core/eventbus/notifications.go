package eventbus

import (
	"fmt"

	"github.com/colonyops/almanac/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus  *EventBus
	sink notify.Sink
}

// NewNotificationRouter constructs a router delivering notifications to sink.
func NewNotificationRouter(bus *EventBus, sink notify.Sink) *NotificationRouter {
	return &NotificationRouter{bus: bus, sink: sink}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil || r.sink == nil {
		return
	}

	r.bus.SubscribePersistFailed(func(p PersistFailedPayload) {
		r.notifyf(notify.LevelError, "could not %s %q: %v", p.Op, p.Collection, p.Err)
	})

	r.bus.SubscribeCollectionCleared(func(p CollectionClearedPayload) {
		r.notifyf(notify.LevelWarning, "removed %d entities from %q", p.Removed, p.Collection)
	})

	r.bus.SubscribeEntityDeleted(func(p EntityDeletedPayload) {
		r.notifyf(notify.LevelInfo, "entity %s deleted", p.EntityID)
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.sink.Notify(notify.Notification{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
