package eventbus_test

import (
	"errors"
	"testing"
	"time"

	"github.com/colonyops/almanac/internal/core/eventbus"
	"github.com/colonyops/almanac/internal/core/eventbus/testbus"
	"github.com/colonyops/almanac/internal/core/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForNotification(t *testing.T, rec *notify.Recorder) notify.Notification {
	t.Helper()
	require.Eventually(t, func() bool { return len(rec.All()) > 0 }, time.Second, 5*time.Millisecond)
	all := rec.All()
	return all[len(all)-1]
}

func TestNotificationRouter_PersistFailed(t *testing.T) {
	tb := testbus.New(t)
	rec := &notify.Recorder{}
	eventbus.NewNotificationRouter(tb.EventBus, rec).Register()

	tb.PublishPersistFailed(eventbus.PersistFailedPayload{
		Collection: "journal",
		Op:         "save",
		Err:        errors.New("disk full"),
	})
	n := waitForNotification(t, rec)

	assert.Equal(t, notify.LevelError, n.Level)
	assert.Contains(t, n.Message, "journal")
	assert.Contains(t, n.Message, "disk full")
}

func TestNotificationRouter_CollectionCleared(t *testing.T) {
	tb := testbus.New(t)
	rec := &notify.Recorder{}
	eventbus.NewNotificationRouter(tb.EventBus, rec).Register()

	tb.PublishCollectionCleared(eventbus.CollectionClearedPayload{Collection: "books", Removed: 12})
	n := waitForNotification(t, rec)

	assert.Equal(t, notify.LevelWarning, n.Level)
	assert.Contains(t, n.Message, "12")
}

func TestNotificationRouter_EntityAdded_doesNotNotify(t *testing.T) {
	tb := testbus.New(t)
	rec := &notify.Recorder{}
	eventbus.NewNotificationRouter(tb.EventBus, rec).Register()

	tb.PublishEntityAdded(eventbus.EntityAddedPayload{Collection: "journal"})
	tb.AssertPublished(t, eventbus.EventEntityAdded)

	assert.Empty(t, rec.All())
}

func TestNotificationRouter_NilSink(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus, nil).Register()

	tb.PublishPersistFailed(eventbus.PersistFailedPayload{Err: errors.New("x")})
	tb.AssertPublished(t, eventbus.EventPersistFailed)
}
