// Package eventbus provides a typed publish/subscribe event bus for
// collection change notification within almanac.
package eventbus

import "github.com/colonyops/almanac/internal/core/entity"

// Events defines all event types and their payload structs.
var Events = map[string]any{
	// Keep list sorted A-Z
	"collection.cleared":        CollectionClearedPayload{},
	"entity.added":              EntityAddedPayload{},
	"entity.completion-toggled": EntityCompletionToggledPayload{},
	"entity.deleted":            EntityDeletedPayload{},
	"entity.updated":            EntityUpdatedPayload{},
	"persist.failed":            PersistFailedPayload{},
}

// EntityAddedPayload is emitted when an entity is added to a collection.
type EntityAddedPayload struct {
	Collection string
	Entity     entity.Entity
	Version    uint64
}

// EntityUpdatedPayload is emitted when an entity's content or favorite flag
// changes.
type EntityUpdatedPayload struct {
	Collection string
	Entity     entity.Entity
	Previous   entity.Entity
	Version    uint64
}

// EntityDeletedPayload is emitted when an entity is removed.
type EntityDeletedPayload struct {
	Collection string
	EntityID   string
	Version    uint64
}

// EntityCompletionToggledPayload is emitted when an entity is marked complete
// or incomplete.
type EntityCompletionToggledPayload struct {
	Collection string
	Entity     entity.Entity
	Version    uint64
}

// CollectionClearedPayload is emitted when every entity is deleted at once.
type CollectionClearedPayload struct {
	Collection string
	Removed    int
	Version    uint64
}

// PersistFailedPayload is emitted when a save or load fails. The in-memory
// state is left as is.
type PersistFailedPayload struct {
	Collection string
	Op         string
	Err        error
}
