// Package entity defines the timestamped record owned by a collection store,
// the caller payload used to create and update it, and the error taxonomy
// shared by every component that touches entities.
package entity

import "time"

// Entity is a single stored record: a diary entry, meeting, recipe, list item
// or book. Entities are replaced as a whole on mutation; callers only ever see
// copies.
type Entity struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes,omitempty"`
	Location    string     `json:"location,omitempty"`
	Category    string     `json:"category,omitempty"`
	Favorite    bool       `json:"favorite,omitempty"`
	IsEdited    bool       `json:"is_edited,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Completed reports whether the entity is currently marked complete.
func (e Entity) Completed() bool {
	return e.CompletedAt != nil
}

// HasCategory reports whether a category tag is set.
func (e Entity) HasCategory() bool {
	return e.Category != ""
}

// Clone returns a deep copy so the nullable timestamps are not shared.
func (e Entity) Clone() Entity {
	out := e
	if e.UpdatedAt != nil {
		t := *e.UpdatedAt
		out.UpdatedAt = &t
	}
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// CloneAll deep copies a slice of entities. A nil input yields an empty,
// non-nil slice.
func CloneAll(entities []Entity) []Entity {
	out := make([]Entity, len(entities))
	for i, e := range entities {
		out[i] = e.Clone()
	}
	return out
}

// Payload is the caller-supplied content for Add and Update.
//
// Date overrides the creation timestamp on Add (back-dating a diary entry).
// It is ignored by Update because CreatedAt is immutable.
type Payload struct {
	Title    string
	Notes    string
	Location string
	Category string
	Favorite bool
	Date     *time.Time
}

// PayloadOf returns the payload that reproduces the entity's current content.
func PayloadOf(e Entity) Payload {
	return Payload{
		Title:    e.Title,
		Notes:    e.Notes,
		Location: e.Location,
		Category: e.Category,
		Favorite: e.Favorite,
	}
}
