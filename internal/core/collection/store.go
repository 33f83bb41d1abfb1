// Package collection owns the canonical entity set of one collection. The
// Store validates every mutation, persists the full set after each change and
// hands out deep copies only.
package collection

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/internal/core/eventbus"
	"github.com/colonyops/almanac/internal/core/logging"
)

// Persister loads and saves the full entity set. Save followed by Load must
// round-trip every field, timestamps included.
type Persister interface {
	Load(ctx context.Context) ([]entity.Entity, error)
	Save(ctx context.Context, entities []entity.Entity) error
}

// Store is the single owner of a collection. Mutations are serialized and
// never interleave; reads copy under a shared lock.
//
// When a save fails the in-memory change is kept, the mutated entity is
// returned together with a *entity.PersistenceError, and Retry can be used to
// write the current state again.
type Store struct {
	persister Persister
	clock     clockwork.Clock
	log       zerolog.Logger
	bus       *eventbus.EventBus
	limits    entity.Limits
	mode      Mode
	loc       *time.Location
	newID     func() string
	name      string

	mu       sync.RWMutex
	entities []entity.Entity
	version  uint64
	dirty    bool
}

// New builds a store and loads its contents once through p.
func New(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister: p,
		clock:     clockwork.NewRealClock(),
		log:       logging.Component("store"),
		limits:    entity.DefaultLimits(),
		mode:      ModeMulti,
		loc:       time.Local,
		newID:     newUUID,
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		s.publishPersistFailed("load", err)
		return nil, &entity.PersistenceError{Op: "load", Err: err}
	}

	s.entities = s.sanitize(ctx, loaded)
	s.log.Debug().Ctx(ctx).
		Int("count", len(s.entities)).
		Str("mode", string(s.mode)).
		Msg("collection loaded")

	return s, nil
}

// sanitize drops duplicate ids, keeping the first occurrence, and assigns ids
// to entities that lack one. In daily mode, days holding more than one entity
// are kept but logged.
func (s *Store) sanitize(ctx context.Context, loaded []entity.Entity) []entity.Entity {
	seen := make(map[string]struct{}, len(loaded))
	out := make([]entity.Entity, 0, len(loaded))
	days := make(map[calendar.Date]string)

	for _, e := range loaded {
		if e.ID == "" {
			e.ID = s.uniqueID(seen)
			s.dirty = true
			s.log.Warn().Ctx(ctx).Str("id", e.ID).Msg("assigned id to entity without one")
		}
		if _, dup := seen[e.ID]; dup {
			s.dirty = true
			s.log.Warn().Ctx(ctx).Str("id", e.ID).Msg("dropping entity with duplicate id")
			continue
		}
		seen[e.ID] = struct{}{}

		if s.mode == ModeDaily {
			day := calendar.DayOf(e, s.loc)
			if first, dup := days[day]; dup {
				s.log.Warn().Ctx(ctx).
					Str("day", day.String()).
					Str("id", e.ID).
					Str("first_id", first).
					Msg("daily collection has more than one entity on a day")
			} else {
				days[day] = e.ID
			}
		}

		out = append(out, e.Clone())
	}

	return out
}

// Add validates p and appends a new entity. p.Date back-dates the creation
// timestamp; otherwise the clock's now is used.
func (s *Store) Add(ctx context.Context, p entity.Payload) (entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := entity.Normalize(p, s.limits)
	if err != nil {
		return entity.Entity{}, err
	}

	created := s.Now()
	if p.Date != nil {
		created = p.Date.In(s.loc)
	}

	if s.mode == ModeDaily {
		day := calendar.DateIn(created, s.loc)
		for _, e := range s.entities {
			if calendar.DayOf(e, s.loc) == day {
				return entity.Entity{}, entity.NewFieldError("date", fmt.Errorf("%s: %w", day, entity.ErrDuplicateDay))
			}
		}
	}

	e := entity.Entity{
		ID:        s.uniqueID(s.ids()),
		Title:     p.Title,
		Notes:     p.Notes,
		Location:  p.Location,
		Category:  p.Category,
		Favorite:  p.Favorite,
		CreatedAt: created,
	}
	s.entities = append(s.entities, e)
	s.version++

	s.log.Debug().Ctx(ctx).Str("id", e.ID).Msg("entity added")
	if s.bus != nil {
		s.bus.PublishEntityAdded(eventbus.EntityAddedPayload{
			Collection: s.name,
			Entity:     e.Clone(),
			Version:    s.version,
		})
	}

	return e.Clone(), s.persist(ctx)
}

// Update replaces the content of an existing entity. ID, CreatedAt and
// CompletedAt are preserved and the entity is marked edited.
func (s *Store) Update(ctx context.Context, id string, p entity.Payload) (entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return entity.Entity{}, &entity.NotFoundError{ID: id}
	}

	p, err := entity.Normalize(p, s.limits)
	if err != nil {
		return entity.Entity{}, err
	}

	prev := s.entities[i].Clone()
	e := s.entities[i]
	e.Title = p.Title
	e.Notes = p.Notes
	e.Location = p.Location
	e.Category = p.Category
	e.Favorite = p.Favorite
	e.IsEdited = true
	s.touch(&e)

	s.entities[i] = e
	s.version++

	s.log.Debug().Ctx(ctx).Str("id", id).Msg("entity updated")
	if s.bus != nil {
		s.bus.PublishEntityUpdated(eventbus.EntityUpdatedPayload{
			Collection: s.name,
			Entity:     e.Clone(),
			Previous:   prev,
			Version:    s.version,
		})
	}

	return e.Clone(), s.persist(ctx)
}

// Delete removes an entity by id. Deleting an id twice reports NotFound the
// second time.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return &entity.NotFoundError{ID: id}
	}

	s.entities = slices.Delete(s.entities, i, i+1)
	s.version++

	s.log.Debug().Ctx(ctx).Str("id", id).Msg("entity deleted")
	if s.bus != nil {
		s.bus.PublishEntityDeleted(eventbus.EntityDeletedPayload{
			Collection: s.name,
			EntityID:   id,
			Version:    s.version,
		})
	}

	return s.persist(ctx)
}

// DeleteAll removes every entity and persists the empty set. It does not ask
// for confirmation.
func (s *Store) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.entities)
	s.entities = []entity.Entity{}
	s.version++

	s.log.Info().Ctx(ctx).Int("removed", removed).Msg("collection cleared")
	if s.bus != nil {
		s.bus.PublishCollectionCleared(eventbus.CollectionClearedPayload{
			Collection: s.name,
			Removed:    removed,
			Version:    s.version,
		})
	}

	return s.persist(ctx)
}

// ToggleCompletion marks an open entity complete or clears the completion of
// a completed one. CompletedAt never precedes CreatedAt.
func (s *Store) ToggleCompletion(ctx context.Context, id string) (entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return entity.Entity{}, &entity.NotFoundError{ID: id}
	}

	e := s.entities[i]
	if e.CompletedAt == nil {
		done := s.Now()
		if done.Before(e.CreatedAt) {
			done = e.CreatedAt
		}
		e.CompletedAt = &done
	} else {
		e.CompletedAt = nil
	}
	s.touch(&e)

	s.entities[i] = e
	s.version++

	s.log.Debug().Ctx(ctx).Str("id", id).Bool("completed", e.Completed()).Msg("completion toggled")
	if s.bus != nil {
		s.bus.PublishEntityCompletionToggled(eventbus.EntityCompletionToggledPayload{
			Collection: s.name,
			Entity:     e.Clone(),
			Version:    s.version,
		})
	}

	return e.Clone(), s.persist(ctx)
}

// ToggleFavorite flips the favorite flag. It does not mark the entity edited.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return entity.Entity{}, &entity.NotFoundError{ID: id}
	}

	prev := s.entities[i].Clone()
	e := s.entities[i]
	e.Favorite = !e.Favorite
	s.touch(&e)

	s.entities[i] = e
	s.version++

	s.log.Debug().Ctx(ctx).Str("id", id).Bool("favorite", e.Favorite).Msg("favorite toggled")
	if s.bus != nil {
		s.bus.PublishEntityUpdated(eventbus.EntityUpdatedPayload{
			Collection: s.name,
			Entity:     e.Clone(),
			Previous:   prev,
			Version:    s.version,
		})
	}

	return e.Clone(), s.persist(ctx)
}

// Get returns a copy of the entity with the given id.
func (s *Store) Get(id string) (entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return entity.Entity{}, &entity.NotFoundError{ID: id}
	}
	return s.entities[i].Clone(), nil
}

// Snapshot returns a deep copy of every entity in insertion order.
func (s *Store) Snapshot() []entity.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entity.CloneAll(s.entities)
}

// Len returns the number of entities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Version increases by one after every successful in-memory mutation. Callers
// can poll it to detect changes without subscribing to the bus.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Dirty reports whether the last save failed and the persisted data is
// behind the in-memory state.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Retry saves the current state if an earlier save failed. It is a no-op
// when nothing is pending.
func (s *Store) Retry(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	return s.persist(ctx)
}

// Mode returns the collection mode.
func (s *Store) Mode() Mode {
	return s.mode
}

// Location returns the zone used for calendar days.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Now returns the store clock's current time in the store location.
func (s *Store) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

// persist writes the full set. Callers must hold the write lock.
func (s *Store) persist(ctx context.Context) error {
	if err := s.persister.Save(ctx, entity.CloneAll(s.entities)); err != nil {
		s.dirty = true
		s.log.Error().Ctx(ctx).Err(err).Uint64("version", s.version).Msg("failed to save entities")
		s.publishPersistFailed("save", err)
		return &entity.PersistenceError{Op: "save", Err: err}
	}

	s.dirty = false
	return nil
}

func (s *Store) publishPersistFailed(op string, err error) {
	if s.bus == nil {
		return
	}
	s.bus.PublishPersistFailed(eventbus.PersistFailedPayload{
		Collection: s.name,
		Op:         op,
		Err:        err,
	})
}

// touch refreshes UpdatedAt without letting it move backwards or precede
// CreatedAt.
func (s *Store) touch(e *entity.Entity) {
	now := s.Now()
	if now.Before(e.CreatedAt) {
		now = e.CreatedAt
	}
	if e.UpdatedAt != nil && now.Before(*e.UpdatedAt) {
		now = *e.UpdatedAt
	}
	e.UpdatedAt = &now
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.entities, func(e entity.Entity) bool {
		return e.ID == id
	})
}

func (s *Store) ids() map[string]struct{} {
	out := make(map[string]struct{}, len(s.entities))
	for _, e := range s.entities {
		out[e.ID] = struct{}{}
	}
	return out
}

func (s *Store) uniqueID(taken map[string]struct{}) string {
	for {
		id := s.newID()
		if _, ok := taken[id]; !ok && id != "" {
			return id
		}
	}
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
