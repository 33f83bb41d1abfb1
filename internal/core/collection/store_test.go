package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/internal/core/eventbus"
	"github.com/colonyops/almanac/internal/core/eventbus/testbus"
)

var start = time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)

// memPersister records saves and can be told to fail.
type memPersister struct {
	mu      sync.Mutex
	initial []entity.Entity
	loadErr error
	saveErr error
	loads   int
	saves   [][]entity.Entity
}

func (m *memPersister) Load(context.Context) ([]entity.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return entity.CloneAll(m.initial), nil
}

func (m *memPersister) Save(_ context.Context, entities []entity.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves = append(m.saves, entities)
	return nil
}

func (m *memPersister) failSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *memPersister) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *memPersister) lastSave() []entity.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saves) == 0 {
		return nil
	}
	return m.saves[len(m.saves)-1]
}

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("e%03d", n)
	}
}

func newTestStore(t *testing.T, p *memPersister, opts ...Option) (*Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(start)
	base := []Option{
		WithClock(clock),
		WithLogger(zerolog.Nop()),
		WithLocation(time.UTC),
		WithIDGenerator(seqIDs()),
	}
	s, err := New(context.Background(), p, append(base, opts...)...)
	require.NoError(t, err)
	return s, clock
}

func TestNew(t *testing.T) {
	t.Run("loads once", func(t *testing.T) {
		p := &memPersister{initial: []entity.Entity{{ID: "a", Title: "one", CreatedAt: start}}}
		s, _ := newTestStore(t, p)

		assert.Equal(t, 1, p.loads)
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, uint64(0), s.Version())
	})

	t.Run("load failure", func(t *testing.T) {
		p := &memPersister{loadErr: errors.New("permission denied")}
		_, err := New(context.Background(), p, WithLogger(zerolog.Nop()))

		require.ErrorIs(t, err, entity.ErrPersistence)
		var perr *entity.PersistenceError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "load", perr.Op)
	})

	t.Run("duplicate ids keep first", func(t *testing.T) {
		p := &memPersister{initial: []entity.Entity{
			{ID: "a", Title: "first", CreatedAt: start},
			{ID: "a", Title: "second", CreatedAt: start},
			{ID: "", Title: "no id", CreatedAt: start},
		}}
		s, _ := newTestStore(t, p)

		snap := s.Snapshot()
		require.Len(t, snap, 2)
		assert.Equal(t, "first", snap[0].Title)
		assert.NotEmpty(t, snap[1].ID)
		assert.True(t, s.Dirty())
	})
}

func TestAdd(t *testing.T) {
	p := &memPersister{}
	s, _ := newTestStore(t, p)
	ctx := context.Background()

	e, err := s.Add(ctx, entity.Payload{
		Title:    "  Met a street musician  ",
		Notes:    "\tplayed the cello\n",
		Location: " Porto ",
	})
	require.NoError(t, err)

	assert.Equal(t, "e001", e.ID)
	assert.Equal(t, "Met a street musician", e.Title)
	assert.Equal(t, "played the cello", e.Notes)
	assert.Equal(t, "Porto", e.Location)
	assert.Equal(t, start, e.CreatedAt)
	assert.Nil(t, e.UpdatedAt)
	assert.Nil(t, e.CompletedAt)
	assert.False(t, e.IsEdited)

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, e, snap[0])
	assert.Equal(t, uint64(1), s.Version())
	assert.Equal(t, snap, p.lastSave())
}

func TestAdd_InsertionOrder(t *testing.T) {
	s, clock := newTestStore(t, &memPersister{})
	ctx := context.Background()

	for _, title := range []string{"c", "a", "b"} {
		_, err := s.Add(ctx, entity.Payload{Title: title})
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	var titles []string
	for _, e := range s.Snapshot() {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"c", "a", "b"}, titles)
}

func TestAdd_Validation(t *testing.T) {
	tests := []struct {
		name    string
		payload entity.Payload
		field   string
	}{
		{"empty title", entity.Payload{Title: ""}, "title"},
		{"whitespace title", entity.Payload{Title: " \t\n "}, "title"},
		{"title too long", entity.Payload{Title: strings.Repeat("x", 201)}, "title"},
		{"notes too long", entity.Payload{Title: "ok", Notes: strings.Repeat("n", 2001)}, "notes"},
		{"category too long", entity.Payload{Title: "ok", Category: strings.Repeat("c", 51)}, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &memPersister{}
			s, _ := newTestStore(t, p)

			for range 2 {
				_, err := s.Add(context.Background(), tt.payload)
				require.ErrorIs(t, err, entity.ErrValidation)

				var verr *entity.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.True(t, verr.HasField(tt.field))
			}

			assert.Empty(t, s.Snapshot())
			assert.Equal(t, uint64(0), s.Version())
			assert.Equal(t, 0, p.saveCount())
		})
	}
}

func TestAdd_CustomLimits(t *testing.T) {
	s, _ := newTestStore(t, &memPersister{}, WithLimits(entity.Limits{Title: 5}))

	_, err := s.Add(context.Background(), entity.Payload{Title: "toolong"})
	require.ErrorIs(t, err, entity.ErrValidation)

	_, err = s.Add(context.Background(), entity.Payload{Title: "short", Notes: strings.Repeat("n", 5000)})
	require.NoError(t, err)
}

func TestAdd_BackDated(t *testing.T) {
	s, _ := newTestStore(t, &memPersister{})
	d := start.AddDate(0, 0, -3)

	e, err := s.Add(context.Background(), entity.Payload{Title: "late entry", Date: &d})
	require.NoError(t, err)
	assert.Equal(t, d, e.CreatedAt)
}

func TestAdd_DailyMode(t *testing.T) {
	s, _ := newTestStore(t, &memPersister{}, WithMode(ModeDaily))
	ctx := context.Background()

	_, err := s.Add(ctx, entity.Payload{Title: "morning"})
	require.NoError(t, err)

	later := start.Add(10 * time.Hour)
	_, err = s.Add(ctx, entity.Payload{Title: "evening", Date: &later})
	require.ErrorIs(t, err, entity.ErrValidation)
	require.ErrorIs(t, err, entity.ErrDuplicateDay)

	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasField("date"))
	assert.Equal(t, 1, s.Len())

	tomorrow := start.AddDate(0, 0, 1)
	_, err = s.Add(ctx, entity.Payload{Title: "next day", Date: &tomorrow})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestAdd_DailyModeUsesStoreLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	s, _ := newTestStore(t, &memPersister{}, WithMode(ModeDaily), WithLocation(tokyo))
	ctx := context.Background()

	// 14:00 and 16:00 UTC fall on different days in Tokyo.
	a := time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC)
	b := time.Date(2026, 10, 16, 16, 0, 0, 0, time.UTC)

	_, err := s.Add(ctx, entity.Payload{Title: "a", Date: &a})
	require.NoError(t, err)
	_, err = s.Add(ctx, entity.Payload{Title: "b", Date: &b})
	require.NoError(t, err)
}

func TestTimestamps_UseStoreLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 20:00 UTC on the 14th is already the 15th in Tokyo.
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC))
	s, _ := newTestStore(t, &memPersister{}, WithLocation(tokyo), WithClock(clock))
	ctx := context.Background()

	e, err := s.Add(ctx, entity.Payload{Title: "late night"})
	require.NoError(t, err)
	assert.Equal(t, tokyo, e.CreatedAt.Location())
	assert.Equal(t, calendar.NewDate(2026, 10, 15), calendar.DateOf(e.CreatedAt))
	assert.Equal(t, calendar.DayOf(e, tokyo), calendar.DateOf(e.CreatedAt))

	clock.Advance(time.Hour)
	e, err = s.ToggleCompletion(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, tokyo, e.CompletedAt.Location())
	assert.Equal(t, tokyo, e.UpdatedAt.Location())

	d := time.Date(2026, 10, 10, 23, 0, 0, 0, time.UTC)
	back, err := s.Add(ctx, entity.Payload{Title: "back-dated", Date: &d})
	require.NoError(t, err)
	assert.True(t, d.Equal(back.CreatedAt))
	assert.Equal(t, tokyo, back.CreatedAt.Location())
}

func TestNew_DailyModeWarnsOnSharedDay(t *testing.T) {
	var logs strings.Builder
	p := &memPersister{initial: []entity.Entity{
		{ID: "a", Title: "morning", CreatedAt: start},
		{ID: "b", Title: "evening", CreatedAt: start.Add(8 * time.Hour)},
		{ID: "c", Title: "next day", CreatedAt: start.Add(24 * time.Hour)},
	}}

	s, _ := newTestStore(t, p, WithMode(ModeDaily), WithLogger(zerolog.New(&logs)))
	assert.Equal(t, 3, s.Len(), "loaded entities are kept")
	assert.Equal(t, 1, strings.Count(logs.String(), "more than one entity on a day"))
	assert.Contains(t, logs.String(), `"id":"b"`)
	assert.Contains(t, logs.String(), `"first_id":"a"`)

	today, ok := calendar.TodayEntity(s.Snapshot(), start)
	require.True(t, ok)
	assert.Equal(t, "a", today.ID)
}

func TestUpdate(t *testing.T) {
	s, clock := newTestStore(t, &memPersister{})
	ctx := context.Background()

	orig, err := s.Add(ctx, entity.Payload{Title: "draft", Category: "work"})
	require.NoError(t, err)
	_, err = s.ToggleCompletion(ctx, orig.ID)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	moved := start.AddDate(-1, 0, 0)
	got, err := s.Update(ctx, orig.ID, entity.Payload{Title: " final ", Favorite: true, Date: &moved})
	require.NoError(t, err)

	assert.Equal(t, orig.ID, got.ID)
	assert.Equal(t, orig.CreatedAt, got.CreatedAt, "created time is immutable")
	assert.True(t, got.IsEdited)
	assert.Equal(t, "final", got.Title)
	assert.Empty(t, got.Category)
	assert.True(t, got.Favorite)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, start, *got.CompletedAt)
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, start.Add(time.Hour), *got.UpdatedAt)
}

func TestUpdate_Errors(t *testing.T) {
	p := &memPersister{}
	s, _ := newTestStore(t, p)
	ctx := context.Background()

	_, err := s.Update(ctx, "missing", entity.Payload{Title: "x"})
	require.ErrorIs(t, err, entity.ErrNotFound)

	e, err := s.Add(ctx, entity.Payload{Title: "keep"})
	require.NoError(t, err)

	_, err = s.Update(ctx, e.ID, entity.Payload{Title: "   "})
	require.ErrorIs(t, err, entity.ErrValidation)

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", got.Title)
	assert.False(t, got.IsEdited)
	assert.Equal(t, 1, p.saveCount())
}

func TestUpdatedAt_NeverPrecedesCreated(t *testing.T) {
	s, _ := newTestStore(t, &memPersister{})
	ctx := context.Background()

	future := start.Add(48 * time.Hour)
	e, err := s.Add(ctx, entity.Payload{Title: "scheduled", Date: &future})
	require.NoError(t, err)

	got, err := s.ToggleCompletion(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, future, *got.CompletedAt)
	assert.Equal(t, future, *got.UpdatedAt)
}

func TestDelete(t *testing.T) {
	p := &memPersister{}
	s, _ := newTestStore(t, p)
	ctx := context.Background()

	a, _ := s.Add(ctx, entity.Payload{Title: "a"})
	b, _ := s.Add(ctx, entity.Payload{Title: "b"})
	c, _ := s.Add(ctx, entity.Payload{Title: "c"})

	require.NoError(t, s.Delete(ctx, b.ID))

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, a.ID, snap[0].ID)
	assert.Equal(t, c.ID, snap[1].ID)

	err := s.Delete(ctx, b.ID)
	require.ErrorIs(t, err, entity.ErrNotFound)

	var nf *entity.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, b.ID, nf.ID)
	assert.Equal(t, 4, p.saveCount())
}

func TestDeleteAll(t *testing.T) {
	p := &memPersister{}
	s, _ := newTestStore(t, p)
	ctx := context.Background()

	for i := range 3 {
		_, err := s.Add(ctx, entity.Payload{Title: fmt.Sprintf("item %d", i)})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteAll(ctx))
	assert.Empty(t, s.Snapshot())
	assert.NotNil(t, p.lastSave())
	assert.Empty(t, p.lastSave())
}

func TestToggleCompletion_RoundTrip(t *testing.T) {
	s, clock := newTestStore(t, &memPersister{})
	ctx := context.Background()

	e, err := s.Add(ctx, entity.Payload{Title: "read Dune"})
	require.NoError(t, err)
	require.Nil(t, e.CompletedAt)

	clock.Advance(2 * time.Hour)
	on, err := s.ToggleCompletion(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, on.CompletedAt)
	assert.Equal(t, start.Add(2*time.Hour), *on.CompletedAt)
	assert.True(t, on.Completed())
	assert.False(t, on.IsEdited)

	off, err := s.ToggleCompletion(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, off.CompletedAt)
	assert.False(t, off.Completed())

	_, err = s.ToggleCompletion(ctx, "missing")
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestToggleFavorite(t *testing.T) {
	s, _ := newTestStore(t, &memPersister{})
	ctx := context.Background()

	e, _ := s.Add(ctx, entity.Payload{Title: "pasta"})

	got, err := s.ToggleFavorite(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorite)
	assert.False(t, got.IsEdited)

	got, err = s.ToggleFavorite(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, got.Favorite)

	_, err = s.ToggleFavorite(ctx, "missing")
	require.ErrorIs(t, err, entity.ErrNotFound)
}

func TestPersistenceFailure_NoRollback(t *testing.T) {
	p := &memPersister{}
	tb := testbus.New(t)
	s, _ := newTestStore(t, p, WithBus(tb.EventBus), WithName("journal"))
	ctx := context.Background()

	p.failSaves(errors.New("disk full"))

	e, err := s.Add(ctx, entity.Payload{Title: "unsaved"})
	require.ErrorIs(t, err, entity.ErrPersistence)

	var perr *entity.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "save", perr.Op)
	assert.EqualError(t, perr.Err, "disk full")

	assert.NotEmpty(t, e.ID, "entity is returned alongside the error")
	require.Len(t, s.Snapshot(), 1, "mutation is visible despite the failed save")
	assert.Equal(t, uint64(1), s.Version())
	assert.True(t, s.Dirty())
	tb.AssertPublished(t, eventbus.EventPersistFailed)

	p.failSaves(nil)
	require.NoError(t, s.Retry(ctx))
	assert.False(t, s.Dirty())
	require.Len(t, p.lastSave(), 1)
	assert.Equal(t, e.ID, p.lastSave()[0].ID)

	saves := p.saveCount()
	require.NoError(t, s.Retry(ctx))
	assert.Equal(t, saves, p.saveCount(), "retry without pending changes is a no-op")
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s, _ := newTestStore(t, &memPersister{})
	ctx := context.Background()

	e, _ := s.Add(ctx, entity.Payload{Title: "original"})
	_, err := s.ToggleCompletion(ctx, e.ID)
	require.NoError(t, err)

	snap := s.Snapshot()
	snap[0].Title = "mutated"
	*snap[0].CompletedAt = time.Time{}

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Title)
	assert.Equal(t, start, *got.CompletedAt)
}

func TestEvents(t *testing.T) {
	tb := testbus.New(t)
	s, _ := newTestStore(t, &memPersister{}, WithBus(tb.EventBus), WithName("meetings"))
	ctx := context.Background()

	e, _ := s.Add(ctx, entity.Payload{Title: "standup"})
	_, _ = s.Update(ctx, e.ID, entity.Payload{Title: "retro"})
	_, _ = s.ToggleCompletion(ctx, e.ID)
	_ = s.Delete(ctx, e.ID)
	_ = s.DeleteAll(ctx)

	tb.AssertPublished(t, eventbus.EventEntityAdded)
	tb.AssertPublished(t, eventbus.EventEntityUpdated)
	tb.AssertPublished(t, eventbus.EventEntityCompletionToggled)
	tb.AssertPublished(t, eventbus.EventEntityDeleted)
	tb.AssertPublished(t, eventbus.EventCollectionCleared)

	var versions []uint64
	for _, rec := range tb.Events() {
		switch p := rec.Payload.(type) {
		case eventbus.EntityAddedPayload:
			assert.Equal(t, "meetings", p.Collection)
			versions = append(versions, p.Version)
		case eventbus.EntityUpdatedPayload:
			assert.Equal(t, "standup", p.Previous.Title)
			versions = append(versions, p.Version)
		case eventbus.EntityCompletionToggledPayload:
			versions = append(versions, p.Version)
		case eventbus.EntityDeletedPayload:
			versions = append(versions, p.Version)
		case eventbus.CollectionClearedPayload:
			versions = append(versions, p.Version)
		}
	}
	assert.ElementsMatch(t, []uint64{1, 2, 3, 4, 5}, versions)
	assert.Equal(t, uint64(5), s.Version())
}

func TestConcurrentAdds(t *testing.T) {
	s, _ := newTestStore(t, &memPersister{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Add(ctx, entity.Payload{Title: fmt.Sprintf("entry %d", i)})
			assert.NoError(t, err)
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	require.Len(t, snap, 50)

	seen := map[string]bool{}
	for _, e := range snap {
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
	assert.Equal(t, uint64(50), s.Version())
}

func TestScenario_EntityOnDay(t *testing.T) {
	s, _ := newTestStore(t, &memPersister{})
	d := time.Date(2026, time.March, 31, 20, 0, 0, 0, time.UTC)

	_, err := s.Add(context.Background(), entity.Payload{Title: "Met a street musician", Date: &d})
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap, 1)

	onDay := calendar.EntitiesOnDay(snap, d)
	require.Len(t, onDay, 1)
	assert.Equal(t, "Met a street musician", onDay[0].Title)

	assert.Empty(t, calendar.EntitiesOnDay(snap, d.AddDate(0, 0, 1)))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeMulti, m)

	m, err = ParseMode("Daily")
	require.NoError(t, err)
	assert.Equal(t, ModeDaily, m)

	_, err = ParseMode("weekly")
	assert.Error(t, err)
}
