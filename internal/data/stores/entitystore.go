package stores

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/colonyops/almanac/internal/core/collection"
	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/internal/data/db"
)

const (
	entitiesTable = "entities"
	insertBatch   = 500
	busyRetries   = 3
)

var entityColumns = []string{
	"id", "title", "notes", "location", "category", "favorite", "is_edited",
	"created_at", "updated_at", "completed_at",
}

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// EntityStore implements collection.Persister using SQLite. Several
// collections share one database, keyed by collection name; insertion order
// is kept in the position column.
type EntityStore struct {
	db         *db.DB
	collection string
}

var _ collection.Persister = (*EntityStore)(nil)

// NewEntityStore creates a SQLite-backed persister for one collection.
func NewEntityStore(db *db.DB, collection string) *EntityStore {
	return &EntityStore{db: db, collection: collection}
}

// Load returns the collection's entities in insertion order.
func (s *EntityStore) Load(ctx context.Context) ([]entity.Entity, error) {
	query, args, err := builder.
		Select(entityColumns...).
		From(entitiesTable).
		Where(sq.Eq{"collection": s.collection}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entities := make([]entity.Entity, 0)
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to convert entity: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	return entities, nil
}

// Save replaces the collection's rows with entities in one transaction.
// SQLITE_BUSY is retried a few times before giving up.
func (s *EntityStore) Save(ctx context.Context, entities []entity.Entity) error {
	return retry(ctx, busyRetries, IsBusyError, busyBackoff, func() error {
		return s.db.WithTx(ctx, func(tx *sql.Tx) error {
			return s.replaceAll(ctx, tx, entities)
		})
	})
}

// retry runs fn up to attempts times while it fails with a retryable error.
// It waits backoff(attempt) between attempts and never after the last one.
// Cancelling ctx stops the wait.
func retry(ctx context.Context, attempts int, retryable func(error) bool, backoff func(int) time.Duration, fn func() error) error {
	var err error
	for attempt := range attempts {
		err = fn()
		if err == nil || !retryable(err) || attempt == attempts-1 {
			return err
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry: %w", errors.Join(ctx.Err(), err))
		case <-time.After(backoff(attempt)):
		}
	}
	return err
}

func busyBackoff(attempt int) time.Duration {
	return time.Duration(attempt+1) * 50 * time.Millisecond
}

// Count returns the number of rows stored for the collection.
func (s *EntityStore) Count(ctx context.Context) (int, error) {
	query, args, err := builder.
		Select("COUNT(*)").
		From(entitiesTable).
		Where(sq.Eq{"collection": s.collection}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int
	if err := s.db.Conn().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entities: %w", err)
	}
	return n, nil
}

func (s *EntityStore) replaceAll(ctx context.Context, tx *sql.Tx, entities []entity.Entity) error {
	query, args, err := builder.
		Delete(entitiesTable).
		Where(sq.Eq{"collection": s.collection}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear entities: %w", err)
	}

	for start := 0; start < len(entities); start += insertBatch {
		end := min(start+insertBatch, len(entities))

		insert := builder.
			Insert(entitiesTable).
			Columns(append([]string{"collection", "position"}, entityColumns...)...)
		for i, e := range entities[start:end] {
			insert = insert.Values(
				s.collection,
				start+i,
				e.ID,
				e.Title,
				e.Notes,
				e.Location,
				e.Category,
				e.Favorite,
				e.IsEdited,
				formatTime(e.CreatedAt),
				formatNullTime(e.UpdatedAt),
				formatNullTime(e.CompletedAt),
			)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert entities: %w", err)
		}
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner) (entity.Entity, error) {
	var (
		e                      entity.Entity
		createdAt              string
		updatedAt, completedAt sql.NullString
	)

	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Notes,
		&e.Location,
		&e.Category,
		&e.Favorite,
		&e.IsEdited,
		&createdAt,
		&updatedAt,
		&completedAt,
	)
	if err != nil {
		return entity.Entity{}, err
	}

	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return entity.Entity{}, fmt.Errorf("parse created_at: %w", err)
	}
	if e.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return entity.Entity{}, fmt.Errorf("parse updated_at: %w", err)
	}
	if e.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return entity.Entity{}, fmt.Errorf("parse completed_at: %w", err)
	}

	return e, nil
}

// Timestamps are stored as RFC 3339 text so the UTC offset survives a round
// trip.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
