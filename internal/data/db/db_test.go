package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "almanac.db")

	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, path, db.Path())

	var name string
	err = db.Conn().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'entities'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "entities", name)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "almanac.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestWithTx_RollsBack(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "almanac.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	boom := errors.New("boom")

	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO entities (collection, id, position, title, created_at) VALUES ('c', 'a', 0, 't', 'x')`)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM entities`).Scan(&n))
	assert.Zero(t, n)
}
