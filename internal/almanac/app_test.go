package almanac

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/almanac/internal/core/config"
	"github.com/colonyops/almanac/internal/core/entity"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = backend
	cfg.Analytics.Timezone = "UTC"
	cfg.DataDir = t.TempDir()
	return &cfg
}

func testOptions() Options {
	logger := zerolog.Nop()
	return Options{
		Clock:  clockwork.NewFakeClockAt(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)),
		Logger: &logger,
	}
}

func TestOpen_Backends(t *testing.T) {
	for _, backend := range config.Backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(t, backend)

			app, err := Open(ctx, cfg, testOptions())
			require.NoError(t, err)

			added, err := app.Store.Add(ctx, entity.Payload{Title: "Met a street musician", Category: "people"})
			require.NoError(t, err)
			_, err = app.Store.ToggleCompletion(ctx, added.ID)
			require.NoError(t, err)
			require.NoError(t, app.Close())

			reopened, err := Open(ctx, cfg, testOptions())
			require.NoError(t, err)
			defer func() { _ = reopened.Close() }()

			got, err := reopened.Store.Get(added.ID)
			require.NoError(t, err)
			assert.Equal(t, "Met a street musician", got.Title)
			assert.True(t, got.Completed())
			assert.True(t, added.CreatedAt.Equal(got.CreatedAt))
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := testConfig(t, "carrier-pigeon")
	_, err := Open(context.Background(), cfg, testOptions())
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestOpen_InvalidTimezone(t *testing.T) {
	cfg := testConfig(t, config.BackendJSON)
	cfg.Analytics.Timezone = "Mars/Olympus_Mons"
	_, err := Open(context.Background(), cfg, testOptions())
	assert.Error(t, err)
}

func TestOpen_DailyMode(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendJSON)
	cfg.Collection.Mode = "daily"

	app, err := Open(ctx, cfg, testOptions())
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	_, err = app.Store.Add(ctx, entity.Payload{Title: "first"})
	require.NoError(t, err)
	_, err = app.Store.Add(ctx, entity.Payload{Title: "second"})
	assert.ErrorIs(t, err, entity.ErrDuplicateDay)
}

type failingPersister struct{}

func (failingPersister) Load(context.Context) ([]entity.Entity, error) { return nil, nil }

func (failingPersister) Save(context.Context, []entity.Entity) error {
	return errors.New("disk full")
}

func TestOpen_PersistFailureNotice(t *testing.T) {
	ctx := context.Background()
	var notices bytes.Buffer

	opts := testOptions()
	opts.Persister = failingPersister{}
	opts.Notices = &notices

	app, err := Open(ctx, testConfig(t, config.BackendJSON), opts)
	require.NoError(t, err)

	e, err := app.Store.Add(ctx, entity.Payload{Title: "kept in memory"})
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
	assert.Equal(t, "kept in memory", e.Title)

	err = app.Close()
	assert.True(t, IsPersistenceError(err), "close retries the unsaved state")
	assert.Contains(t, notices.String(), "error: could not save")
	assert.Contains(t, notices.String(), "disk full")
}

func TestOpenDatabase_RecoversFromCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "almanac.db")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("not a database "), 512), 0o644))

	now := func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	database, err := openDatabase(path, now)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	_, err = os.Stat(path + ".corrupt.20261016-090000")
	assert.NoError(t, err)
}
