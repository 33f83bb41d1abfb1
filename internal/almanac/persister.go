package almanac

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/almanac/internal/core/collection"
	"github.com/colonyops/almanac/internal/core/config"
	"github.com/colonyops/almanac/internal/data/db"
	"github.com/colonyops/almanac/internal/data/diskv"
	"github.com/colonyops/almanac/internal/data/jsonfile"
	"github.com/colonyops/almanac/internal/data/stores"
)

// OpenPersister builds the persister selected by cfg.Storage.Backend. The
// returned closer releases backend resources and is never nil.
func OpenPersister(cfg *config.Config, now func() time.Time) (collection.Persister, func() error, error) {
	noop := func() error { return nil }
	path := cfg.StorePath()

	switch cfg.Storage.Backend {
	case config.BackendJSON:
		return jsonfile.NewEntityFile(path, cfg.Collection.Name), noop, nil
	case config.BackendDiskv:
		return diskv.NewEntityStore(path), noop, nil
	case config.BackendSQLite:
		database, err := openDatabase(path, now)
		if err != nil {
			return nil, noop, err
		}
		return stores.NewEntityStore(database, cfg.Collection.Name), database.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// openDatabase opens the SQLite file, moving a corrupt file aside and starting
// fresh when the first open fails with a corruption error.
func openDatabase(path string, now func() time.Time) (*db.DB, error) {
	database, err := db.Open(path)
	if err == nil {
		return database, nil
	}
	if !stores.IsCorruptionError(err) {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backup, rerr := stores.RecoverFromCorruption(path, now())
	if rerr != nil {
		return nil, fmt.Errorf("recover corrupt database: %w", rerr)
	}
	log.Warn().
		Str("path", path).
		Str("backup", backup).
		Msg("database was corrupt; moved aside and recreated")

	database, err = db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}
