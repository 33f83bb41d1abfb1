package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/almanac/internal/core/entity"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load("", dataDir)
	require.NoError(t, err)

	assert.Equal(t, BackendJSON, cfg.Storage.Backend)
	assert.Equal(t, "journal", cfg.Collection.Name)
	assert.Equal(t, "multi", cfg.Collection.Mode)
	assert.Equal(t, entity.DefaultLimits(), cfg.Collection.Limits)
	assert.Equal(t, 30, cfg.Analytics.WindowDays)
	assert.Equal(t, "tokyo-night", cfg.UI.Theme)
	assert.Equal(t, dataDir, cfg.DataDir)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Collection, cfg.Collection)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: sqlite
collection:
  name: books
  mode: daily
  limits:
    title: 80
analytics:
  window_days: 7
  timezone: UTC
`)
	dataDir := t.TempDir()

	cfg, err := Load(path, dataDir)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "books", cfg.Collection.Name)
	assert.Equal(t, "daily", cfg.Collection.Mode)
	assert.Equal(t, 80, cfg.Collection.Limits.Title)
	assert.Equal(t, 2000, cfg.Collection.Limits.Notes, "unset limits keep their defaults")
	assert.Equal(t, 7, cfg.Analytics.WindowDays)
	assert.Equal(t, filepath.Join(dataDir, "almanac.db"), cfg.StorePath())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "collection:\n  name: books\n")
	t.Setenv("ALMANAC_COLLECTION", "recipes")
	t.Setenv("ALMANAC_STORAGE_BACKEND", "diskv")
	t.Setenv("ALMANAC_LIMIT_TITLE", "42")

	dataDir := t.TempDir()
	cfg, err := Load(path, dataDir)
	require.NoError(t, err)

	assert.Equal(t, "recipes", cfg.Collection.Name)
	assert.Equal(t, BackendDiskv, cfg.Storage.Backend)
	assert.Equal(t, 42, cfg.Collection.Limits.Title)
	assert.Equal(t, filepath.Join(dataDir, "diskv", "recipes"), cfg.StorePath())
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "storage: [\n"), t.TempDir())
		assert.ErrorContains(t, err, "parse config file")
	})

	t.Run("bad value", func(t *testing.T) {
		_, err := Load(writeConfig(t, "collection:\n  mode: hourly\n"), t.TempDir())
		assert.ErrorContains(t, err, "invalid config")
	})
}

func TestStorePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data"

	assert.Equal(t, filepath.Join("/data", "collections", "journal.json"), cfg.StorePath())

	cfg.Storage.Path = "/elsewhere/j.json"
	assert.Equal(t, "/elsewhere/j.json", cfg.StorePath())
}
