// Package jsonfile persists a collection as a single JSON document.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/colonyops/almanac/internal/core/collection"
	"github.com/colonyops/almanac/internal/core/entity"
)

// fileVersion is written to every document. Documents with a newer version
// are refused rather than silently truncated.
const fileVersion = 1

// Document is the root JSON structure stored on disk.
type Document struct {
	Version    int             `json:"version"`
	Collection string          `json:"collection,omitempty"`
	Entities   []entity.Entity `json:"entities"`
}

// EntityFile implements collection.Persister using a JSON file.
type EntityFile struct {
	path string
	name string
	mu   sync.Mutex
}

var _ collection.Persister = (*EntityFile)(nil)

// NewEntityFile creates a JSON file persister at the given path. The file is
// created on the first save.
func NewEntityFile(path, name string) *EntityFile {
	return &EntityFile{path: path, name: name}
}

// Path returns the file location.
func (f *EntityFile) Path() string {
	return f.path
}

// Load reads every entity. A missing or empty file is an empty collection.
func (f *EntityFile) Load(ctx context.Context) ([]entity.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, err
	}
	if doc.Entities == nil {
		return []entity.Entity{}, nil
	}
	return doc.Entities, nil
}

// Save writes the full set atomically.
func (f *EntityFile) Save(ctx context.Context, entities []entity.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if entities == nil {
		entities = []entity.Entity{}
	}

	return f.save(Document{
		Version:    fileVersion,
		Collection: f.name,
		Entities:   entities,
	})
}

// load reads the document from disk.
// Returns an empty Document if the file doesn't exist.
func (f *EntityFile) load() (Document, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, nil
		}
		return Document{}, err
	}

	if len(data) == 0 {
		return Document{}, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", f.path, err)
	}
	if doc.Version > fileVersion {
		return Document{}, fmt.Errorf("%s has version %d, newest supported is %d", f.path, doc.Version, fileVersion)
	}

	return doc, nil
}

// save writes the document to disk atomically.
func (f *EntityFile) save(doc Document) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.path)
}
