// Package diskv persists a collection as one file per entity using diskv.
package diskv

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"github.com/colonyops/almanac/internal/core/collection"
	"github.com/colonyops/almanac/internal/core/entity"
)

const (
	entityDir = "entities"
	indexKey  = "index"
	keySep    = "/"
)

// EntityStore implements collection.Persister on top of a diskv store. Each
// entity is a JSON file under entities/; the index file records insertion
// order.
type EntityStore struct {
	d  *diskv.Diskv
	mu sync.Mutex
}

var _ collection.Persister = (*EntityStore)(nil)

// NewEntityStore opens (or lazily creates) a diskv store rooted at basePath.
func NewEntityStore(basePath string) *EntityStore {
	return &EntityStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

// Load returns the entities listed in the index, in order.
func (s *EntityStore) Load(ctx context.Context) ([]entity.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.readIndex()
	if err != nil {
		return nil, err
	}

	entities := make([]entity.Entity, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := s.d.Read(entityKey(id))
		if err != nil {
			return nil, fmt.Errorf("read entity %s: %w", id, err)
		}

		var e entity.Entity
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode entity %s: %w", id, err)
		}
		entities = append(entities, e)
	}

	return entities, nil
}

// Save writes every entity, then the index, then erases files no longer
// referenced. A crash before the index is written leaves the previous
// collection readable.
func (s *EntityStore) Save(ctx context.Context, entities []entity.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keep := make(map[string]struct{}, len(entities))
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode entity %s: %w", e.ID, err)
		}
		key := entityKey(e.ID)
		if err := s.d.Write(key, data); err != nil {
			return fmt.Errorf("write entity %s: %w", e.ID, err)
		}
		keep[key] = struct{}{}
		ids = append(ids, e.ID)
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := s.d.Write(indexKey, data); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	cancel := make(chan struct{})
	defer close(cancel)

	var stale []string
	for key := range s.d.KeysPrefix(entityDir+keySep, cancel) {
		if _, ok := keep[key]; !ok {
			stale = append(stale, key)
		}
	}
	for _, key := range stale {
		if err := s.d.Erase(key); err != nil {
			return fmt.Errorf("erase %s: %w", key, err)
		}
	}

	return nil
}

func (s *EntityStore) readIndex() ([]string, error) {
	if !s.d.Has(indexKey) {
		return []string{}, nil
	}

	data, err := s.d.Read(indexKey)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return ids, nil
}

// entityKey encodes the id so it is always a safe file name.
func entityKey(id string) string {
	return entityDir + keySep + base64.RawURLEncoding.EncodeToString([]byte(id))
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, keySep)
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return strings.Join(pathKey.Path, keySep) + keySep + pathKey.FileName
}
