package query

import (
	"math/rand/v2"

	"github.com/colonyops/almanac/internal/core/entity"
)

// Random draws one entity uniformly from entities, skipping excludeID so
// "show me another" never repeats the current one. When the excluded entity
// is the only one it is returned anyway. An empty input reports false.
//
// A nil r uses the package-level generator.
func Random(entities []entity.Entity, excludeID string, r *rand.Rand) (entity.Entity, bool) {
	if len(entities) == 0 {
		return entity.Entity{}, false
	}

	pool := make([]int, 0, len(entities))
	for i, e := range entities {
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		pool = append(pool, i)
	}
	if len(pool) == 0 {
		return entities[0], true
	}

	var n int
	if r != nil {
		n = r.IntN(len(pool))
	} else {
		n = rand.IntN(len(pool))
	}
	return entities[pool[n]], true
}
