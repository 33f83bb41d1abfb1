package query

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/colonyops/almanac/internal/core/entity"
)

// SortKey selects the ordering applied by Sort.
type SortKey string

const (
	SortNone     SortKey = "none"     // insertion order
	SortTitle    SortKey = "title"    // lexicographic, case-folded
	SortCreated  SortKey = "created"  // newest first
	SortOldest   SortKey = "oldest"   // oldest first
	SortCategory SortKey = "category" // lexicographic, uncategorised last, then newest first
)

// SortKeys lists every accepted key.
var SortKeys = []SortKey{SortNone, SortTitle, SortCreated, SortOldest, SortCategory}

// ParseSortKey converts user input into a SortKey. An empty string selects
// SortNone.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortNone, nil
	}
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortKeys, key) {
		return key, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Sort returns a stably sorted copy of entities. Sorting never changes which
// entities are present.
func Sort(entities []entity.Entity, key SortKey) []entity.Entity {
	out := make([]entity.Entity, len(entities))
	copy(out, entities)

	switch key {
	case SortTitle:
		fold := cases.Fold()
		keyed := make([]titleKey, len(out))
		for i, e := range out {
			keyed[i] = titleKey{key: fold.String(e.Title), e: e}
		}
		slices.SortStableFunc(keyed, func(a, b titleKey) int {
			return strings.Compare(a.key, b.key)
		})
		for i, k := range keyed {
			out[i] = k.e
		}
	case SortCreated:
		slices.SortStableFunc(out, newestFirst)
	case SortOldest:
		slices.SortStableFunc(out, func(a, b entity.Entity) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	case SortCategory:
		slices.SortStableFunc(out, func(a, b entity.Entity) int {
			if c := compareCategory(a.Category, b.Category); c != 0 {
				return c
			}
			return newestFirst(a, b)
		})
	}

	return out
}

type titleKey struct {
	key string
	e   entity.Entity
}

func newestFirst(a, b entity.Entity) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}

func compareCategory(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	default:
		return strings.Compare(a, b)
	}
}
