package query

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/colonyops/almanac/internal/core/entity"
)

// Search returns the entities whose title, notes, location or category
// contain text, ignoring case. A blank query returns the input unchanged.
func Search(entities []entity.Entity, text string) []entity.Entity {
	text = strings.TrimSpace(text)
	if text == "" {
		out := make([]entity.Entity, len(entities))
		copy(out, entities)
		return out
	}

	// A Caser carries state and must not be shared across goroutines.
	fold := cases.Fold()
	needle := fold.String(text)

	out := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		if matches(fold, e, needle) {
			out = append(out, e)
		}
	}
	return out
}

func matches(fold cases.Caser, e entity.Entity, needle string) bool {
	for _, field := range [...]string{e.Title, e.Notes, e.Location, e.Category} {
		if field == "" {
			continue
		}
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}
