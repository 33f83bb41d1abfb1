// Package analytics derives statistics from a collection snapshot. Every
// function is pure: results depend only on the entities and the time passed
// in, and nothing is cached or persisted.
package analytics

import (
	"cmp"
	"slices"
	"time"

	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/entity"
)

// Counts are the basic tallies over a snapshot.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Favorites int `json:"favorites"`
}

// Count tallies entities.
func Count(entities []entity.Entity) Counts {
	c := Counts{Total: len(entities)}
	for _, e := range entities {
		if e.Completed() {
			c.Completed++
		}
		if e.Favorite {
			c.Favorites++
		}
	}
	return c
}

// CompletionRate is Completed/Total, or 0 for an empty snapshot.
func (c Counts) CompletionRate() float64 {
	return ratio(c.Completed, c.Total)
}

// FavoriteRate is Favorites/Total, or 0 for an empty snapshot.
func (c Counts) FavoriteRate() float64 {
	return ratio(c.Favorites, c.Total)
}

func ratio(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// CategoryCount pairs a category with a number of entities.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryDistribution counts entities per category. Uncategorised entities
// are not counted.
func CategoryDistribution(entities []entity.Entity) map[string]int {
	out := make(map[string]int)
	for _, e := range entities {
		if e.HasCategory() {
			out[e.Category]++
		}
	}
	return out
}

// RankCategories orders a distribution by count descending, then name.
func RankCategories(dist map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(dist))
	for c, n := range dist {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}

// TopCategory returns the category with the most completed entities. Ties go
// to the lexicographically smaller name. It reports false when no categorised
// entity is complete.
func TopCategory(entities []entity.Entity) (string, bool) {
	completed := make(map[string]int)
	for _, e := range entities {
		if e.HasCategory() && e.Completed() {
			completed[e.Category]++
		}
	}

	ranked := RankCategories(completed)
	if len(ranked) == 0 {
		return "", false
	}
	return ranked[0].Category, true
}

// WeekdayDistribution counts entities by the weekday of their local creation
// day. Index 0 is Monday and index 6 is Sunday.
func WeekdayDistribution(entities []entity.Entity, loc *time.Location) [7]int {
	var out [7]int
	for _, e := range entities {
		out[calendar.ISOWeekday(calendar.DayOf(e, loc))-1]++
	}
	return out
}
