package analytics

import (
	"time"

	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/entity"
)

// Window is a trailing range of whole calendar days ending on End's day,
// inclusive. Days are evaluated in End's location.
type Window struct {
	End  time.Time
	Days int
}

// LastDays returns the window of n days ending at now.
func LastDays(now time.Time, n int) Window {
	return Window{End: now, Days: n}
}

func (w Window) days() int {
	return max(w.Days, 1)
}

// To is the last day of the window.
func (w Window) To() calendar.Date {
	return calendar.DateOf(w.End)
}

// From is the first day of the window.
func (w Window) From() calendar.Date {
	return w.To().AddDays(1 - w.days())
}

// Contains reports whether e was created inside the window.
func (w Window) Contains(e entity.Entity) bool {
	d := calendar.DayOf(e, w.End.Location())
	return !d.Before(w.From()) && !d.After(w.To())
}

// Filter returns the entities created inside the window.
func (w Window) Filter(entities []entity.Entity) []entity.Entity {
	out := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		if w.Contains(e) {
			out = append(out, e)
		}
	}
	return out
}

// CoveredDays is the number of window days the collection has existed for:
// the window length, shortened when the oldest entity is younger than the
// window. It is never less than 1.
func (w Window) CoveredDays(entities []entity.Entity) int {
	if len(entities) == 0 {
		return w.days()
	}

	loc := w.End.Location()
	oldest := calendar.DayOf(entities[0], loc)
	for _, e := range entities[1:] {
		if d := calendar.DayOf(e, loc); d.Before(oldest) {
			oldest = d
		}
	}

	covered := calendar.DaysBetween(oldest, w.To()) + 1
	return max(1, min(w.days(), covered))
}

// MostActiveDay returns the day inside the window with the most entities.
// Ties go to the earliest day. It reports false when the window is empty.
func MostActiveDay(entities []entity.Entity, w Window) (calendar.DayCount, bool) {
	counts := calendar.CountsByDay(entities, w.From(), w.To(), w.End.Location())

	var best calendar.DayCount
	for _, dc := range counts.Days() {
		if dc.Count > best.Count {
			best = dc
		}
	}
	return best, best.Count > 0
}

// AveragePerDay is the number of entities created in the window divided by
// the covered days.
func AveragePerDay(entities []entity.Entity, w Window) float64 {
	n := len(w.Filter(entities))
	if n == 0 {
		return 0
	}
	return float64(n) / float64(w.CoveredDays(entities))
}

// AveragePerWeek is the number of entities created in the window divided by
// the covered weeks, with at least one week.
func AveragePerWeek(entities []entity.Entity, w Window) float64 {
	n := len(w.Filter(entities))
	if n == 0 {
		return 0
	}
	weeks := max(1, float64(w.CoveredDays(entities))/7)
	return float64(n) / weeks
}
