package analytics

import (
	"slices"
	"time"

	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/entity"
)

// CompletionTimes returns the completion timestamps of completed entities in
// snapshot order.
func CompletionTimes(entities []entity.Entity) []time.Time {
	out := make([]time.Time, 0, len(entities))
	for _, e := range entities {
		if e.CompletedAt != nil {
			out = append(out, *e.CompletedAt)
		}
	}
	return out
}

// LongestStreak returns the longest run of consecutive calendar days, as seen
// from loc, that contain at least one timestamp. Timestamps on the same day
// count once. An empty input yields 0.
func LongestStreak(timestamps []time.Time, loc *time.Location) int {
	if len(timestamps) == 0 {
		return 0
	}

	sorted := slices.Clone(timestamps)
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })

	longest, run := 1, 1
	prev := calendar.DateIn(sorted[0], loc)
	for _, ts := range sorted[1:] {
		day := calendar.DateIn(ts, loc)
		switch calendar.DaysBetween(prev, day) {
		case 0:
			continue
		case 1:
			run++
		default:
			run = 1
		}
		longest = max(longest, run)
		prev = day
	}

	return longest
}

// CurrentStreak returns the run of consecutive days ending today, or
// yesterday when today has no timestamp yet. Days are evaluated in now's
// location.
func CurrentStreak(timestamps []time.Time, now time.Time) int {
	days := make(map[calendar.Date]struct{}, len(timestamps))
	for _, ts := range timestamps {
		days[calendar.DateIn(ts, now.Location())] = struct{}{}
	}

	expected := calendar.DateOf(now)
	if _, ok := days[expected]; !ok {
		expected = expected.AddDays(-1)
	}

	streak := 0
	for {
		if _, ok := days[expected]; !ok {
			return streak
		}
		streak++
		expected = expected.AddDays(-1)
	}
}

// AverageTimeToComplete is the mean of CompletedAt-CreatedAt over completed
// entities. It reports false when nothing is complete.
func AverageTimeToComplete(entities []entity.Entity) (time.Duration, bool) {
	var (
		total time.Duration
		n     int
	)
	for _, e := range entities {
		if e.CompletedAt == nil {
			continue
		}
		total += e.CompletedAt.Sub(e.CreatedAt)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / time.Duration(n), true
}
