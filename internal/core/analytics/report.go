package analytics

import (
	"time"

	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/entity"
)

// Report bundles every statistic shown by the stats command.
type Report struct {
	GeneratedAt           time.Time          `json:"generated_at"`
	WindowDays            int                `json:"window_days"`
	Counts                Counts             `json:"counts"`
	CompletionRate        float64            `json:"completion_rate"`
	FavoriteRate          float64            `json:"favorite_rate"`
	Categories            []CategoryCount    `json:"categories"`
	TopCategory           string             `json:"top_category,omitempty"`
	Weekdays              [7]int             `json:"weekdays"`
	MostActiveDay         *calendar.DayCount `json:"most_active_day,omitempty"`
	AveragePerDay         float64            `json:"average_per_day"`
	AveragePerWeek        float64            `json:"average_per_week"`
	LongestStreak         int                `json:"longest_streak"`
	CurrentStreak         int                `json:"current_streak"`
	AverageTimeToComplete *time.Duration     `json:"average_time_to_complete,omitempty"`
	Badges                []BadgeStatus      `json:"badges"`
}

// Compute builds a Report for the trailing window of windowDays ending at
// now. Days are evaluated in now's location.
func Compute(entities []entity.Entity, now time.Time, windowDays int) Report {
	w := LastDays(now, windowDays)
	counts := Count(entities)
	completions := CompletionTimes(entities)

	r := Report{
		GeneratedAt:    now,
		WindowDays:     w.days(),
		Counts:         counts,
		CompletionRate: counts.CompletionRate(),
		FavoriteRate:   counts.FavoriteRate(),
		Categories:     RankCategories(CategoryDistribution(entities)),
		Weekdays:       WeekdayDistribution(entities, now.Location()),
		AveragePerDay:  AveragePerDay(entities, w),
		AveragePerWeek: AveragePerWeek(entities, w),
		LongestStreak:  LongestStreak(completions, now.Location()),
		CurrentStreak:  CurrentStreak(completions, now),
		Badges:         EvaluateBadges(StatsOf(entities, now)),
	}

	if top, ok := TopCategory(entities); ok {
		r.TopCategory = top
	}
	if dc, ok := MostActiveDay(entities, w); ok {
		r.MostActiveDay = &dc
	}
	if avg, ok := AverageTimeToComplete(entities); ok {
		r.AverageTimeToComplete = &avg
	}

	return r
}

// Unlocked returns the names of the unlocked badges.
func (r Report) Unlocked() []string {
	out := make([]string, 0, len(r.Badges))
	for _, b := range r.Badges {
		if b.Unlocked {
			out = append(out, b.Name)
		}
	}
	return out
}
