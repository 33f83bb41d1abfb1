package analytics

import (
	"time"

	"github.com/colonyops/almanac/internal/core/entity"
)

// Stats are the aggregates badges are evaluated against.
type Stats struct {
	Total         int `json:"total"`
	Completed     int `json:"completed"`
	Favorites     int `json:"favorites"`
	Categories    int `json:"categories"`
	LastSevenDays int `json:"last_seven_days"`
	LongestStreak int `json:"longest_streak"`
}

// StatsOf computes badge inputs from a snapshot. Days are evaluated in now's
// location.
func StatsOf(entities []entity.Entity, now time.Time) Stats {
	c := Count(entities)
	return Stats{
		Total:         c.Total,
		Completed:     c.Completed,
		Favorites:     c.Favorites,
		Categories:    len(CategoryDistribution(entities)),
		LastSevenDays: len(LastDays(now, 7).Filter(entities)),
		LongestStreak: LongestStreak(CompletionTimes(entities), now.Location()),
	}
}

// Badge is an achievement unlocked when a metric reaches Goal.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Goal        int    `json:"goal"`

	metric func(Stats) int
}

// Unlocked reports whether s satisfies the badge.
func (b Badge) Unlocked(s Stats) bool {
	return b.metric(s) >= b.Goal
}

// Progress returns the metric value capped at Goal.
func (b Badge) Progress(s Stats) int {
	return min(b.metric(s), b.Goal)
}

// Badges is the fixed catalog, in display order.
var Badges = []Badge{
	{
		ID: "first-entry", Name: "First Steps", Description: "Add your first entry",
		Goal: 1, metric: func(s Stats) int { return s.Total },
	},
	{
		ID: "ten-entries", Name: "Regular", Description: "Add 10 entries",
		Goal: 10, metric: func(s Stats) int { return s.Total },
	},
	{
		ID: "fifty-entries", Name: "Archivist", Description: "Add 50 entries",
		Goal: 50, metric: func(s Stats) int { return s.Total },
	},
	{
		ID: "five-favorites", Name: "Curator", Description: "Mark 5 entries as favorites",
		Goal: 5, metric: func(s Stats) int { return s.Favorites },
	},
	{
		ID: "versatile", Name: "Versatile Designer", Description: "Use 4 different categories",
		Goal: 4, metric: func(s Stats) int { return s.Categories },
	},
	{
		ID: "busy-week", Name: "Busy Week", Description: "Add 3 entries within the last 7 days",
		Goal: 3, metric: func(s Stats) int { return s.LastSevenDays },
	},
	{
		ID: "finisher", Name: "Finisher", Description: "Complete 10 entries",
		Goal: 10, metric: func(s Stats) int { return s.Completed },
	},
	{
		ID: "week-streak", Name: "Unstoppable", Description: "Complete something 7 days in a row",
		Goal: 7, metric: func(s Stats) int { return s.LongestStreak },
	},
}

// BadgeStatus is a badge together with its state for a given Stats.
type BadgeStatus struct {
	Badge
	Unlocked bool `json:"unlocked"`
	Progress int  `json:"progress"`
}

// Achievements returns the unlocked badges in catalog order.
func Achievements(s Stats) []Badge {
	out := make([]Badge, 0, len(Badges))
	for _, b := range Badges {
		if b.Unlocked(s) {
			out = append(out, b)
		}
	}
	return out
}

// EvaluateBadges returns every badge with its unlocked state and progress.
func EvaluateBadges(s Stats) []BadgeStatus {
	out := make([]BadgeStatus, len(Badges))
	for i, b := range Badges {
		out[i] = BadgeStatus{
			Badge:    b,
			Unlocked: b.Unlocked(s),
			Progress: b.Progress(s),
		}
	}
	return out
}
