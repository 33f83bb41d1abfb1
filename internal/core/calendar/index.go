package calendar

import (
	"sort"
	"time"

	"github.com/colonyops/almanac/internal/core/entity"
)

// DayOf returns the local creation day of e as seen from loc.
func DayOf(e entity.Entity, loc *time.Location) Date {
	return DateIn(e.CreatedAt, loc)
}

// EntitiesOnDay returns the entities whose local creation day equals the
// calendar day of day, evaluated in day's location. Order is preserved.
func EntitiesOnDay(entities []entity.Entity, day time.Time) []entity.Entity {
	loc := day.Location()
	target := DateOf(day)

	out := make([]entity.Entity, 0)
	for _, e := range entities {
		if DayOf(e, loc) == target {
			out = append(out, e)
		}
	}
	return out
}

// Today returns every entity created on now's calendar day.
func Today(entities []entity.Entity, now time.Time) []entity.Entity {
	return EntitiesOnDay(entities, now)
}

// TodayEntity returns the single entity for now's calendar day in a daily
// collection. If the invariant was broken by external edits, the earliest
// inserted entity wins.
func TodayEntity(entities []entity.Entity, now time.Time) (entity.Entity, bool) {
	today := Today(entities, now)
	if len(today) == 0 {
		return entity.Entity{}, false
	}
	return today[0], true
}

// DayCount pairs a calendar day with a number of entities.
type DayCount struct {
	Date  Date `json:"date"`
	Count int  `json:"count"`
}

// Counts holds per-day entity counts over an inclusive date range. Every day
// in range is queryable and defaults to zero.
type Counts struct {
	From   Date
	To     Date
	counts map[Date]int
}

// Count returns the number of entities created on d, or zero when d has none
// or lies outside the range.
func (c Counts) Count(d Date) int {
	return c.counts[d]
}

// Days lists every day in range in ascending order, including empty ones.
func (c Counts) Days() []DayCount {
	if c.To.Before(c.From) {
		return []DayCount{}
	}
	out := make([]DayCount, 0, DaysBetween(c.From, c.To)+1)
	for d := c.From; !d.After(c.To); d = d.AddDays(1) {
		out = append(out, DayCount{Date: d, Count: c.counts[d]})
	}
	return out
}

// Total sums the counts over the range.
func (c Counts) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// CountsByDay counts entities per local creation day between from and to,
// inclusive. Entities outside the range are ignored.
func CountsByDay(entities []entity.Entity, from, to Date, loc *time.Location) Counts {
	c := Counts{From: from, To: to, counts: make(map[Date]int)}
	for _, e := range entities {
		d := DayOf(e, loc)
		if d.Before(from) || d.After(to) {
			continue
		}
		c.counts[d]++
	}
	return c
}

// CountsForMonth counts entities per day for a whole calendar month.
func CountsForMonth(entities []entity.Entity, year int, month time.Month, loc *time.Location) Counts {
	from := Date{Year: year, Month: month, Day: 1}
	to := Date{Year: year, Month: month, Day: DaysIn(year, month)}
	return CountsByDay(entities, from, to, loc)
}

// Granularity selects the bucket width used by Group.
type Granularity int

const (
	ByDay Granularity = iota
	ByWeek
	ByMonth
)

// Bucket is a group of entities sharing a calendar period. Start is the first
// day of the period (the day itself, the Monday, or the 1st).
type Bucket struct {
	Start    Date
	Entities []entity.Entity
}

// Group partitions entities into calendar buckets ordered by period start.
// Within a bucket the input order is preserved.
func Group(entities []entity.Entity, g Granularity, loc *time.Location) []Bucket {
	index := make(map[Date]int)
	buckets := make([]Bucket, 0)

	for _, e := range entities {
		start := bucketStart(DayOf(e, loc), g)
		i, ok := index[start]
		if !ok {
			i = len(buckets)
			index[start] = i
			buckets = append(buckets, Bucket{Start: start})
		}
		buckets[i].Entities = append(buckets[i].Entities, e)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	return buckets
}

func bucketStart(d Date, g Granularity) Date {
	switch g {
	case ByWeek:
		return StartOfWeek(d)
	case ByMonth:
		return StartOfMonth(d)
	default:
		return d
	}
}
