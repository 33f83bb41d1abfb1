// Package query computes filtered, searched and sorted views over a store
// snapshot. Every function is a pure transform: inputs are never mutated and
// nothing is cached between calls.
package query

import (
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/almanac/internal/core/calendar"
	"github.com/colonyops/almanac/internal/core/entity"
)

// Filter is a conjunctive set of predicates. Zero-valued fields do not
// constrain the result.
type Filter struct {
	Category        string         // exact category match
	CategoryPattern string         // doublestar glob against the category, e.g. "work/*"
	Favorite        *bool          // nil means either
	Completed       *bool          // nil means either
	From            *calendar.Date // inclusive, compared at day granularity
	To              *calendar.Date // inclusive, compared at day granularity

	// Loc is the zone in which From and To are evaluated. Nil uses each
	// entity's own timestamp zone.
	Loc *time.Location
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.Category == "" &&
		f.CategoryPattern == "" &&
		f.Favorite == nil &&
		f.Completed == nil &&
		f.From == nil &&
		f.To == nil
}

// Validate checks the glob syntax and the date range.
func (f Filter) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if f.CategoryPattern != "" && !doublestar.ValidatePattern(f.CategoryPattern) {
		errs = errs.Append("category_pattern", fmt.Errorf("invalid glob %q", f.CategoryPattern))
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		errs = errs.Append("to", fmt.Errorf("%s is before %s", f.To, f.From))
	}

	return errs.ToError()
}

// Match reports whether e satisfies every predicate. Dates are compared in
// Loc when set. An invalid glob never matches.
func (f Filter) Match(e entity.Entity) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.CategoryPattern != "" {
		ok, err := doublestar.Match(f.CategoryPattern, e.Category)
		if err != nil || !ok {
			return false
		}
	}
	if f.Favorite != nil && e.Favorite != *f.Favorite {
		return false
	}
	if f.Completed != nil && e.Completed() != *f.Completed {
		return false
	}

	if f.From != nil || f.To != nil {
		day := calendar.DateOf(e.CreatedAt)
		if f.Loc != nil {
			day = calendar.DayOf(e, f.Loc)
		}
		if f.From != nil && day.Before(*f.From) {
			return false
		}
		if f.To != nil && day.After(*f.To) {
			return false
		}
	}

	return true
}

// Apply returns the entities matching f, in input order.
func Apply(entities []entity.Entity, f Filter) []entity.Entity {
	out := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Bool returns a pointer to v, for building filters.
func Bool(v bool) *bool {
	return &v
}
