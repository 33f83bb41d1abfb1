package collection

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/internal/core/eventbus"
)

// Mode selects the per-day uniqueness rule of a collection.
type Mode string

const (
	// ModeMulti allows any number of entities per calendar day.
	ModeMulti Mode = "multi"
	// ModeDaily allows at most one entity per calendar day, like a journal.
	ModeDaily Mode = "daily"
)

// ParseMode converts a config value into a Mode. Empty selects ModeMulti.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeMulti:
		return ModeMulti, nil
	case ModeDaily:
		return ModeDaily, nil
	default:
		return "", fmt.Errorf("unknown collection mode %q", s)
	}
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source. Tests pass a clockwork fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the store logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithBus publishes change events to bus after every mutation.
func WithBus(bus *eventbus.EventBus) Option {
	return func(s *Store) { s.bus = bus }
}

// WithLimits overrides the field length limits.
func WithLimits(l entity.Limits) Option {
	return func(s *Store) { s.limits = l }
}

// WithMode sets the per-day uniqueness rule.
func WithMode(m Mode) Option {
	return func(s *Store) { s.mode = m }
}

// WithLocation sets the zone used to derive calendar days for daily mode.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDGenerator replaces the UUIDv7 id source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithName sets the collection name carried on events and log lines.
func WithName(name string) Option {
	return func(s *Store) { s.name = name }
}
