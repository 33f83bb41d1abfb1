package config

import (
	"fmt"
	"regexp"
	"slices"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/almanac/internal/core/collection"
	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/internal/core/styles"
)

var collectionNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Backends lists the supported storage backends.
var Backends = []string{BackendJSON, BackendSQLite, BackendDiskv}

// Validate checks that the configuration is valid. All problems are reported
// together as criterio field errors.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, required),
		criterio.Run("storage.backend", c.Storage.Backend, isBackend),
		criterio.Run("collection.name", c.Collection.Name, isCollectionName),
		criterio.Run("collection.mode", c.Collection.Mode, isMode),
		validateLimits(c.Collection.Limits),
		criterio.Run("analytics.window_days", c.Analytics.WindowDays, isPositive),
		criterio.Run("analytics.timezone", c.Analytics.Timezone, isTimezone),
		criterio.Run("ui.theme", c.UI.Theme, isTheme),
	)
}

func required(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func isBackend(s string) error {
	if !slices.Contains(Backends, s) {
		return fmt.Errorf("must be one of %v, got %q", Backends, s)
	}
	return nil
}

func isCollectionName(s string) error {
	if !collectionNameRe.MatchString(s) {
		return fmt.Errorf("must be lowercase letters, digits, '-' or '_', got %q", s)
	}
	return nil
}

func isMode(s string) error {
	_, err := collection.ParseMode(s)
	return err
}

func isPositive(n int) error {
	if n < 1 {
		return fmt.Errorf("must be at least 1, got %d", n)
	}
	return nil
}

func isTimezone(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("unknown timezone %q", s)
	}
	return nil
}

func isTheme(s string) error {
	if _, ok := styles.GetPalette(s); !ok {
		return fmt.Errorf("unknown theme %q, available: %v", s, styles.ThemeNames())
	}
	return nil
}

func validateLimits(l entity.Limits) error {
	var errs criterio.FieldErrorsBuilder
	for field, v := range map[string]int{
		"collection.limits.title":    l.Title,
		"collection.limits.notes":    l.Notes,
		"collection.limits.location": l.Location,
		"collection.limits.category": l.Category,
	} {
		if v < 0 {
			errs = errs.Append(field, fmt.Errorf("cannot be negative, got %d", v))
		}
	}
	return errs.ToError()
}
