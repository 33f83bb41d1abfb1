package entity

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hay-kot/criterio"
)

// Limits caps the length, in runes, of each free-text field after trimming.
// A zero limit disables the check for that field.
type Limits struct {
	Title    int `yaml:"title"    env:"ALMANAC_LIMIT_TITLE"`
	Notes    int `yaml:"notes"    env:"ALMANAC_LIMIT_NOTES"`
	Location int `yaml:"location" env:"ALMANAC_LIMIT_LOCATION"`
	Category int `yaml:"category" env:"ALMANAC_LIMIT_CATEGORY"`
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		Title:    200,
		Notes:    2000,
		Location: 200,
		Category: 50,
	}
}

// Normalize trims every text field and validates the result against limits.
// On failure it returns a *ValidationError listing every offending field.
func Normalize(p Payload, limits Limits) (Payload, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Notes = strings.TrimSpace(p.Notes)
	p.Location = strings.TrimSpace(p.Location)
	p.Category = strings.TrimSpace(p.Category)

	var errs criterio.FieldErrorsBuilder
	if p.Title == "" {
		errs = errs.Append("title", fmt.Errorf("is required"))
	}
	if err := maxRunes(p.Title, limits.Title); err != nil {
		errs = errs.Append("title", err)
	}
	if err := maxRunes(p.Notes, limits.Notes); err != nil {
		errs = errs.Append("notes", err)
	}
	if err := maxRunes(p.Location, limits.Location); err != nil {
		errs = errs.Append("location", err)
	}
	if err := maxRunes(p.Category, limits.Category); err != nil {
		errs = errs.Append("category", err)
	}

	if err := errs.ToError(); err != nil {
		return p, AsValidationError(err)
	}
	return p, nil
}

// AsValidationError converts criterio output into a *ValidationError. Errors
// that are not field errors are reported against the "payload" field.
func AsValidationError(err error) *ValidationError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}

	var fields criterio.FieldErrors
	if errors.As(err, &fields) {
		return &ValidationError{Fields: fields}
	}

	var b criterio.FieldErrorsBuilder
	b = b.Append("payload", err)

	var wrapped criterio.FieldErrors
	_ = errors.As(b.ToError(), &wrapped)
	return &ValidationError{Fields: wrapped}
}

// NewFieldError builds a *ValidationError for a single field.
func NewFieldError(field string, err error) *ValidationError {
	return AsValidationError(criterio.NewFieldErrors(field, err))
}

func maxRunes(s string, limit int) error {
	if limit <= 0 {
		return nil
	}
	if n := utf8.RuneCountInString(s); n > limit {
		return fmt.Errorf("must be at most %d characters, got %d", limit, n)
	}
	return nil
}
