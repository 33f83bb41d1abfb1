package entity

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	limits := DefaultLimits()

	t.Run("trims every field", func(t *testing.T) {
		got, err := Normalize(Payload{
			Title:    "  Met a street musician \n",
			Notes:    "\tplayed the cello ",
			Location: " Old Town ",
			Category: " music ",
		}, limits)
		require.NoError(t, err)
		assert.Equal(t, "Met a street musician", got.Title)
		assert.Equal(t, "played the cello", got.Notes)
		assert.Equal(t, "Old Town", got.Location)
		assert.Equal(t, "music", got.Category)
	})

	tests := []struct {
		name  string
		input Payload
		field string
	}{
		{"empty title", Payload{Title: ""}, "title"},
		{"whitespace title", Payload{Title: " \t\n "}, "title"},
		{"title too long", Payload{Title: strings.Repeat("a", 201)}, "title"},
		{"notes too long", Payload{Title: "ok", Notes: strings.Repeat("n", 2001)}, "notes"},
		{"location too long", Payload{Title: "ok", Location: strings.Repeat("l", 201)}, "location"},
		{"category too long", Payload{Title: "ok", Category: strings.Repeat("c", 51)}, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input, limits)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.HasField(tt.field), "expected field %q in %v", tt.field, verr.Fields)
		})
	}

	t.Run("limit counts runes not bytes", func(t *testing.T) {
		_, err := Normalize(Payload{Title: strings.Repeat("é", 200)}, limits)
		assert.NoError(t, err)
	})

	t.Run("length checked after trimming", func(t *testing.T) {
		_, err := Normalize(Payload{Title: "   " + strings.Repeat("a", 200) + "   "}, limits)
		assert.NoError(t, err)
	})

	t.Run("zero limit disables check", func(t *testing.T) {
		_, err := Normalize(Payload{Title: strings.Repeat("a", 5000)}, Limits{})
		assert.NoError(t, err)
	})

	t.Run("collects every failing field", func(t *testing.T) {
		_, err := Normalize(Payload{Title: "", Category: strings.Repeat("c", 60)}, limits)

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Len(t, fieldErrs, 2)
	})
}

func TestErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		err := fmt.Errorf("delete: %w", &NotFoundError{ID: "abc"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), `"abc"`)
	})

	t.Run("persistence unwraps cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := &PersistenceError{Op: "save", Err: cause}
		assert.ErrorIs(t, err, ErrPersistence)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "save entities: disk full", err.Error())
	})

	t.Run("duplicate day reachable through validation error", func(t *testing.T) {
		err := NewFieldError("date", ErrDuplicateDay)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrDuplicateDay)
		assert.True(t, err.HasField("date"))
	})
}

func TestClone(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	done := now.Add(time.Hour)
	orig := Entity{ID: "1", Title: "a", CreatedAt: now, CompletedAt: &done, UpdatedAt: &done}

	cp := orig.Clone()
	*cp.CompletedAt = now.Add(48 * time.Hour)
	*cp.UpdatedAt = now.Add(72 * time.Hour)

	assert.Equal(t, done, *orig.CompletedAt)
	assert.Equal(t, done, *orig.UpdatedAt)
	assert.True(t, orig.Completed())
}

func TestCloneAll_NilIsEmpty(t *testing.T) {
	out := CloneAll(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestPayloadOf(t *testing.T) {
	e := Entity{Title: "t", Notes: "n", Location: "l", Category: "c", Favorite: true}
	p := PayloadOf(e)
	assert.Equal(t, Payload{Title: "t", Notes: "n", Location: "l", Category: "c", Favorite: true}, p)
}
