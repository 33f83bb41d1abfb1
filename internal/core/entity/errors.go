package entity

import (
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("invalid entity")
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("entity not found")
	// ErrPersistence matches every *PersistenceError.
	ErrPersistence = errors.New("entity persistence failed")
	// ErrDuplicateDay is reported on the "date" field when a daily collection
	// already holds an entity for that calendar day.
	ErrDuplicateDay = errors.New("an entity already exists for this day")
)

// ValidationError is returned when a payload is rejected. The store state is
// unchanged.
type ValidationError struct {
	Fields criterio.FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation, e.Fields.Error())
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap exposes the criterio field errors and each underlying field error so
// errors.Is can reach sentinels such as ErrDuplicateDay.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Fields)+1)
	errs = append(errs, e.Fields)
	for _, f := range e.Fields {
		errs = append(errs, f.Err)
	}
	return errs
}

// HasField reports whether the named field failed validation.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// NotFoundError is returned when an operation references an id that is not in
// the store. Callers should refresh their view.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNotFound, e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError is returned when loading or saving failed. For saves, the
// in-memory mutation has already been applied and is not reverted.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s entities: %v", e.Op, e.Err)
}

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
