package core

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when an update, get or lookup names an unknown id.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func NewNotFoundError(kind Kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// PersistenceError wraps a failure of the underlying storage.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// ValidationError wraps one of the sentinel validation errors.
type ValidationError struct {
	Kind Kind
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Kind, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func NewValidationError(kind Kind, err error) *ValidationError {
	return &ValidationError{Kind: kind, Err: err}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
