package models

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrTargetNotFound = errors.New("target not found")
	ErrNotFound       = errors.New("not found")
)

// ValidationError reports a malformed or unregistered field value.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError is returned when a write violates a unique index.
type ConflictError struct {
	Resource string
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %v", e.Resource, e.Err)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

func (e *ConflictError) Unwrap() error { return e.Err }

// TargetNotFoundError is returned when an activity's target cannot be loaded.
type TargetNotFoundError struct {
	Model TargetModel
	ID    primitive.ObjectID
	Err   error
}

func (e *TargetNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("target %s %s not found: %v", e.Model, e.ID.Hex(), e.Err)
	}
	return fmt.Sprintf("target %s %s not found", e.Model, e.ID.Hex())
}

func (e *TargetNotFoundError) Is(target error) bool { return target == ErrTargetNotFound }

func (e *TargetNotFoundError) Unwrap() error { return e.Err }
