package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for criteria validation failures.
var (
	ErrInvalidCriteria  = errors.New("invalid criteria")
	ErrCoordinatePair   = errors.New("lat and lon must be provided together")
	ErrCityWithoutState = errors.New("state must be provided when city is specified")
	ErrMileageRange     = errors.New("min_miles exceeds max_miles")
	ErrYearOutOfRange   = errors.New("year out of range")
	ErrNegativeMileage  = errors.New("mileage bound must not be negative")
)

// ValidationError wraps a sentinel with the offending field and value.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
