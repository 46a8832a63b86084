package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySelection is returned when a new category is promoted without
	// any checked field.
	ErrEmptySelection = errors.New("session: empty field selection")
	// ErrEmptyName is returned when a new category is promoted without a name.
	ErrEmptyName = errors.New("session: empty category name")
)

// ValidationError carries the user-facing message for a rejected promotion.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func emptySelection() error {
	return &ValidationError{Message: "Please select at least one field.", Err: ErrEmptySelection}
}

func emptyName() error {
	return &ValidationError{Message: "Please enter a name for the new type.", Err: ErrEmptyName}
}
