package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrSubmitDisabled is returned when the collected form still fails the
	// submit gate.
	ErrSubmitDisabled = errors.New("tui: form is not ready for submission")
	// ErrTooManyAttempts stops the new-category prompt loop.
	ErrTooManyAttempts = errors.New("tui: too many invalid attempts")
)
