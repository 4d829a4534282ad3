package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when a user status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNoPhraseAvailable means the active phrase set is empty. It is a
	// configuration error and is never retried.
	ErrNoPhraseAvailable = errors.New("no phrase available")
	// ErrRunIncomplete is returned when an operation needs a completed run.
	ErrRunIncomplete = errors.New("dispatch run is not completed")
)

var (
	// ErrNotConfigured is returned by optional collaborators that were not set up.
	ErrNotConfigured = errors.New("not configured")
	// ErrUserNotPending is returned when confirmation is requested for a user
	// that is not waiting for it.
	ErrUserNotPending = errors.New("user is not pending confirmation")
)
