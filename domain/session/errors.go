package session

import "errors"

var (
	// ErrNotFound is returned when a session cannot be located in the
	// injected store (§7 NotFound).
	ErrNotFound = errors.New("session not found")

	// ErrInvalidTransition is returned when an event is not in the current
	// state's row of §4.8's transition table. The session itself is left
	// unchanged (state, history, and data all untouched).
	ErrInvalidTransition = errors.New("event not valid from current session state")
)
