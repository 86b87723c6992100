// Package apperrors defines the structured error kinds the engine returns
// to callers, in place of the HTTP-status-coupled errors of an adjacent API
// layer (which is out of scope here).
package apperrors

import "fmt"

// Kind enumerates the error categories the engine can return. These map
// 1:1 onto §7 of the specification.
type Kind string

const (
	InvalidInput      Kind = "INVALID_INPUT"
	InvalidTransition Kind = "INVALID_TRANSITION"
	NotFound          Kind = "NOT_FOUND"
	Expired           Kind = "EXPIRED"
	AlreadyRevealed   Kind = "ALREADY_REVEALED"
	Tampered          Kind = "TAMPERED"
	Internal          Kind = "INTERNAL"
)

// Error is the structured error type returned across package boundaries.
// Checks carries the per-check verification breakdown for Tampered errors
// so callers can distinguish a benign "no server key" mismatch from a
// malicious one without losing the rest of the evaluated checks.
type Error struct {
	Kind    Kind
	Message string
	Checks  map[string]bool
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, apperrors.New(kind, "")) match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewInvalidInput(message string) *Error {
	return New(InvalidInput, message)
}

func NewInvalidTransition(message string) *Error {
	return New(InvalidTransition, message)
}

func NewNotFound(message string) *Error {
	return New(NotFound, message)
}

func NewExpired(message string) *Error {
	return New(Expired, message)
}

func NewAlreadyRevealed(message string) *Error {
	return New(AlreadyRevealed, message)
}

// NewTampered reports a failed verification, carrying the full per-check
// breakdown so the caller can tell which invariant broke.
func NewTampered(message string, checks map[string]bool) *Error {
	return &Error{Kind: Tampered, Message: message, Checks: checks}
}

func NewInternal(message string, err error) *Error {
	return Wrap(Internal, message, err)
}
