package provablyfair

import "errors"

var (
	// ErrAlreadyRevealed is returned by a second reveal attempt against the
	// same round (§4.3, §7 AlreadyRevealed).
	ErrAlreadyRevealed = errors.New("round has already been revealed")

	// ErrCommitmentNotFound is returned when a commitment cannot be located
	// in either the cache or the session store (§7 NotFound).
	ErrCommitmentNotFound = errors.New("commitment not found")
)
