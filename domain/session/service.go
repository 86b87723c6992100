package session

import (
	"context"
	"time"
)

// Service is the state machine's public interface (C8, §4.8). The concrete
// implementation lives in internal/sessionfsm so that the pure types here
// stay free of the apperrors/logger dependencies the engine needs.
type Service interface {
	// Create starts a fresh Session in StateInit for userID/gameID, with
	// ExpiresAt set ttl out from now.
	Create(ctx context.Context, userID, gameID string, ttl time.Duration) (*Session, error)

	// Apply evaluates event against the session's current state per the
	// transition table of §4.8, applying payload's fields into Data on
	// success. Before evaluating, if the session is past ExpiresAt and
	// event isn't EventExpire, an EventExpire is synthesized and applied
	// instead (§4.8).
	Apply(ctx context.Context, sessionID string, event Event, payload Payload) (*Session, error)

	// Get loads a session by id, synthesizing the EXPIRE transition first
	// if it is found past its TTL.
	Get(ctx context.Context, sessionID string) (*Session, error)
}
