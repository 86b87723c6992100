// Package session defines the pure data types of the session state machine
// (C8, §3, §4.8): the enumerated states and events, the tagged event
// payloads the machine pattern-matches on (§9 Design Notes — replacing the
// source's stringly-typed payload maps), and the Session record itself.
package session

import (
	"time"

	"github.com/slotmachine/fairness-engine/domain/provablyfair"
)

// State is one of the eight states a Session can occupy (§3).
type State string

const (
	StateInit            State = "INIT"
	StateAwaitingBet      State = "AWAITING_BET"
	StateEntropyRequested State = "ENTROPY_REQUESTED"
	StateSpinning         State = "SPINNING"
	StateComplete         State = "COMPLETE"
	StateError            State = "ERROR"
	StateCancelled        State = "CANCELLED"
	StateExpired          State = "EXPIRED"
)

// Terminal reports whether a session in this state can ever transition
// again. Only CANCELLED and EXPIRED are terminal — every other state has
// at least one outgoing edge in §4.8's transition table.
func (s State) Terminal() bool {
	return s == StateCancelled || s == StateExpired
}

// Event is one of the named transitions of §4.8's table.
type Event string

const (
	EventStart           Event = "START"
	EventPlaceBet        Event = "PLACE_BET"
	EventEntropyReceived Event = "ENTROPY_RECEIVED"
	EventSpinComplete    Event = "SPIN_COMPLETE"
	EventReset           Event = "RESET"
	EventError           Event = "ERROR"
	EventCancel          Event = "CANCEL"
	EventExpire          Event = "EXPIRE"
)

// Payload is the tagged variant of per-event data the machine copies into
// Session.Data (§4.8's "explicit event-to-field table"; §9 Design Notes:
// "re-architect as a tagged variant: one case per event, each carrying its
// typed payload; the session machine pattern-matches"). nil is valid for
// events that carry none (RESET, CANCEL, EXPIRE).
type Payload interface {
	isSessionPayload()
}

// PlaceBetPayload is PLACE_BET's payload: bet fields plus the client seed
// and nonce for the round about to be opened.
type PlaceBetPayload struct {
	BetAmount  float64
	Currency   string
	ClientSeed []byte
	Nonce      int64
}

func (PlaceBetPayload) isSessionPayload() {}

// EntropyReceivedPayload is ENTROPY_RECEIVED's payload: the 32-byte
// entropy value of this round. The engine records the combined entropy
// (HMAC of house seed and client seed) that drives the mapping.
type EntropyReceivedPayload struct {
	EntropyDigest [32]byte
}

func (EntropyReceivedPayload) isSessionPayload() {}

// SpinCompletePayload is SPIN_COMPLETE's payload: the emitted proof,
// recorded as the session's last result (§3: "data holds ... last
// result").
type SpinCompletePayload struct {
	Result *provablyfair.Proof
}

func (SpinCompletePayload) isSessionPayload() {}

// ErrorPayload carries the reason an ERROR transition fires.
type ErrorPayload struct {
	Message string
}

func (ErrorPayload) isSessionPayload() {}

// CustomPayload is the catch-all case for any other named field the
// machine does not special-case: "others -> custom map" in §4.8's event-
// to-field table.
type CustomPayload struct {
	Custom map[string]any
}

func (CustomPayload) isSessionPayload() {}

// Data is the mutable bag a Session exclusively owns (§3). Fields an event
// doesn't touch retain their previous value.
type Data struct {
	BetAmount         float64
	Currency          string
	ClientSeed        []byte
	Nonce             int64
	LastEntropyDigest [32]byte
	LastResult        *provablyfair.Proof
	Custom            map[string]any
}

// HistoryEntry is one append-only record of a successful transition (§3,
// §4.8). Payload is retained for audit/debugging; it is never required to
// replay a Session's current Data, which is already authoritative.
type HistoryEntry struct {
	From    State
	To      State
	Event   Event
	At      time.Time
	Payload Payload
}

// Session is the record a state machine instance owns end to end (§3). A
// Session exclusively owns its Data and History; it holds no owning
// reference into the Commitment Pool, only opaque identifiers threaded
// through Data (§9 Design Notes).
type Session struct {
	ID        string
	UserID    string
	GameID    string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
	Data      Data
	History   []HistoryEntry
	Error     string
}

// Expired reports whether now is past the session's TTL. The machine
// checks this before evaluating any event other than EXPIRE itself (§4.8).
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
