// Package sessionfsm implements the Session State Machine (C8, §4.8): the
// transition table binding commit and reveal into a legal order of
// operations, serialized per session, backed by an injected session.Store.
package sessionfsm

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slotmachine/fairness-engine/domain/session"
	"github.com/slotmachine/fairness-engine/internal/apperrors"
	"github.com/slotmachine/fairness-engine/internal/logger"
)

// transitions is the explicit table of §4.8, excluding the three wildcard
// events (ERROR, CANCEL, EXPIRE) that apply from any non-terminal state —
// those are resolved in next() instead of being repeated here for every
// state.
var transitions = map[session.State]map[session.Event]session.State{
	session.StateInit: {
		session.EventStart: session.StateAwaitingBet,
	},
	session.StateAwaitingBet: {
		session.EventPlaceBet: session.StateEntropyRequested,
	},
	session.StateEntropyRequested: {
		session.EventEntropyReceived: session.StateSpinning,
	},
	session.StateSpinning: {
		session.EventSpinComplete: session.StateComplete,
	},
	session.StateComplete: {
		session.EventReset: session.StateAwaitingBet,
	},
	session.StateError: {
		session.EventReset:  session.StateInit,
		session.EventCancel: session.StateCancelled,
	},
}

// next resolves the target state for (current, event), per the explicit
// table first and the {any non-terminal} wildcards of §4.8 second. ok is
// false when the event is not legal from current.
func next(current session.State, event session.Event) (session.State, bool) {
	if row, ok := transitions[current]; ok {
		if target, ok := row[event]; ok {
			return target, true
		}
	}
	if current.Terminal() {
		return "", false
	}
	switch event {
	case session.EventError:
		return session.StateError, true
	case session.EventCancel:
		return session.StateCancelled, true
	case session.EventExpire:
		return session.StateExpired, true
	}
	return "", false
}

// Machine is the C8 engine: it owns no session state of its own beyond a
// per-session mutex map, delegating lookup/save/list to the injected
// session.Store (§4.8, §9 Design Notes — no global singleton, an owned
// value constructed at startup).
type Machine struct {
	store          session.Store
	maxHistorySize int
	log            *logger.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

var _ session.Service = (*Machine)(nil)

// New constructs a Machine over store, bounding History to maxHistorySize
// entries (FIFO eviction, §3/§4.8). A nil logger is valid; a nil store
// panics on first use, which is the caller's bug to fix, not the Machine's
// to hide.
func New(store session.Store, maxHistorySize int, log *logger.Logger) *Machine {
	if maxHistorySize <= 0 {
		maxHistorySize = 50
	}
	return &Machine{
		store:          store,
		maxHistorySize: maxHistorySize,
		log:            log,
		locks:          make(map[string]*sync.Mutex),
		now:            time.Now,
	}
}

func (m *Machine) lockFor(id string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// Create starts a fresh Session in StateInit (§4.8's transition table
// begins there).
func (m *Machine) Create(ctx context.Context, userID, gameID string, ttl time.Duration) (*session.Session, error) {
	now := m.now()
	s := &session.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		GameID:    gameID,
		State:     session.StateInit,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, apperrors.NewInternal("failed to save new session", err)
	}
	return s, nil
}

// Get loads a session, synthesizing EXPIRE first if it is found past its
// TTL (§4.8: "prior to evaluating any event ... the machine first
// synthesizes an EXPIRE event").
func (m *Machine) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	lock := m.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if m.isDue(s) {
		return m.apply(ctx, s, session.EventExpire, nil)
	}
	return s, nil
}

// Apply evaluates event against the session's current state, applying
// payload's fields into Data on success (§4.8's event-to-field table) and
// appending a bounded History entry. An event not in the current state's
// row fails with apperrors.InvalidTransition and the session is returned
// unchanged. If the session is past its TTL and event isn't EXPIRE, EXPIRE
// is synthesized and applied instead — the caller's original event is not
// additionally evaluated (§4.8).
func (m *Machine) Apply(ctx context.Context, sessionID string, event session.Event, payload session.Payload) (*session.Session, error) {
	lock := m.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	s, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if m.isDue(s) && event != session.EventExpire {
		return m.apply(ctx, s, session.EventExpire, nil)
	}
	return m.apply(ctx, s, event, payload)
}

// isDue reports whether s is non-terminal and past its TTL as of now.
// Already-terminal sessions (CANCELLED, EXPIRED) are never re-expired —
// they fall through to apply(), which rejects any further event via
// next()'s terminal check.
func (m *Machine) isDue(s *session.Session) bool {
	return !s.State.Terminal() && s.Expired(m.now())
}

func (m *Machine) apply(ctx context.Context, s *session.Session, event session.Event, payload session.Payload) (*session.Session, error) {
	target, ok := next(s.State, event)
	if !ok {
		return s, apperrors.Wrap(apperrors.InvalidTransition, "event not valid from current state", session.ErrInvalidTransition)
	}

	now := m.now()
	from := s.State
	s.State = target
	s.UpdatedAt = now
	applyPayload(s, event, payload)
	if event == session.EventError {
		if ep, ok := payload.(session.ErrorPayload); ok {
			s.Error = ep.Message
		}
	}

	s.History = append(s.History, session.HistoryEntry{
		From:    from,
		To:      target,
		Event:   event,
		At:      now,
		Payload: payload,
	})
	if len(s.History) > m.maxHistorySize {
		s.History = s.History[len(s.History)-m.maxHistorySize:]
	}

	if err := m.store.Save(ctx, s); err != nil {
		return nil, apperrors.NewInternal("failed to save session transition", err)
	}

	if m.log != nil {
		m.log.Debug().
			Str("session_id", s.ID).
			Str("from", string(from)).
			Str("to", string(target)).
			Str("event", string(event)).
			Msg("session transition")
	}

	return s, nil
}

// applyPayload copies payload's fields into s.Data per §4.8's explicit
// event-to-field table: PLACE_BET -> bet fields + seed + nonce;
// ENTROPY_RECEIVED -> entropy digest; SPIN_COMPLETE -> spin result; every
// other event with a CustomPayload merges into the Custom map.
func applyPayload(s *session.Session, event session.Event, payload session.Payload) {
	switch p := payload.(type) {
	case session.PlaceBetPayload:
		s.Data.BetAmount = p.BetAmount
		s.Data.Currency = p.Currency
		s.Data.ClientSeed = p.ClientSeed
		s.Data.Nonce = p.Nonce
	case session.EntropyReceivedPayload:
		s.Data.LastEntropyDigest = p.EntropyDigest
	case session.SpinCompletePayload:
		s.Data.LastResult = p.Result
	case session.CustomPayload:
		if s.Data.Custom == nil {
			s.Data.Custom = make(map[string]any, len(p.Custom))
		}
		for k, v := range p.Custom {
			s.Data.Custom[k] = v
		}
	}
}

func (m *Machine) load(ctx context.Context, sessionID string) (*session.Session, error) {
	s, err := m.store.Load(ctx, sessionID)
	if err != nil {
		if err == session.ErrNotFound {
			return nil, apperrors.Wrap(apperrors.NotFound, "session not found", err)
		}
		return nil, apperrors.NewInternal("failed to load session", err)
	}
	return s, nil
}
