package sessionfsm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotmachine/fairness-engine/domain/session"
)

func newMachine(t *testing.T, maxHistory int) (*Machine, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	m := New(store, maxHistory, nil)
	return m, store
}

// TestHappyPath reproduces spec scenario 4: INIT->AWAITING_BET->
// ENTROPY_REQUESTED->SPINNING->COMPLETE, with a history length of 4 on
// the terminal (well, COMPLETE-reaching) transition.
func TestHappyPath(t *testing.T) {
	m, _ := newMachine(t, 50)
	ctx := context.Background()

	s, err := m.Create(ctx, "user-1", "game-1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, session.StateInit, s.State)

	s, err = m.Apply(ctx, s.ID, session.EventStart, nil)
	require.NoError(t, err)
	assert.Equal(t, session.StateAwaitingBet, s.State)

	s, err = m.Apply(ctx, s.ID, session.EventPlaceBet, session.PlaceBetPayload{
		BetAmount:  1.5,
		Currency:   "USD",
		ClientSeed: []byte("alice"),
		Nonce:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, session.StateEntropyRequested, s.State)
	assert.Equal(t, 1.5, s.Data.BetAmount)
	assert.Equal(t, int64(1), s.Data.Nonce)

	var digest [32]byte
	digest[0] = 0xAB
	s, err = m.Apply(ctx, s.ID, session.EventEntropyReceived, session.EntropyReceivedPayload{EntropyDigest: digest})
	require.NoError(t, err)
	assert.Equal(t, session.StateSpinning, s.State)
	assert.Equal(t, digest, s.Data.LastEntropyDigest)

	s, err = m.Apply(ctx, s.ID, session.EventSpinComplete, session.SpinCompletePayload{})
	require.NoError(t, err)
	assert.Equal(t, session.StateComplete, s.State)

	assert.Len(t, s.History, 4)
	assert.Equal(t, session.StateInit, s.History[0].From)
	assert.Equal(t, session.StateComplete, s.History[3].To)
}

// TestIllegalTransition reproduces spec scenario 5: from INIT, event
// SPIN_COMPLETE returns InvalidTransition, state and history unchanged.
func TestIllegalTransition(t *testing.T) {
	m, _ := newMachine(t, 50)
	ctx := context.Background()

	s, err := m.Create(ctx, "user-1", "game-1", time.Hour)
	require.NoError(t, err)

	_, err = m.Apply(ctx, s.ID, session.EventSpinComplete, nil)
	require.ErrorIs(t, err, session.ErrInvalidTransition)

	reloaded, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StateInit, reloaded.State)
	assert.Empty(t, reloaded.History)
}

func TestCancelFromAnyNonTerminalState(t *testing.T) {
	m, _ := newMachine(t, 50)
	ctx := context.Background()

	s, err := m.Create(ctx, "u", "g", time.Hour)
	require.NoError(t, err)

	s, err = m.Apply(ctx, s.ID, session.EventCancel, nil)
	require.NoError(t, err)
	assert.Equal(t, session.StateCancelled, s.State)

	_, err = m.Apply(ctx, s.ID, session.EventStart, nil)
	require.ErrorIs(t, err, session.ErrInvalidTransition)

	_, err = m.Apply(ctx, s.ID, session.EventCancel, nil)
	require.ErrorIs(t, err, session.ErrInvalidTransition)
}

func TestErrorAndResetCycles(t *testing.T) {
	m, _ := newMachine(t, 50)
	ctx := context.Background()

	s, err := m.Create(ctx, "u", "g", time.Hour)
	require.NoError(t, err)

	s, err = m.Apply(ctx, s.ID, session.EventError, session.ErrorPayload{Message: "boom"})
	require.NoError(t, err)
	assert.Equal(t, session.StateError, s.State)
	assert.Equal(t, "boom", s.Error)

	s, err = m.Apply(ctx, s.ID, session.EventReset, nil)
	require.NoError(t, err)
	assert.Equal(t, session.StateInit, s.State)

	s, err = m.Apply(ctx, s.ID, session.EventStart, nil)
	require.NoError(t, err)
	s, err = m.Apply(ctx, s.ID, session.EventError, nil)
	require.NoError(t, err)
	s, err = m.Apply(ctx, s.ID, session.EventCancel, nil)
	require.NoError(t, err)
	assert.Equal(t, session.StateCancelled, s.State)
}

func TestExpirySynthesizedBeforeOtherEvents(t *testing.T) {
	m, _ := newMachine(t, 50)
	ctx := context.Background()

	s, err := m.Create(ctx, "u", "g", time.Millisecond)
	require.NoError(t, err)

	fixedNow := s.ExpiresAt.Add(time.Second)
	m.now = func() time.Time { return fixedNow }

	got, err := m.Apply(ctx, s.ID, session.EventStart, nil)
	require.NoError(t, err)
	assert.Equal(t, session.StateExpired, got.State)
	assert.Len(t, got.History, 1)
	assert.Equal(t, session.EventExpire, got.History[0].Event)

	_, err = m.Apply(ctx, s.ID, session.EventStart, nil)
	require.ErrorIs(t, err, session.ErrInvalidTransition)
}

func TestExpiryOnGet(t *testing.T) {
	m, _ := newMachine(t, 50)
	ctx := context.Background()

	s, err := m.Create(ctx, "u", "g", time.Millisecond)
	require.NoError(t, err)

	fixedNow := s.ExpiresAt.Add(time.Second)
	m.now = func() time.Time { return fixedNow }

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StateExpired, got.State)
}

func TestHistoryIsBoundedFIFO(t *testing.T) {
	m, _ := newMachine(t, 2)
	ctx := context.Background()

	s, err := m.Create(ctx, "u", "g", time.Hour)
	require.NoError(t, err)

	s, err = m.Apply(ctx, s.ID, session.EventStart, nil)
	require.NoError(t, err)
	s, err = m.Apply(ctx, s.ID, session.EventPlaceBet, session.PlaceBetPayload{Nonce: 1})
	require.NoError(t, err)
	s, err = m.Apply(ctx, s.ID, session.EventEntropyReceived, nil)
	require.NoError(t, err)

	assert.Len(t, s.History, 2)
	assert.Equal(t, session.EventPlaceBet, s.History[0].Event)
	assert.Equal(t, session.EventEntropyReceived, s.History[1].Event)
}

func TestNotFound(t *testing.T) {
	m, _ := newMachine(t, 50)
	ctx := context.Background()

	_, err := m.Get(ctx, "does-not-exist")
	require.Error(t, err)
}

func TestConcurrentApplyOnSameSessionIsSerialized(t *testing.T) {
	m, _ := newMachine(t, 50)
	ctx := context.Background()

	s, err := m.Create(ctx, "u", "g", time.Hour)
	require.NoError(t, err)
	_, err = m.Apply(ctx, s.ID, session.EventStart, nil)
	require.NoError(t, err)

	done := make(chan error, 2)
	go func() {
		_, err := m.Apply(ctx, s.ID, session.EventPlaceBet, session.PlaceBetPayload{Nonce: 1})
		done <- err
	}()
	go func() {
		_, err := m.Apply(ctx, s.ID, session.EventPlaceBet, session.PlaceBetPayload{Nonce: 2})
		done <- err
	}()

	var successes int
	for i := 0; i < 2; i++ {
		if err := <-done; err == nil {
			successes++
		}
	}
	// Exactly one PLACE_BET can land since the second attempt finds the
	// session already in ENTROPY_REQUESTED.
	assert.Equal(t, 1, successes)
}
