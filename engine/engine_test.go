package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotmachine/fairness-engine/domain/session"
	"github.com/slotmachine/fairness-engine/internal/apperrors"
	"github.com/slotmachine/fairness-engine/internal/cache"
	"github.com/slotmachine/fairness-engine/internal/config"
	"github.com/slotmachine/fairness-engine/internal/pool"
	"github.com/slotmachine/fairness-engine/internal/sessionfsm"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()

	cfg := &config.Config{}
	cfg.ProvablyFair.ServerSecret = "test-secret"
	cfg.Grid = config.GridConfig{
		ReelCount:          5,
		SymbolsPerReel:     32,
		VisibleRows:        6,
		BufferRows:         4,
		Symbols:            []string{"wild", "bonus", "A", "K", "Q", "J"},
		GoldAllowedColumns: []int{0, 1, 2, 3, 4},
	}
	cfg.SpawnRates = config.SpawnRatesConfig{WildChance: 0.03, BonusChance: 0.02, GoldChance: 0.05}
	cfg.Session = config.SessionConfig{SessionTTL: time.Hour, MaxHistorySize: 50}
	cfg.Cache = config.CacheConfig{CommitmentTTL: 5 * time.Minute}
	cfg.Pool = config.PoolConfig{TargetSize: 2}

	c, err := cache.NewRistrettoCache()
	require.NoError(t, err)
	t.Cleanup(c.Close)

	p := pool.New(cfg.Pool.TargetSize, CryptoMint, nil)
	p.Start(context.Background())
	t.Cleanup(p.Close)

	store := session.NewMemoryStore()
	machine := sessionfsm.New(store, cfg.Session.MaxHistorySize, nil)

	return New(cfg, nil, c, p, machine)
}

func TestFullSpinLifecycle(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	s, commit, err := e.CreateSession(ctx, "user-1", "game-1")
	require.NoError(t, err)
	assert.Equal(t, session.StateAwaitingBet, s.State)
	assert.NotEmpty(t, commit.CommitHash)

	s, err = e.PlaceBet(ctx, s.ID, 2.5, "USD", []byte("alice-seed"), 7)
	require.NoError(t, err)
	assert.Equal(t, session.StateEntropyRequested, s.State)

	p, err := e.RevealSpin(ctx, s.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ProofID)
	assert.Len(t, p.Grid, 5)

	verification := e.VerifyProof(*p, commit.CommitHash)
	assert.True(t, verification.Valid)
	assert.True(t, verification.CommitmentValid)
	assert.True(t, verification.EntropyValid)
	assert.True(t, verification.SignatureChecked)
	assert.True(t, verification.SignatureValid)
	assert.True(t, verification.ResultValid)
}

func TestRevealTwiceFailsAlreadyRevealed(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	s, _, err := e.CreateSession(ctx, "user-1", "game-1")
	require.NoError(t, err)
	s, err = e.PlaceBet(ctx, s.ID, 1, "USD", []byte("seed"), 1)
	require.NoError(t, err)

	_, err = e.RevealSpin(ctx, s.ID)
	require.NoError(t, err)

	_, err = e.RevealSpin(ctx, s.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.New(apperrors.AlreadyRevealed, ""))
}

func TestVerifyProofDetectsTampering(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	s, commit, err := e.CreateSession(ctx, "user-1", "game-1")
	require.NoError(t, err)
	s, err = e.PlaceBet(ctx, s.ID, 1, "USD", []byte("seed"), 1)
	require.NoError(t, err)

	p, err := e.RevealSpin(ctx, s.ID)
	require.NoError(t, err)

	tampered := *p
	tampered.Nonce = p.Nonce + 1

	verification := e.VerifyProof(tampered, commit.CommitHash)
	assert.False(t, verification.Valid)
	assert.False(t, verification.SignatureValid)
}

func TestCancelSessionIsAlwaysTerminal(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()

	s, _, err := e.CreateSession(ctx, "user-1", "game-1")
	require.NoError(t, err)

	s, err = e.CancelSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StateCancelled, s.State)
}

func TestBuildAndVerifyHashChainRoundTrip(t *testing.T) {
	e := testEngine(t)

	chain, err := e.BuildHashChain([]byte("terminal-seed"), 5)
	require.NoError(t, err)
	require.Len(t, chain, 5)

	result := e.VerifyHashChain(chain)
	assert.True(t, result.Valid)
	assert.Equal(t, -1, result.InvalidIndex)
}
