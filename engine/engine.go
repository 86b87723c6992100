// Package engine wires the commit/reveal core (C1-C7, C9, C10) and the
// session state machine (C8) into the handful of operations a caller
// actually drives a spin through: open a session, place a bet, reveal the
// result, verify a proof. It owns the server secret and the configured
// grid/spawn-rate parameters; everything else is delegated to the
// injected collaborators.
package engine

import (
	"context"
	"encoding/json"
	"time"

	domaingrid "github.com/slotmachine/fairness-engine/domain/grid"
	"github.com/slotmachine/fairness-engine/domain/provablyfair"
	"github.com/slotmachine/fairness-engine/domain/session"
	"github.com/slotmachine/fairness-engine/internal/apperrors"
	"github.com/slotmachine/fairness-engine/internal/cache"
	"github.com/slotmachine/fairness-engine/internal/commitment"
	"github.com/slotmachine/fairness-engine/internal/config"
	"github.com/slotmachine/fairness-engine/internal/hashchain"
	"github.com/slotmachine/fairness-engine/internal/logger"
	"github.com/slotmachine/fairness-engine/internal/pool"
	"github.com/slotmachine/fairness-engine/internal/proof"
	"github.com/slotmachine/fairness-engine/internal/verify"
)

// Engine is the top-level entry point assembling C1-C10 into the
// operations a caller drives a spin through.
type Engine struct {
	cfg      *config.Config
	log      *logger.Logger
	cache    cache.Cache
	pool     *pool.Pool
	sessions session.Service

	serverSecret []byte
	gridConfig   domaingrid.Config
	spawnRates   domaingrid.SpawnRates
}

// New assembles an Engine from its already-constructed collaborators. The
// caller is responsible for calling pool.Start before handing the Pool
// here, and for closing it on shutdown.
func New(cfg *config.Config, log *logger.Logger, c cache.Cache, p *pool.Pool, sessions session.Service) *Engine {
	return &Engine{
		cfg:          cfg,
		log:          log,
		cache:        c,
		pool:         p,
		sessions:     sessions,
		serverSecret: []byte(cfg.ProvablyFair.ServerSecret),
		gridConfig: domaingrid.Config{
			ReelCount:          cfg.Grid.ReelCount,
			SymbolsPerReel:     cfg.Grid.SymbolsPerReel,
			VisibleRows:        cfg.Grid.VisibleRows,
			BufferRows:         cfg.Grid.BufferRows,
			Symbols:            cfg.Grid.Symbols,
			GoldAllowedColumns: cfg.Grid.GoldAllowedColumns,
		},
		spawnRates: domaingrid.SpawnRates{
			WildChance:  cfg.SpawnRates.WildChance,
			BonusChance: cfg.SpawnRates.BonusChance,
			GoldChance:  cfg.SpawnRates.GoldChance,
		},
	}
}

func commitmentCacheKey(sessionID string) string {
	return "commitment:" + sessionID
}

// CreateSession opens a fresh session, draws a commitment from the pool,
// and transitions it from INIT to AWAITING_BET, publishing the
// commitment. The commitment is cached for fast lookup at reveal time and
// also folded into the session's own record (§4.9: "the commitment's
// houseSeed and associated theta must be recomputable from the session
// record, so the cache is strictly a latency optimization").
func (e *Engine) CreateSession(ctx context.Context, userID, gameID string) (*session.Session, provablyfair.Commitment, error) {
	s, err := e.sessions.Create(ctx, userID, gameID, e.cfg.Session.SessionTTL)
	if err != nil {
		return nil, provablyfair.Commitment{}, err
	}

	c, err := e.pool.Take(ctx)
	if err != nil {
		return nil, provablyfair.Commitment{}, err
	}

	if encoded, encErr := encodeCommitment(c); encErr == nil {
		_ = e.cache.Set(ctx, commitmentCacheKey(s.ID), encoded, e.cfg.Cache.CommitmentTTL)
	}

	s, err = e.sessions.Apply(ctx, s.ID, session.EventStart, session.CustomPayload{
		Custom: map[string]any{"commitment": c},
	})
	if err != nil {
		return nil, provablyfair.Commitment{}, err
	}

	return s, c, nil
}

// PlaceBet records the bet amount, currency, client seed, and nonce
// against the session and advances it to ENTROPY_REQUESTED.
func (e *Engine) PlaceBet(ctx context.Context, sessionID string, betAmount float64, currency string, clientSeed []byte, nonce int64) (*session.Session, error) {
	return e.sessions.Apply(ctx, sessionID, session.EventPlaceBet, session.PlaceBetPayload{
		BetAmount:  betAmount,
		Currency:   currency,
		ClientSeed: clientSeed,
		Nonce:      nonce,
	})
}

// RevealSpin mixes the session's stored client seed against the
// committed house seed, builds the Proof, and drives the session through
// ENTROPY_RECEIVED and SPIN_COMPLETE. A second call against an
// already-revealed session fails with AlreadyRevealed rather than
// InvalidTransition, matching §7's distinct error kind.
func (e *Engine) RevealSpin(ctx context.Context, sessionID string) (*provablyfair.Proof, error) {
	s, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if s.State != session.StateEntropyRequested {
		if s.Data.LastResult != nil {
			return nil, apperrors.Wrap(apperrors.AlreadyRevealed, "round already revealed", provablyfair.ErrAlreadyRevealed)
		}
		return nil, apperrors.NewInvalidTransition("session is not awaiting a reveal")
	}

	commitHash, houseSeed, err := e.loadCommitment(ctx, s)
	if err != nil {
		return nil, err
	}

	combinedEntropy, effectiveClientSeed, testMode := commitment.Mix(houseSeed, s.Data.ClientSeed)

	p, err := proof.Build(proof.BuildInput{
		CommitHash:          commitHash,
		HouseSeed:           houseSeed,
		ClientSeed:          s.Data.ClientSeed,
		EffectiveClientSeed: effectiveClientSeed,
		TestMode:            testMode,
		Nonce:               s.Data.Nonce,
		CombinedEntropy:     combinedEntropy,
		ServerSecret:        e.serverSecret,
		GridConfig:          e.gridConfig,
		SpawnRates:          e.spawnRates,
		Mode:                provablyfair.GridMode,
	})
	if err != nil {
		return nil, err
	}

	var digest [32]byte
	copy(digest[:], combinedEntropy)

	if _, err := e.sessions.Apply(ctx, sessionID, session.EventEntropyReceived, session.EntropyReceivedPayload{EntropyDigest: digest}); err != nil {
		return nil, err
	}
	if _, err := e.sessions.Apply(ctx, sessionID, session.EventSpinComplete, session.SpinCompletePayload{Result: &p}); err != nil {
		return nil, err
	}

	_ = e.cache.Delete(ctx, commitmentCacheKey(sessionID))

	return &p, nil
}

// CancelSession submits CANCEL against a session, which is legal from any
// non-terminal state and always produces a terminal result (§5).
func (e *Engine) CancelSession(ctx context.Context, sessionID string) (*session.Session, error) {
	return e.sessions.Apply(ctx, sessionID, session.EventCancel, nil)
}

// VerifyProof re-derives every check of §4.5 against p, supplying the
// engine's own server secret and configured grid/spawn parameters so a
// caller only needs the proof and the originally published commitHash.
func (e *Engine) VerifyProof(p provablyfair.Proof, commitHash string) provablyfair.VerificationResult {
	return verify.Verify(verify.Input{
		Proof:          p,
		CommitHash:     commitHash,
		ServerSecret:   e.serverSecret,
		GridConfig:     e.gridConfig,
		SpawnRates:     e.spawnRates,
		ReelCount:      e.cfg.Grid.ReelCount,
		SymbolsPerReel: e.cfg.Grid.SymbolsPerReel,
	})
}

// BuildHashChain is a thin passthrough to the hash-chain engine (C6),
// exposed here so callers reach every provably-fair primitive through one
// entry point.
func (e *Engine) BuildHashChain(terminalSeed []byte, length int) ([][32]byte, error) {
	return hashchain.Build(terminalSeed, length)
}

// VerifyHashChain is a thin passthrough to hashchain.Verify.
func (e *Engine) VerifyHashChain(revealed [][32]byte) hashchain.VerifyResult {
	return hashchain.Verify(revealed)
}

// loadCommitment resolves the commitment backing s, preferring the cache
// for latency and falling back to the session record's own copy on a
// miss (§4.9).
func (e *Engine) loadCommitment(ctx context.Context, s *session.Session) (commitHash string, houseSeed []byte, err error) {
	if raw, ok, getErr := e.cache.Get(ctx, commitmentCacheKey(s.ID)); getErr == nil && ok {
		if c, decErr := decodeCommitment(raw); decErr == nil {
			return c.CommitHash, c.HouseSeed, nil
		}
	}

	if s.Data.Custom != nil {
		if v, ok := s.Data.Custom["commitment"]; ok {
			if c, ok := v.(provablyfair.Commitment); ok {
				return c.CommitHash, c.HouseSeed, nil
			}
		}
	}

	return "", nil, apperrors.Wrap(apperrors.NotFound, "commitment not found in cache or session record", provablyfair.ErrCommitmentNotFound)
}

type cachedCommitment struct {
	CommitHash string    `json:"commit_hash"`
	HouseSeed  []byte    `json:"house_seed"`
	CreatedAt  time.Time `json:"created_at"`
}

func encodeCommitment(c provablyfair.Commitment) ([]byte, error) {
	return json.Marshal(cachedCommitment{
		CommitHash: c.CommitHash,
		HouseSeed:  c.HouseSeed,
		CreatedAt:  c.CreatedAt,
	})
}

func decodeCommitment(raw []byte) (provablyfair.Commitment, error) {
	var cc cachedCommitment
	if err := json.Unmarshal(raw, &cc); err != nil {
		return provablyfair.Commitment{}, err
	}
	return provablyfair.Commitment{
		CommitHash: cc.CommitHash,
		HouseSeed:  cc.HouseSeed,
		CreatedAt:  cc.CreatedAt,
	}, nil
}
