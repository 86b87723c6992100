// Package commitment implements the commit/reveal core (§4.3): committing
// to a house seed, verifying a commitment, and mixing a house seed with a
// client seed into the combined entropy that drives everything downstream.
package commitment

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/slotmachine/fairness-engine/domain/provablyfair"
	"github.com/slotmachine/fairness-engine/internal/apperrors"
	"github.com/slotmachine/fairness-engine/internal/kdf"
)

// testModeMarker is the literal message mixed and signed in place of a
// client seed when the caller reveals without one (§3 Client Seed, §4.5
// entropyValid). §4.3's prose also describes a timestamp-salted variant;
// this engine standardizes on the fixed literal marker so that
// entropyValid and signatureValid recompute identically for every verifier
// (documented as an Open-Question resolution in DESIGN.md).
var testModeMarker = []byte("test")

// NewHouseSeed draws a fresh 32-byte house seed from a cryptographic
// source. The commitment pool may instead mint one via the physics
// integrator's digest (§9 Open Questions permits either).
func NewHouseSeed() ([]byte, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, apperrors.NewInternal("failed to draw house seed", err)
	}
	return seed, nil
}

// Commit produces the commitment triple for a house seed: commitHash =
// SHA256(houseSeed), recorded with the current time.
func Commit(houseSeed []byte) (provablyfair.Commitment, error) {
	if len(houseSeed) == 0 {
		return provablyfair.Commitment{}, apperrors.NewInvalidInput("house seed must not be empty")
	}
	sum := sha256.Sum256(houseSeed)
	return provablyfair.Commitment{
		CommitHash: hex.EncodeToString(sum[:]),
		HouseSeed:  append([]byte(nil), houseSeed...),
		CreatedAt:  time.Now(),
	}, nil
}

// VerifyCommit reports whether houseSeed is the preimage of commitHash.
func VerifyCommit(houseSeed []byte, commitHash string) bool {
	sum := sha256.Sum256(houseSeed)
	got := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(got), []byte(commitHash)) == 1
}

// Mix computes the combined entropy from a house seed and an optional
// client seed. A nil or empty clientSeed puts the round in test mode: the
// effective message mixed (and later signed) is the literal "test" marker,
// distinguishing test-mode proofs from production ones (§3).
func Mix(houseSeed, clientSeed []byte) (combinedEntropy, effectiveClientSeed []byte, testMode bool) {
	testMode = len(clientSeed) == 0
	if testMode {
		effectiveClientSeed = testModeMarker
	} else {
		effectiveClientSeed = clientSeed
	}
	combinedEntropy = kdf.HMACSHA256(houseSeed, effectiveClientSeed)
	return combinedEntropy, effectiveClientSeed, testMode
}

// Round tracks a single commitment through at most one reveal, enforcing
// the reveal-once invariant of §4.3/§7.
type Round struct {
	mu         sync.Mutex
	commitment provablyfair.Commitment
	revealed   bool
}

// NewRound wraps a Commitment in a fresh, unrevealed Round.
func NewRound(c provablyfair.Commitment) *Round {
	return &Round{commitment: c}
}

// Commitment returns the round's commitment, safe to publish before reveal.
func (r *Round) Commitment() provablyfair.Commitment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commitment
}

// Reveal mixes clientSeed into the round's house seed exactly once. A
// second call returns ErrAlreadyRevealed wrapped as an apperrors.Tampered-
// free AlreadyRevealed kind.
func (r *Round) Reveal(clientSeed []byte) (combinedEntropy, effectiveClientSeed []byte, testMode bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.revealed {
		return nil, nil, false, apperrors.Wrap(apperrors.AlreadyRevealed, "round already revealed", provablyfair.ErrAlreadyRevealed)
	}
	r.revealed = true

	combinedEntropy, effectiveClientSeed, testMode = Mix(r.commitment.HouseSeed, clientSeed)
	return combinedEntropy, effectiveClientSeed, testMode, nil
}

// CreateRound is the convenience composing all three operations in one
// call: mint a house seed, commit to it, and reveal immediately against
// clientSeed. It returns the commitment (publishable to the client before
// the spin, in principle) and the combined entropy driving the mapping.
// Unlike the two-phase pool-backed flow, a round created this way is
// already revealed on return — it exists for callers with no use for a
// pre-spin commit/reveal gap (e.g. test-mode single-shot verification).
func CreateRound(clientSeed []byte, nonce int64) (provablyfair.Commitment, []byte, []byte, bool, error) {
	if nonce < 0 {
		return provablyfair.Commitment{}, nil, nil, false, apperrors.NewInvalidInput(fmt.Sprintf("nonce must be non-negative, got %d", nonce))
	}

	houseSeed, err := NewHouseSeed()
	if err != nil {
		return provablyfair.Commitment{}, nil, nil, false, err
	}

	c, err := Commit(houseSeed)
	if err != nil {
		return provablyfair.Commitment{}, nil, nil, false, err
	}

	round := NewRound(c)
	combined, effective, testMode, err := round.Reveal(clientSeed)
	if err != nil {
		return provablyfair.Commitment{}, nil, nil, false, err
	}

	return c, combined, effective, testMode, nil
}
