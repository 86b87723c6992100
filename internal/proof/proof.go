// Package proof assembles and later re-derives the Proof record of §3: the
// artifact a player or auditor holds after a reveal, sufficient (together
// with the original commitment and, for full verification, the server
// secret) to check the spin was neither pre- nor post-selected.
package proof

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	domaingrid "github.com/slotmachine/fairness-engine/domain/grid"
	"github.com/slotmachine/fairness-engine/domain/provablyfair"
	"github.com/slotmachine/fairness-engine/internal/apperrors"
	"github.com/slotmachine/fairness-engine/internal/grid"
	"github.com/slotmachine/fairness-engine/internal/kdf"
	"github.com/slotmachine/fairness-engine/internal/physics"
)

// ProofVersion is stamped on every Proof this engine builds. Bump it if the
// canonical signature or proofId formula ever changes.
const ProofVersion = 1

// BuildInput carries everything Build needs beyond what the commit/reveal
// core already produced.
type BuildInput struct {
	CommitHash          string
	HouseSeed           []byte
	ClientSeed          []byte // nil in test mode
	EffectiveClientSeed []byte
	TestMode            bool
	Nonce               int64
	CombinedEntropy     []byte
	ServerSecret        []byte

	GridConfig domaingrid.Config
	SpawnRates domaingrid.SpawnRates
	Mode       provablyfair.PositionMode

	// Only used when Mode == ReelPositionMode.
	ReelCount      int
	SymbolsPerReel int
}

// ProofID computes the first 32 hex characters of
// SHA256(combinedEntropy || ":" || nonce).
func ProofID(combinedEntropy []byte, nonce int64) string {
	msg := fmt.Sprintf("%s:%d", combinedEntropy, nonce)
	sum := sha256.Sum256([]byte(msg))
	return hex.EncodeToString(sum[:])[:32]
}

// Signature computes HMAC-SHA256(serverSecret, proofId:commitHash:
// effectiveClientSeed:nonce), the signature field of §3.
func Signature(serverSecret []byte, proofID, commitHash string, effectiveClientSeed []byte, nonce int64) []byte {
	msg := []byte(fmt.Sprintf("%s:%s:%s:%d", proofID, commitHash, effectiveClientSeed, nonce))
	return kdf.HMACSHA256(serverSecret, msg)
}

// Build assembles a Proof immediately after mixing and mapping, filling
// thetaVector from the combined entropy (the 32-byte value downstream of
// whichever house-seed minting strategy produced this round — crypto draw
// or physics digest — so a theta vector is always derivable regardless of
// minting policy; see DESIGN.md).
func Build(input BuildInput) (provablyfair.Proof, error) {
	if len(input.CombinedEntropy) == 0 {
		return provablyfair.Proof{}, apperrors.NewInvalidInput("combinedEntropy must not be empty")
	}
	if input.Nonce < 0 {
		return provablyfair.Proof{}, apperrors.NewInvalidInput(fmt.Sprintf("nonce must be non-negative, got %d", input.Nonce))
	}

	var digest [32]byte
	copy(digest[:], input.CombinedEntropy)
	theta := physics.ThetaVectorFromDigest(digest)

	proofID := ProofID(input.CombinedEntropy, input.Nonce)
	signature := Signature(input.ServerSecret, proofID, input.CommitHash, input.EffectiveClientSeed, input.Nonce)

	p := provablyfair.Proof{
		ProofID:             proofID,
		CommitHash:          input.CommitHash,
		HouseSeed:           append([]byte(nil), input.HouseSeed...),
		ClientSeed:          input.ClientSeed,
		EffectiveClientSeed: input.EffectiveClientSeed,
		Nonce:               input.Nonce,
		ThetaVector:         theta,
		CombinedEntropy:     append([]byte(nil), input.CombinedEntropy...),
		Signature:           signature,
		TestMode:            input.TestMode,
		Version:             ProofVersion,
		CreatedAt:           time.Now(),
		PositionMode:        input.Mode,
	}

	switch input.Mode {
	case provablyfair.ReelPositionMode:
		positions, err := grid.ReelPositions(input.CombinedEntropy, input.EffectiveClientSeed, input.Nonce, input.ReelCount, input.SymbolsPerReel)
		if err != nil {
			return provablyfair.Proof{}, err
		}
		p.ReelPositions = positions
	default:
		g, err := grid.Fill(input.CombinedEntropy, input.GridConfig, input.SpawnRates)
		if err != nil {
			return provablyfair.Proof{}, err
		}
		p.Grid = g
		p.PositionMode = provablyfair.GridMode
	}

	return p, nil
}
