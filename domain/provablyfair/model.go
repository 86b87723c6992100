// Package provablyfair defines the data types of the commit/reveal
// protocol: the Commitment the pool hands out before a spin, and the Proof
// a reveal emits and any third party can re-check offline.
package provablyfair

import "time"

// Commitment is the triple published before a spin: a hash the house is
// bound to, the secret behind it, and when it was minted. houseSeed is
// either drawn from a cryptographic source or computed as the entropy
// digest of a physics run from an unpredictable base seed (§9 Open
// Questions — the engine permits either and leaves the choice to the
// minting strategy passed into the pool).
//
// Lifetime: created at pool fill, consumed at first reveal referencing its
// round, destroyed immediately after. A Commitment is owned by the pool
// until consumed; on reveal its HouseSeed is copied into the emitted Proof
// and the pool entry is dropped, never reused.
type Commitment struct {
	CommitHash string
	HouseSeed  []byte
	CreatedAt  time.Time
}

// Round is the plain data shape of a round's bookkeeping: the Commitment
// plus whether it has already been revealed. CreateRound and the
// reveal-once check use commitment.Round, not this type; nothing in the
// engine reads or writes this struct.
type Round struct {
	Commitment Commitment
	Revealed   bool
}

// Proof is the immutable record a reveal emits (§3). ClientSeed is nil in
// test mode, in which case EffectiveClientSeed holds the literal "test"
// marker used for mixing and signing.
type Proof struct {
	ProofID             string
	CommitHash          string
	HouseSeed           []byte
	ClientSeed          []byte // nil when TestMode
	EffectiveClientSeed []byte // the bytes actually mixed/signed: ClientSeed, or "test"
	Nonce               int64
	ThetaVector         [3]float64
	CombinedEntropy     []byte
	Signature           []byte
	TestMode            bool
	Version             int
	CreatedAt           time.Time
	PositionMode        PositionMode
	Grid                [][]string // populated when PositionMode == GridMode
	ReelPositions       []int      // populated when PositionMode == ReelPositionMode
}

// PositionMode selects which of the two mapping algorithms in §4.4 produced
// this Proof's outcome. Both are always available; the caller picks.
type PositionMode string

const (
	GridMode         PositionMode = "grid"
	ReelPositionMode PositionMode = "reel_position"
)

// VerificationResult is the per-check breakdown §4.5/§4.10 require:
// individual checks are never swallowed, even when the aggregate fails.
type VerificationResult struct {
	Valid            bool
	CommitmentValid  bool
	EntropyValid     bool
	SignatureValid   bool
	SignatureChecked bool // false when the verifier has no server secret to check against
	ResultValid      bool
}
