// Package hashchain implements the pre-generated reverse hash chain of
// §4.6: commit once with h[0], reveal h[1], h[2], … in order, letting any
// holder of a k-length prefix verify it with O(k) hashing and O(1) storage.
package hashchain

import (
	"crypto/sha256"
	"fmt"

	"github.com/slotmachine/fairness-engine/internal/apperrors"
)

// MaxLength bounds chain length to keep minting and verification bounded.
const MaxLength = 10_000_000

// Build computes h[L-1] = SHA256(terminalSeed), then h[i] = SHA256(h[i+1])
// down to h[0]. The caller publishes h[0] as the initial commitment.
func Build(terminalSeed []byte, length int) ([][32]byte, error) {
	if len(terminalSeed) == 0 {
		return nil, apperrors.NewInvalidInput("terminal seed must not be empty")
	}
	if length <= 0 {
		return nil, apperrors.NewInvalidInput(fmt.Sprintf("chain length must be positive, got %d", length))
	}
	if length > MaxLength {
		return nil, apperrors.NewInvalidInput(fmt.Sprintf("chain length %d exceeds maximum %d", length, MaxLength))
	}

	chain := make([][32]byte, length)
	chain[length-1] = sha256.Sum256(terminalSeed)
	for i := length - 2; i >= 0; i-- {
		chain[i] = sha256.Sum256(chain[i+1][:])
	}
	return chain, nil
}

// VerifyResult is the outcome of checking a revealed prefix of a chain.
// InvalidIndex is -1 when the entire prefix verifies.
type VerifyResult struct {
	Valid        bool
	InvalidIndex int
}

// Verify checks a revealed prefix h[0..k] for internal consistency:
// SHA256(h[i]) == h[i-1] for every 1 <= i < len(revealed). revealed[0] is
// the previously-published commitment and is never itself re-derived.
func Verify(revealed [][32]byte) VerifyResult {
	for i := 1; i < len(revealed); i++ {
		sum := sha256.Sum256(revealed[i][:])
		if sum != revealed[i-1] {
			return VerifyResult{Valid: false, InvalidIndex: i}
		}
	}
	return VerifyResult{Valid: true, InvalidIndex: -1}
}
