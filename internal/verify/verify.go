// Package verify implements the offline Verify API (C10, §4.5, §4.10): a
// single pure function, with no I/O, that re-derives every check a Proof
// makes and returns the per-check breakdown. This is the function a
// regulator or auditor re-implements to audit the system.
package verify

import (
	"bytes"
	"reflect"

	domaingrid "github.com/slotmachine/fairness-engine/domain/grid"
	"github.com/slotmachine/fairness-engine/domain/provablyfair"
	"github.com/slotmachine/fairness-engine/internal/commitment"
	"github.com/slotmachine/fairness-engine/internal/grid"
	"github.com/slotmachine/fairness-engine/internal/proof"
)

// Input bundles a Proof with everything an independent verifier needs to
// re-check it. CommitHash is the originally published commitment.
// ServerSecret is optional — without it, signatureValid is reported as
// unverified rather than failed, and does not gate the aggregate.
// GridConfig/SpawnRates are required only when Proof.PositionMode is
// GridMode; ReelCount/SymbolsPerReel only when it is ReelPositionMode.
type Input struct {
	Proof        provablyfair.Proof
	CommitHash   string
	ServerSecret []byte

	GridConfig domaingrid.Config
	SpawnRates domaingrid.SpawnRates

	ReelCount      int
	SymbolsPerReel int
}

// Verify re-evaluates the four checks of §4.5 and returns the aggregate
// plus the per-check breakdown. No check is ever skipped because an
// earlier one failed.
func Verify(input Input) provablyfair.VerificationResult {
	p := input.Proof

	commitmentValid := commitment.VerifyCommit(p.HouseSeed, input.CommitHash)

	// EffectiveClientSeed already holds the literal "test" marker for a
	// test-mode proof, so Mix reproduces the same HMAC regardless of mode.
	expectedEntropy, _, _ := commitment.Mix(p.HouseSeed, p.EffectiveClientSeed)
	entropyValid := bytes.Equal(expectedEntropy, p.CombinedEntropy)

	var signatureValid, signatureChecked bool
	if len(input.ServerSecret) > 0 {
		signatureChecked = true
		expectedSignature := proof.Signature(input.ServerSecret, p.ProofID, input.CommitHash, p.EffectiveClientSeed, p.Nonce)
		signatureValid = bytes.Equal(expectedSignature, p.Signature)
	}

	resultValid := checkResult(p, input)

	valid := commitmentValid && entropyValid && resultValid && (!signatureChecked || signatureValid)

	return provablyfair.VerificationResult{
		Valid:            valid,
		CommitmentValid:  commitmentValid,
		EntropyValid:     entropyValid,
		SignatureValid:   signatureValid,
		SignatureChecked: signatureChecked,
		ResultValid:      resultValid,
	}
}

func checkResult(p provablyfair.Proof, input Input) bool {
	switch p.PositionMode {
	case provablyfair.ReelPositionMode:
		expected, err := grid.ReelPositions(p.CombinedEntropy, p.EffectiveClientSeed, p.Nonce, input.ReelCount, input.SymbolsPerReel)
		if err != nil {
			return false
		}
		return reflect.DeepEqual(expected, p.ReelPositions)
	default:
		expected, err := grid.Fill(p.CombinedEntropy, input.GridConfig, input.SpawnRates)
		if err != nil {
			return false
		}
		return reflect.DeepEqual([][]string(expected), [][]string(p.Grid))
	}
}
