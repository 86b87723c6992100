package proof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaingrid "github.com/slotmachine/fairness-engine/domain/grid"
	"github.com/slotmachine/fairness-engine/domain/provablyfair"
)

func testGridConfig() domaingrid.Config {
	return domaingrid.Config{
		ReelCount:          5,
		SymbolsPerReel:     20,
		VisibleRows:        6,
		BufferRows:         4,
		Symbols:            []string{"wild", "bonus", "A", "K", "Q", "J"},
		GoldAllowedColumns: []int{0, 1, 2, 3, 4},
	}
}

func TestProofIDDeterministic(t *testing.T) {
	entropy := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	a := ProofID(entropy, 7)
	b := ProofID(entropy, 7)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	c := ProofID(entropy, 8)
	assert.NotEqual(t, a, c)
}

func TestSignatureDeterministic(t *testing.T) {
	secret := []byte("server-secret")
	a := Signature(secret, "proof1", "commit1", []byte("alice"), 1)
	b := Signature(secret, "proof1", "commit1", []byte("alice"), 1)
	assert.Equal(t, a, b)

	c := Signature(secret, "proof1", "commit1", []byte("bob"), 1)
	assert.NotEqual(t, a, c)
}

func TestBuildGridModeProducesProof(t *testing.T) {
	entropy := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	input := BuildInput{
		CommitHash:          "deadbeef",
		HouseSeed:           []byte("house-seed"),
		ClientSeed:          []byte("alice"),
		EffectiveClientSeed: []byte("alice"),
		Nonce:               1,
		CombinedEntropy:     entropy,
		ServerSecret:        []byte("server-secret"),
		GridConfig:          testGridConfig(),
		SpawnRates:          domaingrid.SpawnRates{WildChance: 0.03, BonusChance: 0.02, GoldChance: 0.05},
		Mode:                provablyfair.GridMode,
	}

	p, err := Build(input)
	require.NoError(t, err)
	assert.Equal(t, provablyfair.GridMode, p.PositionMode)
	assert.Len(t, p.Grid, 5)
	assert.NotEmpty(t, p.Signature)
	assert.Equal(t, ProofVersion, p.Version)
}

func TestBuildReelPositionModeProducesProof(t *testing.T) {
	entropy := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	input := BuildInput{
		CommitHash:          "deadbeef",
		HouseSeed:           []byte("house-seed"),
		ClientSeed:          []byte("alice"),
		EffectiveClientSeed: []byte("alice"),
		Nonce:               1,
		CombinedEntropy:     entropy,
		ServerSecret:        []byte("server-secret"),
		Mode:                provablyfair.ReelPositionMode,
		ReelCount:           5,
		SymbolsPerReel:      20,
	}

	p, err := Build(input)
	require.NoError(t, err)
	assert.Equal(t, provablyfair.ReelPositionMode, p.PositionMode)
	assert.Len(t, p.ReelPositions, 5)
	for _, pos := range p.ReelPositions {
		assert.GreaterOrEqual(t, pos, 0)
		assert.Less(t, pos, 20)
	}
}

func TestBuildRejectsEmptyCombinedEntropy(t *testing.T) {
	_, err := Build(BuildInput{Nonce: 1})
	assert.Error(t, err)
}

func TestBuildRejectsNegativeNonce(t *testing.T) {
	_, err := Build(BuildInput{CombinedEntropy: []byte("x"), Nonce: -1})
	assert.Error(t, err)
}
