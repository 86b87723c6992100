package physics

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainphysics "github.com/slotmachine/fairness-engine/domain/physics"
)

func sampleConfig() domainphysics.Configuration {
	return domainphysics.Configuration{
		Bodies: [3]domainphysics.Body{
			{Mass: 1.0, Position: domainphysics.Vector3{X: 1, Y: 0, Z: 0}, Velocity: domainphysics.Vector3{X: 0, Y: 0.3, Z: 0}},
			{Mass: 1.0, Position: domainphysics.Vector3{X: -1, Y: 0, Z: 0}, Velocity: domainphysics.Vector3{X: 0, Y: -0.3, Z: 0}},
			{Mass: 1.0, Position: domainphysics.Vector3{X: 0, Y: 1, Z: 0}, Velocity: domainphysics.Vector3{X: -0.3, Y: 0, Z: 0}},
		},
		G:         1.0,
		Softening: 0.01,
	}
}

func TestSimulateIsBitExactReproducible(t *testing.T) {
	cfg := sampleConfig()
	a := Simulate(cfg, 3.0, 0.01)
	b := Simulate(cfg, 3.0, 0.01)
	assert.Equal(t, a, b)
}

func TestDigestReferentiallyTransparent(t *testing.T) {
	cfg := sampleConfig()
	state := Simulate(cfg, 3.0, 0.01)

	d1 := Digest(state, "abcdef0123456789")
	d2 := Digest(state, "abcdef0123456789")
	assert.Equal(t, d1, d2)

	d3 := Digest(state, "0000000000000000")
	assert.NotEqual(t, d1, d3)
}

func TestCanonicalizeFormat(t *testing.T) {
	state := domainphysics.FinalState{
		Bodies: [3]domainphysics.Body{
			{Position: domainphysics.Vector3{X: 1, Y: 2, Z: 3}, Velocity: domainphysics.Vector3{X: 4, Y: 5, Z: 6}},
			{},
			{},
		},
	}
	canonical := Canonicalize(state)
	parts := splitColon(canonical)
	require.Len(t, parts, 18)
	for _, p := range parts {
		assert.Regexp(t, `^-?\d\.\d{14}e[+-]\d{2,}$`, p)
	}
}

func splitColon(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func TestThetaVectorInRange(t *testing.T) {
	digest := [32]byte{}
	for i := range digest {
		digest[i] = byte(i * 7)
	}
	theta := ThetaVectorFromDigest(digest)
	for _, angle := range theta {
		assert.GreaterOrEqual(t, angle, 0.0)
		assert.Less(t, angle, 2*math.Pi)
	}
}

func TestNewSimulationIDFormat(t *testing.T) {
	id, err := NewSimulationID()
	require.NoError(t, err)
	assert.Len(t, id, 16)
	_, err = hex.DecodeString(id)
	assert.NoError(t, err)
}

func TestEnergyDriftIsFiniteAndInformational(t *testing.T) {
	cfg := sampleConfig()
	state := Simulate(cfg, 3.0, 0.01)
	assert.False(t, math.IsNaN(state.EnergyDrift))
	assert.False(t, math.IsInf(state.EnergyDrift, 0))
}

func TestRandomConfigurationIsWellFormedAndUnpredictable(t *testing.T) {
	a, err := RandomConfiguration()
	require.NoError(t, err)
	b, err := RandomConfiguration()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	for _, body := range a.Bodies {
		assert.Greater(t, body.Mass, 0.0)
	}
	assert.Equal(t, 1.0, a.G)
	assert.Equal(t, 0.01, a.Softening)

	fs := Simulate(a, 1.0, 0.1)
	assert.False(t, math.IsNaN(fs.Bodies[0].Position.X))
}
