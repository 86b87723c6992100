package kdf

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA256ZeroBytes(t *testing.T) {
	zero := make([]byte, 32)
	sum := SHA256(zero)
	assert.Equal(t, "66687aadf862bd776c8fc18b8e9f8e20089714856ee233b3902a591d0d5f2925", hex.EncodeToString(sum[:]))
}

func TestHMACSHA256Deterministic(t *testing.T) {
	a := HMACSHA256([]byte("key"), []byte("msg"))
	b := HMACSHA256([]byte("key"), []byte("msg"))
	assert.Equal(t, a, b)

	c := HMACSHA256([]byte("key"), []byte("other"))
	assert.NotEqual(t, a, c)
}

func TestHKDFExpandRejectsOversizedLength(t *testing.T) {
	prk, err := HKDFExtract("sha256", nil, []byte("ikm"))
	require.NoError(t, err)

	_, err = HKDFExpand("sha256", prk, []byte("info"), 255*32+1)
	assert.Error(t, err)
}

func TestHKDFExpandWithinLimitSucceeds(t *testing.T) {
	prk, err := HKDFExtract("sha256", []byte("salt"), []byte("ikm"))
	require.NoError(t, err)

	okm, err := HKDFExpand("sha256", prk, []byte("info"), 255*32)
	require.NoError(t, err)
	assert.Len(t, okm, 255*32)
}

func TestDeriveSeedIsDeterministicAndDependsOnAllInputs(t *testing.T) {
	a, err := DeriveSeed("sha256", []byte("house"), []byte("alice"), 1)
	require.NoError(t, err)
	b, err := DeriveSeed("sha256", []byte("house"), []byte("alice"), 1)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	c, err := DeriveSeed("sha256", []byte("house"), []byte("alice"), 2)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	d, err := DeriveSeed("sha256", []byte("house"), []byte("bob"), 1)
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}

func TestDeriveSeedSupportsAllConfiguredAlgorithms(t *testing.T) {
	for _, alg := range []string{"sha256", "sha384", "sha512"} {
		_, err := DeriveSeed(alg, []byte("house"), []byte("client"), 1)
		require.NoError(t, err, alg)
	}

	_, err := DeriveSeed("md5", []byte("house"), []byte("client"), 1)
	assert.Error(t, err)
}
