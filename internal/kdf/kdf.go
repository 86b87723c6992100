// Package kdf provides the SHA-256, HMAC-SHA-256, and HKDF (RFC 5869)
// primitives the rest of the engine builds on. The main entropy pipeline
// uses raw HMAC directly for clarity and speed; this package exists for
// downstream callers that want a standards-compliant derivation (e.g. an
// adjacent key-management layer) or additional hash algorithm choices.
package kdf

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SHA256 returns the SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// HMACSHA256 computes HMAC-SHA256(key, msg).
func HMACSHA256(key, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

// hashFunc resolves an algorithm name to a hash constructor, restricted to
// the set the configuration surface allows HKDF to run over (§6).
func hashFunc(algorithm string) (func() hash.Hash, error) {
	switch algorithm {
	case "", "sha256":
		return sha256.New, nil
	case "sha384":
		return sha512.New384, nil
	case "sha512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("kdf: unsupported hash algorithm %q", algorithm)
	}
}

// HKDFExtract implements the RFC 5869 extract step: PRK = HMAC-Hash(salt, ikm).
// If salt is empty, a string of HashLen zero bytes is used in its place, per
// RFC 5869 §2.2 — HMAC already does this implicitly via its own key padding,
// so this is a thin documented wrapper rather than a distinct code path.
func HKDFExtract(algorithm string, salt, ikm []byte) ([]byte, error) {
	h, err := hashFunc(algorithm)
	if err != nil {
		return nil, err
	}
	mac := hmac.New(h, salt)
	mac.Write(ikm)
	return mac.Sum(nil), nil
}

// HKDFExpand implements the RFC 5869 expand step, producing L bytes of
// output keying material from a pseudorandom key and context info.
func HKDFExpand(algorithm string, prk, info []byte, length int) ([]byte, error) {
	h, err := hashFunc(algorithm)
	if err != nil {
		return nil, err
	}
	hashLen := h().Size()
	if length > 255*hashLen {
		return nil, fmt.Errorf("kdf: requested length %d exceeds 255*hashLen (%d)", length, 255*hashLen)
	}

	reader := hkdf.Expand(h, prk, info)
	okm := make([]byte, length)
	if _, err := io.ReadFull(reader, okm); err != nil {
		return nil, fmt.Errorf("kdf: HKDF expand failed: %w", err)
	}
	return okm, nil
}

// DeriveSeed implements §4.2's deriveSeed convenience function: a full
// extract-then-expand HKDF run tying a house seed, client seed, and nonce
// together into a 32-byte seed under a fixed domain label.
func DeriveSeed(algorithm string, serverSeed, clientSeed []byte, nonce int64) ([]byte, error) {
	ikm := []byte(fmt.Sprintf("%s:%s:%d", serverSeed, clientSeed, nonce))

	h, err := hashFunc(algorithm)
	if err != nil {
		return nil, err
	}
	reader := hkdf.New(h, ikm, nil, []byte("three-body-entropy-seed"))
	okm := make([]byte, 32)
	if _, err := io.ReadFull(reader, okm); err != nil {
		return nil, fmt.Errorf("kdf: HKDF derive failed: %w", err)
	}
	return okm, nil
}
