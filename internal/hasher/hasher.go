package hasher

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const (
	// SaltLength is the fixed length of a per-user salt.
	SaltLength = 8
	// TokenLength is the byte length of a minted session token before hex
	// encoding.
	TokenLength = 16
)

// saltAlphabet matches the stored salts already in the users table; new
// salts draw from it with crypto/rand instead of a PRNG.
const saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Digest computes the stored password form: the hex SHA-256 of the salt
// concatenated with the plaintext, salt first. The same inputs always
// produce the same digest, so it can be compared against persisted rows.
func Digest(salt, plaintext string) string {
	sum := sha256.Sum256([]byte(salt + plaintext))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest and compares it to the expected value in
// constant time.
func Verify(salt, plaintext, expected string) bool {
	computed := Digest(salt, plaintext)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expected)) == 1
}

// NewSalt returns a fixed-length random salt over the legacy alphabet.
func NewSalt() (string, error) {
	buf := make([]byte, SaltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	out := make([]byte, SaltLength)
	for i, b := range buf {
		out[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(out), nil
}

// NewToken returns an opaque hex session token.
func NewToken() (string, error) {
	buf := make([]byte, TokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
