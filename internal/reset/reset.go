// Package reset generates and encodes the one-time secrets used by the
// password-reset flow. Secrets are 256-bit random values; only their
// SHA-256 digest is ever persisted.
package reset

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// SecretSize is the raw secret length in bytes (256 bits of entropy).
const SecretSize = 32

// Secret is a freshly generated reset secret. It exists in memory only
// between generation and out-of-band delivery.
type Secret [SecretSize]byte

// NewSecret draws a secret from crypto/rand.
func NewSecret() (Secret, error) {
	var s Secret
	_, err := rand.Read(s[:])
	return s, err
}

// Digest returns the SHA-256 digest stored at rest. A fast, unsalted hash
// is sufficient here: the input is high-entropy random, not a password.
func (s Secret) Digest() [32]byte {
	return sha256.Sum256(s[:])
}

// Encode renders the secret for transport.
func (s Secret) Encode() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(s[:])
}

// Decode parses a transported secret back into its raw form.
func Decode(encoded string) (Secret, error) {
	var s Secret

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return s, err
	}
	if len(raw) != SecretSize {
		return s, errors.New("invalid reset secret size")
	}

	copy(s[:], raw)
	return s, nil
}

// DigestOf is a convenience for computing the at-rest digest of an encoded
// secret without keeping the intermediate around.
func DigestOf(encoded string) ([32]byte, error) {
	s, err := Decode(encoded)
	if err != nil {
		return [32]byte{}, err
	}
	return s.Digest(), nil
}
