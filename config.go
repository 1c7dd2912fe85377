package authcore

import (
	"errors"
	"time"
)

// Config is the static engine configuration. It is established once at
// startup, validated in [Builder.Build], and never mutated afterwards.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Reset    ResetConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls session-token issuance and verification.
type TokenConfig struct {
	// Secret is the symmetric HS256 signing key. Required; there is no
	// safe default in production.
	Secret []byte
	// TTL is the session-token lifetime.
	TTL time.Duration
	// Issuer, when set, is stamped on and required of every token.
	Issuer string
	// Leeway tolerates clock skew between processes sharing the secret.
	Leeway time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig carries the Argon2id cost parameters and the pepper.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// Pepper is appended to every plaintext before hashing. May be empty.
	Pepper string
}

/*
====================================
RESET CONFIG
====================================
*/

// ResetConfig controls the password-reset state machine.
type ResetConfig struct {
	// TTL is the window in which an issued secret can be consumed.
	TTL time.Duration
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns development-grade defaults: 30-minute tokens,
// 15-minute reset windows, and Argon2id parameters acceptable for dev
// hardware. The token secret has no default and must be supplied.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:    30 * time.Minute,
			Leeway: 30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Reset: ResetConfig{
			TTL: 15 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks cross-field invariants the leaf packages cannot see.
// Leaf-level parameter minimums are enforced again by the respective
// constructors during Build.
func (c Config) Validate() error {
	if len(c.Token.Secret) == 0 {
		return errors.New("token secret is required")
	}
	if c.Token.TTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.Reset.TTL <= 0 {
		return errors.New("reset TTL must be positive")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
