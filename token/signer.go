package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalid is returned for every verification failure: bad signature,
// malformed token, wrong algorithm, or expiry. One sentinel on purpose.
var ErrInvalid = errors.New("invalid session token")

const minSecretBytes = 32

// Config holds the signing secret and token parameters. Set once at
// construction; the Signer never mutates it.
type Config struct {
	// Secret is the symmetric HS256 key. Required, >= 32 bytes.
	Secret []byte
	// TTL is the lifetime of issued tokens.
	TTL time.Duration
	// Issuer, when non-empty, is stamped on issued tokens and required
	// during verification.
	Issuer string
	// Leeway tolerates small clock skew between issuer and verifier.
	// Capped at 2 minutes.
	Leeway time.Duration
}

// Claims is the decoded payload of a verified session token.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies session tokens. Safe for concurrent use.
type Signer struct {
	config Config
}

// NewSigner validates cfg and returns a Signer.
func NewSigner(cfg Config) (*Signer, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, errors.New("signing secret must be at least 32 bytes")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Signer{config: cfg}, nil
}

// Sign issues a token asserting subject (credential ID) and email, expiring
// TTL from now.
func (s *Signer) Sign(subject, email string) (string, error) {
	now := time.Now()

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
			Issuer:    s.config.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
}

// Verify parses and validates tok. Every failure mode maps to ErrInvalid;
// callers needing the distinction for debugging get nothing, by contract.
func (s *Signer) Verify(tok string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(s.config.Leeway))
	}
	if s.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tok, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.config.Secret, nil
	})
	if err != nil {
		return nil, ErrInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalid
	}

	return claims, nil
}
