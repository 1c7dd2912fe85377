package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

// ErrMalformedDigest is returned by Verify when the stored digest cannot be
// parsed. Callers that unify failure modes should treat it as a mismatch.
var ErrMalformedDigest = errors.New("malformed password digest")

// Config holds the Argon2id cost parameters and the server pepper.
// Configure once at startup; a Hasher never mutates its config.
type Config struct {
	// Memory is the Argon2id memory cost in KB.
	Memory uint32
	// Time is the iteration count. Raise it until a single Hash call costs
	// on the order of 100ms on production hardware.
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// Pepper is a server-side secret appended to every plaintext before
	// derivation. May be empty. Never stored with the digest.
	Pepper string
}

// DefaultConfig returns development-grade parameters. Production deployments
// are expected to tune Memory/Time upward and set a pepper.
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher derives and verifies peppered Argon2id digests. Safe for
// concurrent use.
type Hasher struct {
	config Config
}

type parsedDigest struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

// NewHasher validates cfg against hard minimums and returns a Hasher.
func NewHasher(cfg Config) (*Hasher, error) {
	if cfg.Memory < minMemoryKB {
		return nil, errors.New("password memory must be >= 8192 KB")
	}
	if cfg.Time < minTimeCost {
		return nil, errors.New("password time must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return nil, errors.New("password parallelism must be >= 1")
	}
	if cfg.SaltLength < minSaltLength {
		return nil, errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return nil, errors.New("password key length must be >= 16")
	}

	return &Hasher{config: cfg}, nil
}

// Hash derives a fresh salted digest of plaintext+pepper and returns it in
// PHC string format.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey(
		h.peppered(plaintext),
		salt,
		h.config.Time,
		h.config.Memory,
		h.config.Parallelism,
		h.config.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.config.Memory,
		h.config.Time,
		h.config.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes the digest of plaintext+pepper with the parameters
// embedded in encoded and compares in constant time. A digest that cannot
// be parsed yields (false, ErrMalformedDigest), never a panic.
func (h *Hasher) Verify(plaintext, encoded string) (bool, error) {
	parsed, err := parsePHC(encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}

	computed := argon2.IDKey(
		h.peppered(plaintext),
		parsed.salt,
		parsed.time,
		parsed.memory,
		parsed.parallelism,
		uint32(len(parsed.hash)),
	)

	return subtle.ConstantTimeCompare(computed, parsed.hash) == 1, nil
}

// NeedsRehash reports whether encoded was produced with weaker parameters
// than currently configured. Callers re-hash on the next successful verify.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	parsed, err := parsePHC(encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedDigest, err)
	}

	if h.config.Memory > parsed.memory {
		return true, nil
	}
	if h.config.Time > parsed.time {
		return true, nil
	}
	if h.config.Parallelism > parsed.parallelism {
		return true, nil
	}
	if h.config.KeyLength != uint32(len(parsed.hash)) {
		return true, nil
	}

	return false, nil
}

func (h *Hasher) peppered(plaintext string) []byte {
	if h.config.Pepper == "" {
		return []byte(plaintext)
	}
	return []byte(plaintext + h.config.Pepper)
}

func parsePHC(encoded string) (*parsedDigest, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return nil, errors.New("unsupported algorithm")
	}

	if !strings.HasPrefix(parts[2], "v=") {
		return nil, errors.New("missing argon2 version")
	}
	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || version != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	var parsed parsedDigest
	var memorySet, timeSet, parallelismSet bool
	for _, pair := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, errors.New("invalid parameter entry")
		}
		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v < uint64(minMemoryKB) {
				return nil, errors.New("invalid memory parameter")
			}
			parsed.memory = uint32(v)
			memorySet = true
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil || v < uint64(minTimeCost) {
				return nil, errors.New("invalid time parameter")
			}
			parsed.time = uint32(v)
			timeSet = true
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil || v < uint64(minParallelism) {
				return nil, errors.New("invalid parallelism parameter")
			}
			parsed.parallelism = uint8(v)
			parallelismSet = true
		default:
			return nil, errors.New("unsupported parameter")
		}
	}
	if !memorySet || !timeSet || !parallelismSet {
		return nil, errors.New("missing parameters")
	}

	parsed.salt, err = base64.StdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if len(parsed.salt) < int(minSaltLength) {
		return nil, errors.New("invalid salt length")
	}

	parsed.hash, err = base64.StdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, errors.New("invalid hash encoding")
	}
	if len(parsed.hash) < int(minKeyLength) {
		return nil, errors.New("invalid hash length")
	}

	return &parsed, nil
}
