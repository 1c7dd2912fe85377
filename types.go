package authcore

import (
	"context"
	"time"
)

// Credential is the persistent record the engine reads and writes through
// [UserStore]. Email is the primary identity and is immutable after
// creation; ResetDigest and ResetExpiresAt are either both set or both
// zero.
type Credential struct {
	ID                string
	Email             string
	PasswordHash      string
	PasswordChangedAt time.Time
	// ResetDigest is the SHA-256 digest of the outstanding reset secret,
	// or all zeros when no reset is pending. The plaintext secret is never
	// stored.
	ResetDigest    [32]byte
	ResetExpiresAt time.Time
	CreatedAt      time.Time
}

// HasPendingReset reports whether a reset secret is outstanding. Expiry is
// not considered here; callers check ResetExpiresAt against their clock.
func (c *Credential) HasPendingReset() bool {
	return !c.ResetExpiresAt.IsZero()
}

// Identity is the public handle of an authenticated or newly registered
// credential. It is safe to return across the transport boundary.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// UserStore is the interface callers implement to integrate authcore with
// their credential database. Implementations must enforce uniqueness on
// Email in Create (returning [ErrDuplicateEmail]) and must make
// ConsumeReset atomic: of any number of concurrent calls with the same
// digest, exactly one succeeds and the rest observe the cleared state.
//
// Lookup misses return [ErrCredentialNotFound]; backend failures wrap
// [ErrStoreUnavailable].
type UserStore interface {
	// FindByEmail returns the credential for a normalized email.
	FindByEmail(ctx context.Context, email string) (*Credential, error)

	// FindByResetDigest returns the credential whose pending reset matches
	// digest. Implementations may filter expired resets themselves; the
	// engine re-checks expiry after lookup either way.
	FindByResetDigest(ctx context.Context, digest [32]byte) (*Credential, error)

	// Create persists a new credential.
	Create(ctx context.Context, cred *Credential) (*Credential, error)

	// UpdatePassword replaces the password digest and change timestamp.
	UpdatePassword(ctx context.Context, email, newHash string, changedAt time.Time) error

	// SetReset records a pending reset, overwriting any prior one: only the
	// latest digest is stored, so re-issuing invalidates earlier secrets.
	SetReset(ctx context.Context, email string, digest [32]byte, expiresAt time.Time) error

	// ConsumeReset atomically finds the unexpired credential matching
	// digest, replaces its password digest, and clears the reset fields in
	// the same step. Any non-live digest (wrong, already consumed,
	// superseded, expired) yields ErrCredentialNotFound.
	ConsumeReset(ctx context.Context, digest [32]byte, newHash string, changedAt time.Time) (*Credential, error)
}

// ResetDelivery hands a freshly issued reset secret to an out-of-band
// channel (mail sender, SMS gateway, test capture). The engine never
// returns the secret on the requesting path.
type ResetDelivery interface {
	Deliver(ctx context.Context, email, secret string) error
}

// ResetDeliveryFunc adapts a function to the ResetDelivery interface.
type ResetDeliveryFunc func(ctx context.Context, email, secret string) error

// Deliver calls f.
func (f ResetDeliveryFunc) Deliver(ctx context.Context, email, secret string) error {
	return f(ctx, email, secret)
}
