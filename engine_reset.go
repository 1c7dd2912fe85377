package authcore

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/veldra/authcore/internal/reset"
	"github.com/veldra/authcore/policy"
)

// RequestReset issues a single-use reset secret for email and hands it to
// the configured [ResetDelivery]. The response shape is identical whether
// or not the email is registered: an unknown identity returns nil after a
// randomized delay, so neither the result nor the timing enumerates
// accounts.
//
// Re-requesting while a reset is already pending overwrites the stored
// digest; only the most recently issued secret can be consumed.
func (e *Engine) RequestReset(ctx context.Context, email string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	email = NormalizeEmail(email)
	e.metricInc(MetricResetRequest)

	cred, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			// Same outward behavior as the known-identity path. The delay
			// masks the skipped hash-and-store work.
			return sleepEnumerationDelay(ctx)
		}
		return mapStoreError(err)
	}

	secret, err := reset.NewSecret()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(e.config.Reset.TTL)
	if err := e.store.SetReset(ctx, cred.Email, secret.Digest(), expiresAt); err != nil {
		return mapStoreError(err)
	}

	if e.delivery != nil {
		if err := e.delivery.Deliver(ctx, cred.Email, secret.Encode()); err != nil {
			return err
		}
	}

	return nil
}

// PerformReset consumes secret and replaces the credential's password.
//
// The store clears the digest in the same atomic step that accepts it, so
// a second call with the same secret — or a concurrent racer — fails with
// [ErrInvalidOrExpiredToken], as do wrong, superseded, and expired
// secrets. A weak replacement password fails with [WeakPasswordError]
// before anything is consumed.
func (e *Engine) PerformReset(ctx context.Context, secret, newPassword string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	digest, err := reset.DigestOf(secret)
	if err != nil {
		e.metricInc(MetricResetConfirmFailure)
		return ErrInvalidOrExpiredToken
	}

	cred, err := e.store.FindByResetDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			e.metricInc(MetricResetConfirmFailure)
			return ErrInvalidOrExpiredToken
		}
		return mapStoreError(err)
	}

	// Expiry is strict: a secret is dead at its expiry instant even when
	// the store has not purged it yet.
	if !cred.HasPendingReset() || !time.Now().Before(cred.ResetExpiresAt) {
		e.metricInc(MetricResetConfirmFailure)
		return ErrInvalidOrExpiredToken
	}

	report := policy.Evaluate(newPassword)
	if !report.OK {
		e.metricInc(MetricResetConfirmFailure)
		return &WeakPasswordError{Report: report}
	}

	newHash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if _, err := e.store.ConsumeReset(ctx, digest, newHash, time.Now()); err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			// Lost the race, or the secret was superseded between lookup
			// and consume.
			e.metricInc(MetricResetConfirmFailure)
			return ErrInvalidOrExpiredToken
		}
		return mapStoreError(err)
	}

	e.metricInc(MetricResetConfirmSuccess)
	return nil
}

// sleepEnumerationDelay blocks for 20-40ms of cryptographically random
// jitter so the unknown-identity path costs about as much wall time as
// issuing a real secret.
func sleepEnumerationDelay(ctx context.Context) error {
	minMs := int64(20)
	maxMs := int64(40)
	span := maxMs - minMs + 1

	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return err
	}

	timer := time.NewTimer(time.Duration(minMs+n.Int64()) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
