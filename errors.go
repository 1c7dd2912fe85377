package authcore

import (
	"errors"
	"fmt"

	"github.com/veldra/authcore/policy"
)

var (
	// ErrWeakPassword reports a password that failed the structural policy.
	// Errors of this kind are usually a [WeakPasswordError] carrying the
	// full per-rule report.
	ErrWeakPassword = errors.New("password policy violation")
	// ErrEmailInUse reports a registration attempt for an already-registered
	// email.
	ErrEmailInUse = errors.New("email already in use")
	// ErrInvalidCredentials reports a failed login. It deliberately covers
	// both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidOrExpiredToken reports a failed password reset. It
	// deliberately covers a wrong, consumed, superseded, or expired secret.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	// ErrUnauthenticated reports a session token that failed verification.
	// It deliberately covers both a bad signature and an expired token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrStoreUnavailable wraps any underlying storage failure. The engine
	// performs no retries; backoff is the caller's concern.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrEngineNotReady is returned when Engine methods are invoked before
	// [Builder.Build] completed.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrCredentialNotFound is the store-level sentinel for a lookup miss.
	// [UserStore] implementations must return it (possibly wrapped) so the
	// engine can unify it into the public taxonomy.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrDuplicateEmail is the store-level sentinel for a uniqueness
	// violation on Create.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// WeakPasswordError carries the structural strength report alongside the
// ErrWeakPassword sentinel, so boundaries can render per-rule feedback
// while errors.Is(err, ErrWeakPassword) still holds.
type WeakPasswordError struct {
	Report policy.Report
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("%v: length=%t upper=%t lower=%t digit=%t symbol=%t denied=%t",
		ErrWeakPassword, e.Report.Length, e.Report.Upper, e.Report.Lower,
		e.Report.Digit, e.Report.Symbol, e.Report.Denied)
}

func (e *WeakPasswordError) Unwrap() error {
	return ErrWeakPassword
}
