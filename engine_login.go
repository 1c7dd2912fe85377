package authcore

import (
	"context"
	"errors"
)

// Login verifies email/password and issues a session token on success.
//
// An unknown email and a wrong password both fail with
// [ErrInvalidCredentials]; callers and their users cannot tell the cases
// apart. A malformed stored digest is likewise folded into the same
// failure rather than surfacing as a server fault.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}

	email = NormalizeEmail(email)

	if plaintext == "" {
		e.metricInc(MetricLoginFailure)
		return "", ErrInvalidCredentials
	}

	cred, err := e.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			e.metricInc(MetricLoginFailure)
			return "", ErrInvalidCredentials
		}
		return "", mapStoreError(err)
	}

	ok, err := e.hasher.Verify(plaintext, cred.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		return "", ErrInvalidCredentials
	}

	tok, err := e.signer.Sign(cred.ID, cred.Email)
	if err != nil {
		return "", err
	}

	e.metricInc(MetricLoginSuccess)
	return tok, nil
}
