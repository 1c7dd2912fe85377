package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/veldra/authcore/policy"
)

// Register creates a new credential for email. The email is normalized
// before any store access; the password must pass the structural policy.
//
// Failure modes: [WeakPasswordError] (wrapping [ErrWeakPassword]) when the
// policy rejects the password, [ErrEmailInUse] when the store already holds
// the identity, [ErrStoreUnavailable] for backend failures.
func (e *Engine) Register(ctx context.Context, email, plaintext string) (*Identity, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	email = NormalizeEmail(email)

	report := policy.Evaluate(plaintext)
	if !report.OK {
		e.metricInc(MetricRegisterFailure)
		return nil, &WeakPasswordError{Report: report}
	}

	digest, err := e.hasher.Hash(plaintext)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		return nil, err
	}

	now := time.Now()
	created, err := e.store.Create(ctx, &Credential{
		ID:                uuid.NewString(),
		Email:             email,
		PasswordHash:      digest,
		PasswordChangedAt: now,
		CreatedAt:         now,
	})
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrEmailInUse
		}
		return nil, mapStoreError(err)
	}

	e.metricInc(MetricRegisterSuccess)
	return &Identity{ID: created.ID, Email: created.Email}, nil
}
