package authcore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/veldra/authcore/password"
	"github.com/veldra/authcore/token"
)

// Engine orchestrates the credential lifecycle: registration, login,
// password reset, and session-identity recovery. Construct through
// [Builder.Build]; an Engine is immutable and safe for unrestricted
// concurrent use afterwards.
type Engine struct {
	config   Config
	store    UserStore
	delivery ResetDelivery
	hasher   *password.Hasher
	signer   *token.Signer
	metrics  *Metrics
}

// Metrics exposes the engine's counters for host-side export.
func (e *Engine) Metrics() *Metrics {
	if e == nil {
		return nil
	}
	return e.metrics
}

func (e *Engine) ready() bool {
	return e != nil && e.store != nil && e.hasher != nil && e.signer != nil
}

func (e *Engine) metricInc(id MetricID) {
	if e != nil {
		e.metrics.Inc(id)
	}
}

// NormalizeEmail canonicalizes an email for use as the identity key:
// surrounding whitespace is trimmed and the address is lowercased. The
// result is what the store indexes; identity is immutable after creation.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// mapStoreError folds backend failures into the public taxonomy. Known
// sentinels pass through for the caller to re-map per operation; anything
// else is a storage failure.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, ErrCredentialNotFound), errors.Is(err, ErrDuplicateEmail):
		return err
	case errors.Is(err, ErrStoreUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
