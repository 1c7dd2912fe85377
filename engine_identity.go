package authcore

import "context"

// IdentityFromToken verifies a session token and recovers the caller's
// identity. Protected operations call this before doing anything else.
//
// Every verification failure — forged signature, malformed token, expiry —
// surfaces as the single [ErrUnauthenticated]; the boundary must not be
// able to tell them apart.
func (e *Engine) IdentityFromToken(ctx context.Context, tok string) (*Identity, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	claims, err := e.signer.Verify(tok)
	if err != nil {
		e.metricInc(MetricTokenVerifyFailure)
		return nil, ErrUnauthenticated
	}

	return &Identity{ID: claims.Subject, Email: claims.Email}, nil
}
