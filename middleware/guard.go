package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/veldra/authcore"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity injected by [Guard], if any.
func IdentityFromContext(ctx context.Context) (*authcore.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*authcore.Identity)
	return id, ok
}

// Guard rejects requests without a verifiable bearer token. Handlers
// behind it can rely on IdentityFromContext returning an identity.
func Guard(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			id, err := engine.IdentityFromToken(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
