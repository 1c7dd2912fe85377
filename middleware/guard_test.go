package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/veldra/authcore"
	"github.com/veldra/authcore/store/redistore"
)

func newTestEngine(t *testing.T) *authcore.Engine {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := authcore.DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Token.TTL = time.Minute
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	engine, err := authcore.New().
		WithConfig(cfg).
		WithStore(redistore.New(rdb, "ac")).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine
}

func issueToken(t *testing.T, engine *authcore.Engine) string {
	t.Helper()
	ctx := context.Background()

	const email = "guard@example.com"
	const pass = "Correct-Horse9!"

	if _, err := engine.Register(ctx, email, pass); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	token, err := engine.Login(ctx, email, pass)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return token
}

func echoIdentity(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Error("handler reached without identity in context")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(id.Email))
	})
}

func TestGuardAcceptsValidToken(t *testing.T) {
	engine := newTestEngine(t)
	token := issueToken(t, engine)

	handler := Guard(engine)(echoIdentity(t))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "guard@example.com" {
		t.Fatalf("body = %q, want the caller's email", got)
	}
}

func TestGuardRejects(t *testing.T) {
	engine := newTestEngine(t)
	token := issueToken(t, engine)

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic " + token},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not.a.token"},
		{"tampered token", "Bearer " + token + "x"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler must not run for rejected requests")
			}))

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestGuardNilEngine(t *testing.T) {
	handler := Guard(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without an engine")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
