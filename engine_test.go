package authcore

import (
	"context"
	"crypto/subtle"
	"sync"
	"testing"
	"time"
)

// memStore is an in-memory UserStore with the same contract the real
// backends honor, including atomic single-use consumption.
type memStore struct {
	mu    sync.Mutex
	creds map[string]*Credential

	failWith error
}

func newMemStore() *memStore {
	return &memStore{creds: make(map[string]*Credential)}
}

func (s *memStore) FindByEmail(ctx context.Context, email string) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	cred, ok := s.creds[email]
	if !ok {
		return nil, ErrCredentialNotFound
	}
	out := *cred
	return &out, nil
}

func (s *memStore) FindByResetDigest(ctx context.Context, digest [32]byte) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if cred := s.findLiveLocked(digest, time.Now()); cred != nil {
		out := *cred
		return &out, nil
	}
	return nil, ErrCredentialNotFound
}

func (s *memStore) Create(ctx context.Context, cred *Credential) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if _, ok := s.creds[cred.Email]; ok {
		return nil, ErrDuplicateEmail
	}
	stored := *cred
	s.creds[cred.Email] = &stored
	out := stored
	return &out, nil
}

func (s *memStore) UpdatePassword(ctx context.Context, email, newHash string, changedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[email]
	if !ok {
		return ErrCredentialNotFound
	}
	cred.PasswordHash = newHash
	cred.PasswordChangedAt = changedAt
	return nil
}

func (s *memStore) SetReset(ctx context.Context, email string, digest [32]byte, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	cred, ok := s.creds[email]
	if !ok {
		return ErrCredentialNotFound
	}
	cred.ResetDigest = digest
	cred.ResetExpiresAt = expiresAt
	return nil
}

func (s *memStore) ConsumeReset(ctx context.Context, digest [32]byte, newHash string, changedAt time.Time) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	cred := s.findLiveLocked(digest, time.Now())
	if cred == nil {
		return nil, ErrCredentialNotFound
	}
	cred.PasswordHash = newHash
	cred.PasswordChangedAt = changedAt
	cred.ResetDigest = [32]byte{}
	cred.ResetExpiresAt = time.Time{}
	out := *cred
	return &out, nil
}

func (s *memStore) findLiveLocked(digest [32]byte, now time.Time) *Credential {
	for _, cred := range s.creds {
		if !cred.HasPendingReset() || !now.Before(cred.ResetExpiresAt) {
			continue
		}
		if subtle.ConstantTimeCompare(cred.ResetDigest[:], digest[:]) == 1 {
			return cred
		}
	}
	return nil
}

// expireReset force-expires the pending reset on email.
func (s *memStore) expireReset(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cred, ok := s.creds[email]; ok && cred.HasPendingReset() {
		cred.ResetExpiresAt = time.Now().Add(-time.Second)
	}
}

// captureDelivery records the last secret handed out per email.
type captureDelivery struct {
	mu      sync.Mutex
	secrets map[string][]string
}

func newCaptureDelivery() *captureDelivery {
	return &captureDelivery{secrets: make(map[string][]string)}
}

func (d *captureDelivery) Deliver(ctx context.Context, email, secret string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.secrets[email] = append(d.secrets[email], secret)
	return nil
}

func (d *captureDelivery) last(email string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	got := d.secrets[email]
	if len(got) == 0 {
		return "", false
	}
	return got[len(got)-1], true
}

func (d *captureDelivery) count(email string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.secrets[email])
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	// Minimum cost parameters; these tests measure behavior, not hashing.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

func newTestEngine(t *testing.T) (*Engine, *memStore, *captureDelivery) {
	t.Helper()

	store := newMemStore()
	delivery := newCaptureDelivery()

	engine, err := New().
		WithConfig(testConfig()).
		WithStore(store).
		WithDelivery(delivery).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine, store, delivery
}

const (
	testEmail    = "user@example.com"
	testPassword = "Correct-Horse9!"
)

func mustRegister(t *testing.T, e *Engine, email, pass string) *Identity {
	t.Helper()
	id, err := e.Register(context.Background(), email, pass)
	if err != nil {
		t.Fatalf("Register(%q) failed: %v", email, err)
	}
	return id
}
