package password

import (
	"errors"
	"strings"
	"testing"
)

func testConfig() Config {
	// Minimum legal parameters keep the test suite fast.
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestHasher(t testing.TB, pepper string) *Hasher {
	t.Helper()

	cfg := testConfig()
	cfg.Pepper = pepper

	h, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"memory too low", func(c *Config) { c.Memory = 1024 }},
		{"time zero", func(c *Config) { c.Time = 0 }},
		{"parallelism zero", func(c *Config) { c.Parallelism = 0 }},
		{"salt too short", func(c *Config) { c.SaltLength = 8 }},
		{"key too short", func(c *Config) { c.KeyLength = 8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if _, err := NewHasher(cfg); err == nil {
				t.Fatal("expected config validation error, got nil")
			}
		})
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := newTestHasher(t, "unit-pepper")

	digest, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(digest, "$argon2id$") {
		t.Fatalf("unexpected digest format: %s", digest)
	}

	ok, err := h.Verify("correct-horse-battery", digest)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected round-trip verification to succeed")
	}

	ok, err = h.Verify("wrong-horse-battery", digest)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("expected verification of wrong password to fail")
	}
}

func TestHashProducesUniqueSalts(t *testing.T) {
	h := newTestHasher(t, "")

	first, err := h.Hash("same-input-pw")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := h.Hash("same-input-pw")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password must differ (random salt)")
	}
}

func TestVerifyPepperMismatch(t *testing.T) {
	withPepper := newTestHasher(t, "pepper-a")
	withoutPepper := newTestHasher(t, "")

	digest, err := withPepper.Hash("shared-password-1")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	ok, err := withoutPepper.Verify("shared-password-1", digest)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("digest produced with a pepper must not verify without it")
	}
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := newTestHasher(t, "")

	cases := []string{
		"",
		"not-a-digest",
		"$argon2id$v=19$m=8192,t=1,p=1$short$short",
		"$bcrypt$v=19$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA==$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		"$argon2id$v=18$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA==$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		"$argon2id$v=19$m==,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA==$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
	}

	for _, digest := range cases {
		ok, err := h.Verify("anything", digest)
		if ok {
			t.Fatalf("Verify(%q) = true, want false", digest)
		}
		if !errors.Is(err, ErrMalformedDigest) {
			t.Fatalf("Verify(%q) error = %v, want ErrMalformedDigest", digest, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := newTestHasher(t, "")

	digest, err := weak.Hash("upgrade-me-please")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	needs, err := weak.NeedsRehash(digest)
	if err != nil {
		t.Fatalf("NeedsRehash failed: %v", err)
	}
	if needs {
		t.Fatal("digest with current parameters should not need rehash")
	}

	strongCfg := testConfig()
	strongCfg.Time = 3
	strong, err := NewHasher(strongCfg)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	needs, err = strong.NeedsRehash(digest)
	if err != nil {
		t.Fatalf("NeedsRehash failed: %v", err)
	}
	if !needs {
		t.Fatal("digest with lower time cost should need rehash")
	}
}

func BenchmarkHash(b *testing.B) {
	h := newTestHasher(b, "bench-pepper")

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := h.Hash("benchmark-password-1!"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerify(b *testing.B) {
	h := newTestHasher(b, "bench-pepper")
	digest, err := h.Hash("benchmark-password-1!")
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Verify("benchmark-password-1!", digest); err != nil {
			b.Fatal(err)
		}
	}
}
