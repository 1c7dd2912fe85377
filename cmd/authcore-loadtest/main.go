package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/veldra/authcore"
	"github.com/veldra/authcore/store/redistore"
)

const seedPassword = "Load-Test-Pass7!"

func main() {
	var (
		accounts    = flag.Int("accounts", 10000, "number of accounts to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (login + verify)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "ac", "credential key prefix")
		argonMem    = flag.Uint("argon-mem", 8*1024, "argon2id memory in KB for the login phase")
	)
	flag.Parse()

	if *accounts <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  *redis.Client
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := authcore.DefaultConfig()
	cfg.Token.Secret = []byte("loadtest-secret-32-bytes-exactly")
	cfg.Token.TTL = time.Hour
	cfg.Password.Memory = uint32(*argonMem)
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1

	store := redistore.New(client, *prefix)
	engine, err := authcore.New().
		WithConfig(cfg).
		WithStore(store).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}

	emails := make([]string, *accounts)
	fmt.Printf("seeding %d accounts...\n", *accounts)
	startSeed := time.Now()

	// Hash once and seed through the store; hashing per account would
	// turn seeding into an Argon2 benchmark.
	seedHash := mustSeedHash(ctx, engine, store)
	now := time.Now()
	for i := 0; i < *accounts; i++ {
		email := fmt.Sprintf("user-%d@loadtest.local", i)
		emails[i] = email
		_, err := store.Create(ctx, &authcore.Credential{
			ID:                fmt.Sprintf("acct-%d", i),
			Email:             email,
			PasswordHash:      seedHash,
			PasswordChangedAt: now,
			CreatedAt:         now,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	loginStats, tokens := runLoginPhase(ctx, engine, emails, *ops, *concurrency)
	verifyStats := runVerifyPhase(ctx, engine, tokens, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("verify", verifyStats)

	snap := engine.Metrics().Snapshot()
	fmt.Printf("metrics: login_success=%d login_failure=%d token_verify_failure=%d\n",
		snap.LoginSuccess, snap.LoginFailure, snap.TokenVerifyFailure)
}

// mustSeedHash registers one throwaway account to obtain a digest with the
// engine's exact parameters, then reads it back.
func mustSeedHash(ctx context.Context, engine *authcore.Engine, store *redistore.Store) string {
	if _, err := engine.Register(ctx, "seed@loadtest.local", seedPassword); err != nil {
		fmt.Fprintf(os.Stderr, "seed register failed: %v\n", err)
		os.Exit(1)
	}
	cred, err := store.FindByEmail(ctx, "seed@loadtest.local")
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed lookup failed: %v\n", err)
		os.Exit(1)
	}
	return cred.PasswordHash
}

func runLoginPhase(ctx context.Context, engine *authcore.Engine, emails []string, ops, concurrency int) (phaseStats, []string) {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		tokens    = make([]string, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				email := emails[r.Intn(len(emails))]
				t0 := time.Now()
				tok, err := engine.Login(ctx, email, seedPassword)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				if err == nil {
					tokens = append(tokens, tok)
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures), tokens
}

func runVerifyPhase(ctx context.Context, engine *authcore.Engine, tokens []string, ops, concurrency int) phaseStats {
	if len(tokens) == 0 {
		return phaseStats{}
	}

	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				tok := tokens[r.Intn(len(tokens))]
				t0 := time.Now()
				_, err := engine.IdentityFromToken(ctx, tok)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
