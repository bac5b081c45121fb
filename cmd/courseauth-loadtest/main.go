// Command courseauth-loadtest measures engine throughput for the two hot
// paths: login (bcrypt-bound) and access-token authentication
// (verify + revocation lookup). It seeds users into an in-memory provider,
// points revocation at Redis (miniredis when no address is given), and
// reports per-phase throughput and latency percentiles.
//
// Usage:
//
//	go run ./cmd/courseauth-loadtest -users 1000 -concurrency 64 -ops 50000
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

	courseauth "github.com/campusworks/courseauth"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const seedPassword = "L0adTest!Pass#"

func main() {
	var (
		users       = flag.Int("users", 1000, "number of users to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (login + authenticate)")
		bcryptCost  = flag.Int("bcrypt-cost", 6, "bcrypt cost for seeded users (low keeps seeding fast)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
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

	cfg := courseauth.DefaultConfig()
	cfg.Token.AccessSecret = "loadtest-access-secret"
	cfg.Token.RefreshSecret = "loadtest-refresh-secret"
	cfg.Password.Cost = *bcryptCost
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	store := newUserStore()
	engine, err := courseauth.New().
		WithConfig(cfg).
		WithUserProvider(store).
		WithRedis(client).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeding %d users...\n", *users)
	startSeed := time.Now()
	emails := make([]string, *users)
	tokens := make([]string, *users)
	for i := 0; i < *users; i++ {
		email := fmt.Sprintf("load-%d@example.com", i)
		result, err := engine.Register(ctx, courseauth.RegisterInput{
			Email:    email,
			Password: seedPassword,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed register failed: %v\n", err)
			os.Exit(1)
		}
		emails[i] = email
		tokens[i] = result.Tokens.AccessToken
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	loginStats := runPhase(ctx, *ops, *concurrency, func(r *rand.Rand) error {
		_, err := engine.Login(ctx, emails[r.Intn(len(emails))], seedPassword)
		return err
	})
	authStats := runPhase(ctx, *ops, *concurrency, func(r *rand.Rand) error {
		_, err := engine.Authenticate(ctx, tokens[r.Intn(len(tokens))])
		return err
	})

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("authenticate", authStats)
}

func runPhase(ctx context.Context, ops, concurrency int, op func(*rand.Rand) error) phaseStats {
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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
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

type userStore struct {
	mu      sync.RWMutex
	byID    map[string]courseauth.User
	byEmail map[string]string
}

func newUserStore() *userStore {
	return &userStore{
		byID:    make(map[string]courseauth.User),
		byEmail: make(map[string]string),
	}
}

func (s *userStore) GetUserByID(_ context.Context, id string) (courseauth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return courseauth.User{}, courseauth.ErrUserNotFound
	}
	return u, nil
}

func (s *userStore) GetUserByEmail(_ context.Context, email string) (courseauth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return courseauth.User{}, courseauth.ErrUserNotFound
	}
	return s.byID[id], nil
}

func (s *userStore) CreateUser(_ context.Context, input courseauth.CreateUserInput) (courseauth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[input.Email]; exists {
		return courseauth.User{}, courseauth.ErrEmailExists
	}
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}
	u := courseauth.User{
		ID:           id,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
		IsActive:     input.IsActive,
		IsVerified:   input.IsVerified,
		CreatedAt:    time.Now(),
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return u, nil
}

func (s *userStore) UpdateUser(_ context.Context, id string, update courseauth.UserUpdate) (courseauth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return courseauth.User{}, courseauth.ErrUserNotFound
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	if update.IsVerified != nil {
		u.IsVerified = *update.IsVerified
	}
	if update.IsActive != nil {
		u.IsActive = *update.IsActive
	}
	if update.LastLoginAt != nil {
		u.LastLoginAt = update.LastLoginAt
	}
	s.byID[id] = u
	return u, nil
}
