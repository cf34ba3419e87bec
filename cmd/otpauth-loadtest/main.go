// Command otpauth-loadtest measures engine throughput for login, access token
// validation, refresh and OTP issuance against Redis or an embedded miniredis.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/credentials/memory"
	"github.com/MrEthical07/otpauth/mail"
	"github.com/MrEthical07/otpauth/password"
)

const seedPassword = "load-test-password"

type account struct {
	email   string
	access  string
	refresh string
}

func main() {
	var (
		users       = flag.Int("users", 1000, "number of users to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase (validate, refresh, otp)")
		loginOps    = flag.Int("login-ops", 500, "operations in the login phase; argon2 dominates it")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "otpauth-load", "key prefix")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 || *loginOps <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, ops and login-ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := otpauth.DefaultConfig()
	cfg.KeyPrefix = *prefix
	cfg.JWT.AccessSecret = []byte("load-test-access-secret-000000001")
	cfg.JWT.RefreshSecret = []byte("load-test-refresh-secret-00000001")
	cfg.Metrics.Enabled = true

	credentials := memory.New()
	engine, err := otpauth.New().
		WithConfig(cfg).
		WithRedis(client).
		WithCredentialStore(credentials).
		WithMailer(mail.SenderFunc(func(context.Context, mail.Message) error { return nil })).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}

	accounts, err := seed(ctx, credentials, cfg.Password, *users)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	loginStats := runPhase("login", *loginOps, *concurrency, func(r *rand.Rand, _ int) error {
		a := &accounts[r.Intn(len(accounts))]
		_, err := engine.Login(ctx, a.email, seedPassword)
		return err
	})

	// One login per account provides the tokens for the next phases.
	for i := range accounts {
		res, err := engine.Login(ctx, accounts[i].email, seedPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
			os.Exit(1)
		}
		accounts[i].access = res.AccessToken
		accounts[i].refresh = res.RefreshToken
	}

	validateStats := runPhase("validate", *ops, *concurrency, func(r *rand.Rand, _ int) error {
		_, err := engine.Validate(ctx, accounts[r.Intn(len(accounts))].access)
		return err
	})

	refreshStats := runPhase("refresh", *ops, *concurrency, func(r *rand.Rand, _ int) error {
		_, err := engine.Refresh(ctx, accounts[r.Intn(len(accounts))].refresh)
		return err
	})

	// Fresh addresses so cooldowns never trigger.
	otpStats := runPhase("register-otp", *ops, *concurrency, func(_ *rand.Rand, i int) error {
		_, err := engine.Register(ctx, otpauth.RegisterRequest{
			Name:     "Load Test",
			Email:    fmt.Sprintf("new-%d@load.test", i),
			Password: seedPassword,
		})
		return err
	})

	fmt.Println()
	if err := writeReport(os.Stdout, loginStats, validateStats, refreshStats, otpStats); err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, store *memory.Store, cfg otpauth.PasswordConfig, n int) ([]account, error) {
	ph, err := password.NewArgon2(password.Config{
		Memory:           cfg.Memory,
		Time:             cfg.Time,
		Parallelism:      cfg.Parallelism,
		SaltLength:       cfg.SaltLength,
		KeyLength:        cfg.KeyLength,
		MaxPasswordBytes: cfg.MaxPasswordBytes,
	})
	if err != nil {
		return nil, err
	}
	hash, err := ph.Hash(seedPassword)
	if err != nil {
		return nil, err
	}

	fmt.Printf("seeding %d users...\n", n)
	start := time.Now()
	accounts := make([]account, n)
	for i := range accounts {
		email := fmt.Sprintf("user-%d@load.test", i)
		if _, err := store.Create(ctx, otpauth.NewUser{Name: "Load Test", Email: email, PasswordHash: hash}); err != nil {
			return nil, err
		}
		accounts[i].email = email
	}
	fmt.Printf("seeded in %s\n", time.Since(start).Round(time.Millisecond))
	return accounts, nil
}
