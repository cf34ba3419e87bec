package limiters

import (
	"context"
	"time"

	"github.com/MrEthical07/otpauth/autherr"
	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/internal/kv"
)

type LoginConfig struct {
	MaxAttempts int
	// Window is refreshed on every failure, so the lockout ends Window after
	// the most recent failed attempt.
	Window time.Duration
}

func DefaultLoginConfig() LoginConfig {
	return LoginConfig{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
	}
}

// LoginLimiter counts failed password logins per identity.
type LoginLimiter struct {
	store  kv.Store
	keys   keys.Namespace
	config LoginConfig
}

func NewLoginLimiter(store kv.Store, ns keys.Namespace, cfg LoginConfig) *LoginLimiter {
	return &LoginLimiter{
		store:  store,
		keys:   ns,
		config: cfg,
	}
}

// Check fails with TooManyAttempts once MaxAttempts failures are recorded.
func (l *LoginLimiter) Check(ctx context.Context, identity string) error {
	if l == nil {
		return nil
	}

	key := l.keys.LoginAttempts(identity)
	count, err := kv.ReadCounter(ctx, l.store, key)
	if err != nil {
		return err
	}
	if count < l.config.MaxAttempts {
		return nil
	}

	remaining, err := l.store.TTL(ctx, key)
	if err != nil {
		return err
	}
	return autherr.ErrLoginRateLimited.WithRetryAfter(remaining)
}

// RecordFailure counts one failed login and returns the new total.
func (l *LoginLimiter) RecordFailure(ctx context.Context, identity string) (int, error) {
	if l == nil {
		return 0, nil
	}

	key := l.keys.LoginAttempts(identity)
	count, err := l.store.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if err := l.store.Expire(ctx, key, l.config.Window); err != nil {
		return 0, err
	}
	return int(count), nil
}

func (l *LoginLimiter) Reset(ctx context.Context, identity string) error {
	if l == nil {
		return nil
	}
	return l.store.Delete(ctx, l.keys.LoginAttempts(identity))
}

// Attempts returns the current failure count. Unknown identities report zero.
func (l *LoginLimiter) Attempts(ctx context.Context, identity string) (int, error) {
	if l == nil {
		return 0, nil
	}
	return kv.ReadCounter(ctx, l.store, l.keys.LoginAttempts(identity))
}
