package limiters

import (
	"context"
	"time"

	"github.com/MrEthical07/otpauth/autherr"
	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/internal/kv"
)

type OTPConfig struct {
	// MaxRequests is the number of OTP sends allowed inside RequestWindow.
	// The send that finds MaxRequests-1 already counted applies the spam lock.
	MaxRequests      int
	RequestWindow    time.Duration
	SpamLockDuration time.Duration
}

func DefaultOTPConfig() OTPConfig {
	return OTPConfig{
		MaxRequests:      3,
		RequestWindow:    10 * time.Minute,
		SpamLockDuration: time.Hour,
	}
}

// OTPPhase is the dominant per-identity OTP condition.
type OTPPhase uint8

const (
	PhaseNoCode OTPPhase = iota
	PhaseCodeActive
	PhaseSpamLocked
	PhaseLocked
)

func (p OTPPhase) String() string {
	switch p {
	case PhaseCodeActive:
		return "code_active"
	case PhaseSpamLocked:
		return "spam_locked"
	case PhaseLocked:
		return "locked"
	default:
		return "no_code"
	}
}

// OTPState is a point-in-time view of every OTP record for one identity.
// Durations are the remaining lifetime of the matching marker, zero when absent.
type OTPState struct {
	Locked         time.Duration
	SpamLocked     time.Duration
	Cooldown       time.Duration
	CodeActive     bool
	FailedAttempts int
	Requests       int
}

// Phase collapses the state: Locked beats SpamLocked beats CodeActive.
func (s OTPState) Phase() OTPPhase {
	switch {
	case s.Locked > 0:
		return PhaseLocked
	case s.SpamLocked > 0:
		return PhaseSpamLocked
	case s.CodeActive:
		return PhaseCodeActive
	default:
		return PhaseNoCode
	}
}

// RequestRestriction returns the error a new OTP request would fail with,
// checking lock, spam lock and cooldown in that order.
func (s OTPState) RequestRestriction() error {
	switch {
	case s.Locked > 0:
		return autherr.ErrOTPLocked.WithRetryAfter(s.Locked)
	case s.SpamLocked > 0:
		return autherr.ErrOTPSpamLocked.WithRetryAfter(s.SpamLocked)
	case s.Cooldown > 0:
		return autherr.ErrOTPCooldown.WithRetryAfter(s.Cooldown)
	}
	return nil
}

// OTPLimiter guards OTP issuance: lockouts, spam locks, cooldowns and the
// per-identity request counter.
type OTPLimiter struct {
	store  kv.Store
	keys   keys.Namespace
	config OTPConfig
}

func NewOTPLimiter(store kv.Store, ns keys.Namespace, cfg OTPConfig) *OTPLimiter {
	return &OTPLimiter{
		store:  store,
		keys:   ns,
		config: cfg,
	}
}

// CheckRestrictions fails with a TemporarilyLocked error when any lock or the
// cooldown is active. It reads only the marker keys and has no side effects.
func (l *OTPLimiter) CheckRestrictions(ctx context.Context, identity string) error {
	if l == nil {
		return nil
	}

	var state OTPState
	if err := l.markers(ctx, identity, &state); err != nil {
		return err
	}
	return state.RequestRestriction()
}

// TrackRequest counts one OTP send. When the counter already reached
// MaxRequests-1 the spam lock is applied and the counter restarts, so the
// request that triggers the lock is itself still counted.
func (l *OTPLimiter) TrackRequest(ctx context.Context, identity string) error {
	if l == nil {
		return nil
	}

	key := l.keys.OTPRequests(identity)
	count, err := kv.ReadCounter(ctx, l.store, key)
	if err != nil {
		return err
	}

	if count >= l.config.MaxRequests-1 {
		if err := l.store.Set(ctx, l.keys.OTPSpamLock(identity), "1", l.config.SpamLockDuration); err != nil {
			return err
		}
		if err := l.store.Delete(ctx, key); err != nil {
			return err
		}
	}

	if _, err := l.store.Incr(ctx, key); err != nil {
		return err
	}
	return l.store.Expire(ctx, key, l.config.RequestWindow)
}

// ResetRequests clears the request counter after a completed registration.
func (l *OTPLimiter) ResetRequests(ctx context.Context, identity string) error {
	if l == nil {
		return nil
	}
	return l.store.Delete(ctx, l.keys.OTPRequests(identity))
}

// State reads every OTP record for identity.
func (l *OTPLimiter) State(ctx context.Context, identity string) (OTPState, error) {
	var (
		state OTPState
		err   error
	)
	if l == nil {
		return state, nil
	}

	if err = l.markers(ctx, identity, &state); err != nil {
		return OTPState{}, err
	}
	if state.CodeActive, err = kv.Exists(ctx, l.store, l.keys.OTP(identity)); err != nil {
		return OTPState{}, err
	}
	if state.FailedAttempts, err = kv.ReadCounter(ctx, l.store, l.keys.OTPAttempts(identity)); err != nil {
		return OTPState{}, err
	}
	if state.Requests, err = kv.ReadCounter(ctx, l.store, l.keys.OTPRequests(identity)); err != nil {
		return OTPState{}, err
	}
	return state, nil
}

// markers fills the lock, spam lock and cooldown fields of state.
func (l *OTPLimiter) markers(ctx context.Context, identity string, state *OTPState) error {
	fields := []struct {
		key string
		dst *time.Duration
	}{
		{key: l.keys.OTPLock(identity), dst: &state.Locked},
		{key: l.keys.OTPSpamLock(identity), dst: &state.SpamLocked},
		{key: l.keys.OTPCooldown(identity), dst: &state.Cooldown},
	}
	for _, f := range fields {
		remaining, _, err := l.marker(ctx, f.key)
		if err != nil {
			return err
		}
		*f.dst = remaining
	}
	return nil
}

// marker reports whether key exists and how long it has left. Markers
// without an expiry report a nominal 1ns so Phase still sees them.
func (l *OTPLimiter) marker(ctx context.Context, key string) (time.Duration, bool, error) {
	active, err := kv.Exists(ctx, l.store, key)
	if err != nil || !active {
		return 0, false, err
	}
	remaining, err := l.store.TTL(ctx, key)
	if err != nil {
		return 0, false, err
	}
	if remaining <= 0 {
		remaining = time.Nanosecond
	}
	return remaining, true, nil
}
