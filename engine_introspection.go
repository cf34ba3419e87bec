package otpauth

import (
	"context"
	"time"

	"github.com/MrEthical07/otpauth/internal/limiters"
	"github.com/MrEthical07/otpauth/internal/security"
)

// OTPState is a point-in-time view of the OTP records of one email.
type OTPState = limiters.OTPState

// OTPPhase is the dominant condition of an OTPState.
type OTPPhase = limiters.OTPPhase

const (
	OTPPhaseNoCode     = limiters.PhaseNoCode
	OTPPhaseCodeActive = limiters.PhaseCodeActive
	OTPPhaseSpamLocked = limiters.PhaseSpamLocked
	OTPPhaseLocked     = limiters.PhaseLocked
)

// OTPState reads the OTP lock, spam lock, cooldown, code and counters of
// email. It has no side effects.
func (e *Engine) OTPState(ctx context.Context, email string) (OTPState, error) {
	if !e.ready() {
		return OTPState{}, ErrEngineNotReady
	}
	return e.otpLimiter.State(ctx, normalizeEmail(email))
}

// LoginAttempts returns the number of failed logins inside the current
// window.
func (e *Engine) LoginAttempts(ctx context.Context, email string) (int, error) {
	if !e.ready() {
		return 0, ErrEngineNotReady
	}
	return e.loginLimiter.Attempts(ctx, normalizeEmail(email))
}

// Health probes the ephemeral store with a single read.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil || e.store == nil {
		return HealthStatus{}
	}

	start := time.Now()
	_, _, err := e.store.Get(ctx, e.config.KeyPrefix+":health")
	return HealthStatus{
		StoreAvailable: err == nil,
		StoreLatency:   time.Since(start),
	}
}

// SecurityReport summarizes the lockout, token and hashing posture derived
// from the engine configuration.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	c := e.config
	return security.BuildReport(security.ReportInput{
		Development:      c.Development,
		SigningAlgorithm: "HS256",
		AccessTTL:        c.JWT.AccessTTL,
		RefreshTTL:       c.JWT.RefreshTTL,
		AccessSecret:     c.JWT.AccessSecret,
		RefreshSecret:    c.JWT.RefreshSecret,
		Password: security.PasswordReport{
			Memory:      c.Password.Memory,
			Time:        c.Password.Time,
			Parallelism: c.Password.Parallelism,
			SaltLength:  c.Password.SaltLength,
			KeyLength:   c.Password.KeyLength,
		},
		OTPDigits:         c.OTP.Digits,
		OTPCodeTTL:        c.OTP.CodeTTL,
		MaxVerifyAttempts: c.OTP.MaxVerifyAttempts,
		LockDuration:      c.OTP.LockDuration,
		MaxRequests:       c.OTP.MaxRequests,
		SpamLockDuration:  c.OTP.SpamLockDuration,
		MaxLoginAttempts:  c.Login.MaxAttempts,
		LoginWindow:       c.Login.Window,
		RequireIAT:        c.JWT.RequireIAT,
		MetricsEnabled:    c.Metrics.Enabled,
	})
}
