package otpauth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/otpauth/jwt"
)

// Config holds every tunable of the engine. Start from DefaultConfig and
// set the token secrets; Build validates the result.
type Config struct {
	KeyPrefix     string
	OTP           OTPConfig
	Login         LoginConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Registration  RegistrationConfig
	PasswordReset PasswordResetConfig
	Metrics       MetricsConfig
	// Development exposes internal error detail to transports.
	Development bool
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig controls code issuance, verification lockout and request
// throttling.
type OTPConfig struct {
	Digits      int
	CodeTTL     time.Duration
	CooldownTTL time.Duration
	Subject     string

	// MaxVerifyAttempts wrong guesses lock the identity for LockDuration.
	MaxVerifyAttempts int
	AttemptWindow     time.Duration
	LockDuration      time.Duration

	// The MaxRequests-th request inside RequestWindow sets a spam lock for
	// SpamLockDuration.
	MaxRequests      int
	RequestWindow    time.Duration
	SpamLockDuration time.Duration
}

/*
====================================
LOGIN CONFIG
====================================
*/

type LoginConfig struct {
	MaxAttempts int
	Window      time.Duration
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures the HS256 token pair. AccessSecret and RefreshSecret
// are required, at least 32 bytes long and distinct.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
	RequireIAT    bool
	MaxFutureIAT  time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

type PasswordConfig struct {
	Memory           uint32
	Time             uint32
	Parallelism      uint8
	SaltLength       uint32
	KeyLength        uint32
	MaxPasswordBytes int
	// UpgradeOnLogin rehashes a stored hash made with weaker parameters
	// after a successful login.
	UpgradeOnLogin bool
}

/*
====================================
FLOW CONFIG
====================================
*/

type RegistrationConfig struct {
	PendingTTL time.Duration
}

type PasswordResetConfig struct {
	GrantTTL time.Duration
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns production defaults with empty token secrets.
func DefaultConfig() Config {
	return Config{
		KeyPrefix: "otpauth",
		OTP: OTPConfig{
			Digits:            4,
			CodeTTL:           5 * time.Minute,
			CooldownTTL:       60 * time.Second,
			Subject:           "Your OTP Code",
			MaxVerifyAttempts: 3,
			AttemptWindow:     15 * time.Minute,
			LockDuration:      15 * time.Minute,
			MaxRequests:       3,
			RequestWindow:     10 * time.Minute,
			SpamLockDuration:  time.Hour,
		},
		Login: LoginConfig{
			MaxAttempts: 5,
			Window:      15 * time.Minute,
		},
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Memory:           65536,
			Time:             3,
			Parallelism:      2,
			SaltLength:       16,
			KeyLength:        32,
			MaxPasswordBytes: 1024,
			UpgradeOnLogin:   true,
		},
		Registration: RegistrationConfig{
			PendingTTL: 15 * time.Minute,
		},
		PasswordReset: PasswordResetConfig{
			GrantTTL: 15 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate fails fast on missing or weak token secrets and on
// inconsistent limits. It never substitutes a default secret.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.KeyPrefix) == "" || strings.Contains(c.KeyPrefix, ":") {
		return errors.New("KeyPrefix must be non-empty and must not contain ':'")
	}

	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if err := jwt.CheckSecrets(c.JWT.AccessSecret, c.JWT.RefreshSecret); err != nil {
		return fmt.Errorf("JWT secrets: %w", err)
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}
	if c.JWT.MaxFutureIAT < 0 || c.JWT.MaxFutureIAT > 24*time.Hour {
		return errors.New("JWT MaxFutureIAT must be between 0 and 24h")
	}
	if c.JWT.Audience != "" && strings.TrimSpace(c.JWT.Audience) == "" {
		return errors.New("JWT Audience must not be blank")
	}

	// OTP
	if c.OTP.Digits < 4 || c.OTP.Digits > 10 {
		return errors.New("OTP Digits must be between 4 and 10")
	}
	if c.OTP.CodeTTL <= 0 || c.OTP.CooldownTTL <= 0 {
		return errors.New("OTP CodeTTL and CooldownTTL must be > 0")
	}
	if c.OTP.MaxVerifyAttempts < 1 {
		return errors.New("OTP MaxVerifyAttempts must be >= 1")
	}
	if c.OTP.AttemptWindow <= 0 || c.OTP.LockDuration <= 0 {
		return errors.New("OTP AttemptWindow and LockDuration must be > 0")
	}
	if c.OTP.MaxRequests < 1 {
		return errors.New("OTP MaxRequests must be >= 1")
	}
	if c.OTP.RequestWindow <= 0 || c.OTP.SpamLockDuration <= 0 {
		return errors.New("OTP RequestWindow and SpamLockDuration must be > 0")
	}

	// Login
	if c.Login.MaxAttempts < 1 {
		return errors.New("Login MaxAttempts must be >= 1")
	}
	if c.Login.Window <= 0 {
		return errors.New("Login Window must be > 0")
	}

	// Flows
	if c.Registration.PendingTTL <= 0 {
		return errors.New("Registration PendingTTL must be > 0")
	}
	if c.PasswordReset.GrantTTL <= 0 {
		return errors.New("PasswordReset GrantTTL must be > 0")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
