package flows

import (
	"errors"
	"time"

	"github.com/MrEthical07/otpauth/jwt"
)

// Deps groups flow dependency sets. Root engine builds this once and delegates
// request methods to the matching flow implementation.
type Deps struct {
	Register           RegisterDeps
	VerifyRegistration VerifyRegistrationDeps
	Login              LoginDeps
	PasswordReset      PasswordResetDeps
	Refresh            RefreshDeps
	Validate           ValidateDeps
}

// ErrNotReady is returned, wrapped into the operation failure, when a flow
// is run without its required dependencies.
var ErrNotReady = errors.New("flow dependencies not configured")

// UserRecord is a flow-local view of a persisted user.
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PendingRecord is a flow-local sign-up waiting for OTP verification.
type PendingRecord struct {
	Name         string
	Email        string
	PasswordHash string
}

// TokenPair is a flow-local copy of the issued tokens.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

func tokenPairFrom(p jwt.Pair) TokenPair {
	return TokenPair{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		AccessExpiresAt:  p.AccessExpiresAt,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}

func noopMetric(int) {}

func noopWarn(string, ...any) {}
