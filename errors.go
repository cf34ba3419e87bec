package otpauth

import (
	"errors"

	"github.com/MrEthical07/otpauth/autherr"
)

// Error is the structured failure returned by every Engine operation.
// Use errors.Is against the sentinels below, or errors.As to read
// AttemptsLeft and RetryAfter.
type Error = autherr.Error

// Kind classifies an Error.
type Kind = autherr.Kind

const (
	KindValidation        = autherr.KindValidation
	KindAuth              = autherr.KindAuth
	KindTemporarilyLocked = autherr.KindTemporarilyLocked
	KindTooManyAttempts   = autherr.KindTooManyAttempts
	KindNotFound          = autherr.KindNotFound
	KindInternal          = autherr.KindInternal
)

var (
	// ErrEngineNotReady is returned by a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrBuilderUsed is returned by a second Build call on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")

	ErrValidation        = autherr.ErrValidation
	ErrAuth              = autherr.ErrAuth
	ErrTemporarilyLocked = autherr.ErrTemporarilyLocked
	ErrTooManyAttempts   = autherr.ErrTooManyAttempts
	ErrNotFound          = autherr.ErrNotFound
	ErrInternal          = autherr.ErrInternal

	ErrInvalidInput        = autherr.ErrInvalidInput
	ErrEmailExists         = autherr.ErrEmailExists
	ErrInvalidOTP          = autherr.ErrInvalidOTP
	ErrSamePassword        = autherr.ErrSamePassword
	ErrInvalidCredentials  = autherr.ErrInvalidCredentials
	ErrResetNotAuthorized  = autherr.ErrResetNotAuthorized
	ErrInvalidToken        = autherr.ErrInvalidToken
	ErrOTPLocked           = autherr.ErrOTPLocked
	ErrOTPSpamLocked       = autherr.ErrOTPSpamLocked
	ErrOTPCooldown         = autherr.ErrOTPCooldown
	ErrOTPAttemptsExceeded = autherr.ErrOTPAttemptsExceeded
	ErrLoginRateLimited    = autherr.ErrLoginRateLimited
	ErrOTPExpired          = autherr.ErrOTPExpired
	ErrInvalidSession      = autherr.ErrInvalidSession
	ErrUserNotFound        = autherr.ErrUserNotFound
	ErrRegistrationFailed  = autherr.ErrRegistrationFailed
	ErrVerificationFailed  = autherr.ErrVerificationFailed
	ErrLoginFailed         = autherr.ErrLoginFailed
	ErrPasswordResetFailed = autherr.ErrPasswordResetFailed
	ErrTokenRefreshFailed  = autherr.ErrTokenRefreshFailed
)
