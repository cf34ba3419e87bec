package flows

import (
	"context"

	"github.com/MrEthical07/otpauth/autherr"
)

const opVerifyRegistration = "verify_registration"

type VerifyRegistrationMetrics struct {
	RegistrationVerified int
	OTPVerifyFailure     int
}

// VerifyRegistrationDeps captures verify-registration dependencies.
type VerifyRegistrationDeps struct {
	VerifyOTP         func(ctx context.Context, email, code string) error
	GetPending        func(context.Context, string) (PendingRecord, error)
	IsPendingNotFound func(error) bool
	DeletePending     func(context.Context, string) error
	ResetOTPRequests  func(context.Context, string) error
	CreateUser        func(context.Context, PendingRecord) (UserRecord, error)

	MetricInc func(int)
	Warn      func(string, ...any)
	Metrics   VerifyRegistrationMetrics
}

func normalizeVerifyRegistrationDeps(deps *VerifyRegistrationDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.IsPendingNotFound == nil {
		deps.IsPendingNotFound = func(error) bool { return false }
	}
}

// RunVerifyRegistration consumes the activation code and turns the pending
// registration into a persisted user.
//
// Cleanup of the pending record and the OTP request counter happens after
// the user exists; a cleanup failure is logged and left to TTL expiry.
func RunVerifyRegistration(ctx context.Context, email, code string, deps VerifyRegistrationDeps) (*UserRecord, error) {
	normalizeVerifyRegistrationDeps(&deps)
	if deps.VerifyOTP == nil || deps.GetPending == nil || deps.CreateUser == nil {
		return nil, autherr.Wrap(autherr.ErrVerificationFailed, opVerifyRegistration, ErrNotReady)
	}

	if err := deps.VerifyOTP(ctx, email, code); err != nil {
		deps.MetricInc(deps.Metrics.OTPVerifyFailure)
		return nil, autherr.PassThrough(autherr.ErrVerificationFailed, opVerifyRegistration, err)
	}

	pending, err := deps.GetPending(ctx, email)
	if err != nil {
		if deps.IsPendingNotFound(err) {
			return nil, autherr.ErrInvalidSession
		}
		return nil, autherr.PassThrough(autherr.ErrVerificationFailed, opVerifyRegistration, err)
	}

	user, err := deps.CreateUser(ctx, pending)
	if err != nil {
		return nil, autherr.PassThrough(autherr.ErrVerificationFailed, opVerifyRegistration, err)
	}

	if deps.DeletePending != nil {
		if err := deps.DeletePending(ctx, email); err != nil {
			deps.Warn("pending registration cleanup failed", "email", email, "error", err)
		}
	}
	if deps.ResetOTPRequests != nil {
		if err := deps.ResetOTPRequests(ctx, email); err != nil {
			deps.Warn("otp request counter cleanup failed", "email", email, "error", err)
		}
	}

	deps.MetricInc(deps.Metrics.RegistrationVerified)
	return &user, nil
}
