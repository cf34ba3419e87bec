package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/otpauth/autherr"
	"github.com/MrEthical07/otpauth/mail"
)

const opPasswordReset = "password_reset"

// Messages returned by the password reset flow. MsgResetRequested is also
// returned for unknown emails.
const (
	MsgResetRequested       = "If an account exists for this email, an OTP has been sent."
	MsgResetAlreadyVerified = "OTP already verified. You can now reset your password."
	MsgResetOTPVerified     = "OTP verified. You can now reset your password."
	MsgPasswordReset        = "Password reset successfully!"
)

type ResetRequestResult struct {
	Message         string
	AlreadyVerified bool
}

type PasswordResetMetrics struct {
	PasswordResetRequest   int
	PasswordResetConfirmed int
	PasswordResetSuccess   int
	PasswordResetRejected  int
	OTPRestricted          int
	OTPSent                int
	OTPVerifyFailure       int
}

// PasswordResetDeps captures request, confirm and reset dependencies.
type PasswordResetDeps struct {
	GrantTTL time.Duration

	FindUser             func(context.Context, string) (UserRecord, error)
	UpdatePassword       func(ctx context.Context, email, hash string) error
	HashPassword         func(string) (string, error)
	VerifyPassword       func(password, encodedHash string) (bool, error)
	CheckOTPRestrictions func(context.Context, string) error
	SendOTP              func(ctx context.Context, email, name, template string) error
	TrackOTPRequest      func(context.Context, string) error
	VerifyOTP            func(ctx context.Context, email, code string) error

	HasGrant    func(context.Context, string) (bool, error)
	SaveGrant   func(context.Context, string, time.Duration) error
	RevokeGrant func(context.Context, string) error

	ResetLoginRate func(context.Context, string) error

	MetricInc func(int)
	Warn      func(string, ...any)
	Metrics   PasswordResetMetrics
}

func normalizePasswordResetDeps(deps *PasswordResetDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.GrantTTL <= 0 {
		deps.GrantTTL = 15 * time.Minute
	}
}

// RunRequestPasswordReset mails a reset code to a known email.
//
// Unknown emails get the same message as a successful request. An email that
// already holds a change-password grant short-circuits without a new code.
func RunRequestPasswordReset(ctx context.Context, email string, deps PasswordResetDeps) (*ResetRequestResult, error) {
	normalizePasswordResetDeps(&deps)
	if deps.FindUser == nil ||
		deps.HasGrant == nil ||
		deps.CheckOTPRestrictions == nil ||
		deps.SendOTP == nil ||
		deps.TrackOTPRequest == nil {
		return nil, autherr.Wrap(autherr.ErrPasswordResetFailed, opPasswordReset, ErrNotReady)
	}

	deps.MetricInc(deps.Metrics.PasswordResetRequest)

	user, err := deps.FindUser(ctx, email)
	if err != nil {
		if errors.Is(err, autherr.ErrUserNotFound) {
			return &ResetRequestResult{Message: MsgResetRequested}, nil
		}
		return nil, autherr.Wrap(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}

	granted, err := deps.HasGrant(ctx, email)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}
	if granted {
		return &ResetRequestResult{Message: MsgResetAlreadyVerified, AlreadyVerified: true}, nil
	}

	if err := deps.CheckOTPRestrictions(ctx, email); err != nil {
		deps.MetricInc(deps.Metrics.OTPRestricted)
		deps.Warn("otp request restricted", "op", opPasswordReset, "email", email, "error", err)
		return nil, autherr.PassThrough(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}

	if err := deps.SendOTP(ctx, email, user.Name, mail.TemplateForgotPassword); err != nil {
		return nil, autherr.PassThrough(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}
	if err := deps.TrackOTPRequest(ctx, email); err != nil {
		return nil, autherr.PassThrough(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}

	deps.MetricInc(deps.Metrics.OTPSent)
	return &ResetRequestResult{Message: MsgResetRequested}, nil
}

// RunConfirmPasswordResetOTP consumes the reset code and grants one
// password change.
func RunConfirmPasswordResetOTP(ctx context.Context, email, code string, deps PasswordResetDeps) error {
	normalizePasswordResetDeps(&deps)
	if deps.VerifyOTP == nil || deps.SaveGrant == nil {
		return autherr.Wrap(autherr.ErrPasswordResetFailed, opPasswordReset, ErrNotReady)
	}

	if err := deps.VerifyOTP(ctx, email, code); err != nil {
		deps.MetricInc(deps.Metrics.OTPVerifyFailure)
		return autherr.PassThrough(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}
	if err := deps.SaveGrant(ctx, email, deps.GrantTTL); err != nil {
		return autherr.Wrap(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}

	deps.MetricInc(deps.Metrics.PasswordResetConfirmed)
	return nil
}

// RunResetPassword replaces the password of an email holding a grant. The
// grant is revoked and failed login attempts are cleared.
func RunResetPassword(ctx context.Context, email, newPassword string, deps PasswordResetDeps) error {
	normalizePasswordResetDeps(&deps)
	if deps.HasGrant == nil ||
		deps.FindUser == nil ||
		deps.VerifyPassword == nil ||
		deps.HashPassword == nil ||
		deps.UpdatePassword == nil ||
		deps.RevokeGrant == nil {
		return autherr.Wrap(autherr.ErrPasswordResetFailed, opPasswordReset, ErrNotReady)
	}

	granted, err := deps.HasGrant(ctx, email)
	if err != nil {
		return autherr.Wrap(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}
	if !granted {
		deps.MetricInc(deps.Metrics.PasswordResetRejected)
		return autherr.ErrResetNotAuthorized
	}

	user, err := deps.FindUser(ctx, email)
	if err != nil {
		if errors.Is(err, autherr.ErrUserNotFound) {
			deps.MetricInc(deps.Metrics.PasswordResetRejected)
			return autherr.ErrResetNotAuthorized
		}
		return autherr.Wrap(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}

	same, err := deps.VerifyPassword(newPassword, user.PasswordHash)
	if err != nil {
		return autherr.Wrap(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}
	if same {
		deps.MetricInc(deps.Metrics.PasswordResetRejected)
		return autherr.ErrSamePassword
	}

	hash, err := deps.HashPassword(newPassword)
	if err != nil {
		return autherr.Wrap(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}
	if err := deps.UpdatePassword(ctx, email, hash); err != nil {
		// The account can disappear between the lookup and the write.
		if errors.Is(err, autherr.ErrUserNotFound) {
			deps.MetricInc(deps.Metrics.PasswordResetRejected)
			return autherr.ErrResetNotAuthorized
		}
		return autherr.PassThrough(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}
	if err := deps.RevokeGrant(ctx, email); err != nil {
		return autherr.Wrap(autherr.ErrPasswordResetFailed, opPasswordReset, err)
	}
	if deps.ResetLoginRate != nil {
		if err := deps.ResetLoginRate(ctx, email); err != nil {
			deps.Warn("login attempts cleanup failed", "email", email, "error", err)
		}
	}

	deps.MetricInc(deps.Metrics.PasswordResetSuccess)
	return nil
}
