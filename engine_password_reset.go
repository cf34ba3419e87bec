package otpauth

import (
	"context"
	"strings"

	internalflows "github.com/MrEthical07/otpauth/internal/flows"
)

// User-facing messages for password reset steps.
const (
	MessageResetRequested       = internalflows.MsgResetRequested
	MessageResetAlreadyVerified = internalflows.MsgResetAlreadyVerified
	MessageResetOTPVerified     = internalflows.MsgResetOTPVerified
	MessagePasswordReset        = internalflows.MsgPasswordReset
)

// RequestPasswordReset mails a reset code. The result is the same for
// unknown and known emails so callers cannot probe for accounts; only an
// email that already verified a code gets MessageResetAlreadyVerified.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if err := e.validateInput(emailInput{Email: email}); err != nil {
		return nil, err
	}

	res, err := e.flows.RequestPasswordReset(ctx, email)
	if err != nil {
		return nil, e.finish(ctx, "request_password_reset", email, err)
	}
	_ = e.finish(ctx, "request_password_reset", email, nil)
	return &Result{Message: res.Message, AlreadyVerified: res.AlreadyVerified}, nil
}

// ConfirmPasswordResetOTP consumes the reset code and grants a single
// password change for PasswordReset.GrantTTL.
func (e *Engine) ConfirmPasswordResetOTP(ctx context.Context, email, code string) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if err := e.validateInput(otpInput{Email: email, OTP: code}); err != nil {
		return nil, err
	}

	if err := e.flows.ConfirmPasswordResetOTP(ctx, email, code); err != nil {
		return nil, e.finish(ctx, "confirm_password_reset", email, err)
	}
	_ = e.finish(ctx, "confirm_password_reset", email, nil)
	return &Result{Message: MessageResetOTPVerified}, nil
}

// ResetPassword replaces the password of an email holding a grant. It
// fails with ErrResetNotAuthorized without a grant and with
// ErrSamePassword when the new password equals the current one.
func (e *Engine) ResetPassword(ctx context.Context, email, newPassword string) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if err := e.validateInput(newPasswordInput{Email: email, NewPassword: newPassword}); err != nil {
		return nil, err
	}

	if err := e.flows.ResetPassword(ctx, email, newPassword); err != nil {
		return nil, e.finish(ctx, "reset_password", email, err)
	}
	_ = e.finish(ctx, "reset_password", email, nil)
	return &Result{Message: MessagePasswordReset}, nil
}

func (e *Engine) passwordResetFlowDeps() internalflows.PasswordResetDeps {
	return internalflows.PasswordResetDeps{
		GrantTTL:             e.config.PasswordReset.GrantTTL,
		FindUser:             e.findUserByEmail,
		UpdatePassword:       e.credentials.UpdatePassword,
		HashPassword:         e.passwordHash.Hash,
		VerifyPassword:       e.passwordHash.Verify,
		CheckOTPRestrictions: e.otpLimiter.CheckRestrictions,
		SendOTP:              e.otp.Send,
		TrackOTPRequest:      e.otpLimiter.TrackRequest,
		VerifyOTP:            e.otp.Verify,
		HasGrant:             e.grants.Granted,
		SaveGrant:            e.grants.Grant,
		RevokeGrant:          e.grants.Revoke,
		ResetLoginRate:       e.loginLimiter.Reset,
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		Warn: e.warn,
		Metrics: internalflows.PasswordResetMetrics{
			PasswordResetRequest:   int(MetricPasswordResetRequest),
			PasswordResetConfirmed: int(MetricPasswordResetConfirmed),
			PasswordResetSuccess:   int(MetricPasswordResetSuccess),
			PasswordResetRejected:  int(MetricPasswordResetRejected),
			OTPRestricted:          int(MetricOTPRestricted),
			OTPSent:                int(MetricOTPSent),
			OTPVerifyFailure:       int(MetricOTPVerifyFailure),
		},
	}
}
