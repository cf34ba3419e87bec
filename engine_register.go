package otpauth

import (
	"context"
	"errors"
	"strings"
	"time"

	internalflows "github.com/MrEthical07/otpauth/internal/flows"
	"github.com/MrEthical07/otpauth/internal/stores"
)

// User-facing messages for registration steps.
const (
	MessageRegisterOTPSent = internalflows.MsgRegisterOTPSent
	MessageRegistered      = internalflows.MsgRegisterVerified
)

// Register starts a sign-up: it checks the email is free, mails an
// activation code and parks the hashed password as a pending registration
// until VerifyRegistration.
//
// Register fails with ErrEmailExists for a taken email and with a
// TemporarilyLocked error while OTP issuance for the email is restricted.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := e.validateInput(req); err != nil {
		return nil, err
	}

	res, err := e.flows.Register(ctx, internalflows.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, e.finish(ctx, "register", req.Email, err)
	}
	_ = e.finish(ctx, "register", req.Email, nil)
	return &Result{Message: res.Message}, nil
}

// VerifyRegistration consumes the activation code and creates the user
// from the pending registration. It returns ErrInvalidSession when the
// pending registration expired.
func (e *Engine) VerifyRegistration(ctx context.Context, email, code string) (*UserRecord, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if err := e.validateInput(otpInput{Email: email, OTP: code}); err != nil {
		return nil, err
	}

	user, err := e.flows.VerifyRegistration(ctx, email, code)
	if err != nil {
		return nil, e.finish(ctx, "verify_registration", email, err)
	}
	_ = e.finish(ctx, "verify_registration", email, nil)

	out := fromFlowUser(*user)
	return &out, nil
}

func (e *Engine) registerFlowDeps() internalflows.RegisterDeps {
	return internalflows.RegisterDeps{
		PendingTTL:           e.config.Registration.PendingTTL,
		FindUser:             e.findUserByEmail,
		CheckOTPRestrictions: e.otpLimiter.CheckRestrictions,
		HashPassword:         e.passwordHash.Hash,
		SendOTP:              e.otp.Send,
		TrackOTPRequest:      e.otpLimiter.TrackRequest,
		SavePending: func(ctx context.Context, rec internalflows.PendingRecord, ttl time.Duration) error {
			return e.pending.Save(ctx, &stores.PendingRegistration{
				Name:         rec.Name,
				Email:        rec.Email,
				PasswordHash: rec.PasswordHash,
			}, ttl)
		},
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		Warn: e.warn,
		Metrics: internalflows.RegisterMetrics{
			RegisterStarted:   int(MetricRegisterStarted),
			RegisterDuplicate: int(MetricRegisterDuplicate),
			OTPRestricted:     int(MetricOTPRestricted),
			OTPSent:           int(MetricOTPSent),
		},
	}
}

func (e *Engine) verifyRegistrationFlowDeps() internalflows.VerifyRegistrationDeps {
	return internalflows.VerifyRegistrationDeps{
		VerifyOTP: e.otp.Verify,
		GetPending: func(ctx context.Context, email string) (internalflows.PendingRecord, error) {
			rec, err := e.pending.Get(ctx, email)
			if err != nil {
				return internalflows.PendingRecord{}, err
			}
			return internalflows.PendingRecord{
				Name:         rec.Name,
				Email:        rec.Email,
				PasswordHash: rec.PasswordHash,
			}, nil
		},
		IsPendingNotFound: func(err error) bool {
			return errors.Is(err, stores.ErrPendingNotFound)
		},
		DeletePending:    e.pending.Delete,
		ResetOTPRequests: e.otpLimiter.ResetRequests,
		CreateUser: func(ctx context.Context, rec internalflows.PendingRecord) (internalflows.UserRecord, error) {
			user, err := e.credentials.Create(ctx, NewUser{
				Name:         rec.Name,
				Email:        rec.Email,
				PasswordHash: rec.PasswordHash,
			})
			if err != nil {
				return internalflows.UserRecord{}, err
			}
			return toFlowUser(user), nil
		},
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		Warn: e.warn,
		Metrics: internalflows.VerifyRegistrationMetrics{
			RegistrationVerified: int(MetricRegistrationVerified),
			OTPVerifyFailure:     int(MetricOTPVerifyFailure),
		},
	}
}
