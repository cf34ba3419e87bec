package flows

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrEthical07/otpauth/autherr"
	"github.com/MrEthical07/otpauth/mail"
)

const opRegister = "register"

// Messages returned on successful registration steps.
const (
	MsgRegisterOTPSent  = "OTP sent to email. Please verify your account."
	MsgRegisterVerified = "User registered successfully!"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterResult struct {
	Message string
}

type RegisterMetrics struct {
	RegisterStarted   int
	RegisterDuplicate int
	OTPRestricted     int
	OTPSent           int
}

// RegisterDeps captures registration dependencies.
type RegisterDeps struct {
	PendingTTL time.Duration

	FindUser             func(context.Context, string) (UserRecord, error)
	CheckOTPRestrictions func(context.Context, string) error
	HashPassword         func(string) (string, error)
	SendOTP              func(ctx context.Context, email, name, template string) error
	TrackOTPRequest      func(context.Context, string) error
	SavePending          func(context.Context, PendingRecord, time.Duration) error

	MetricInc func(int)
	Warn      func(string, ...any)
	Metrics   RegisterMetrics
}

func normalizeRegisterDeps(deps *RegisterDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.PendingTTL <= 0 {
		deps.PendingTTL = 15 * time.Minute
	}
}

// RunRegister checks the email is free and OTP issuance is allowed, then
// mails the activation code, counts the request and stores the pending
// registration concurrently. All three writes are awaited; a partial failure
// is surfaced without rollback.
func RunRegister(ctx context.Context, in RegisterInput, deps RegisterDeps) (*RegisterResult, error) {
	normalizeRegisterDeps(&deps)
	if deps.FindUser == nil ||
		deps.CheckOTPRestrictions == nil ||
		deps.HashPassword == nil ||
		deps.SendOTP == nil ||
		deps.TrackOTPRequest == nil ||
		deps.SavePending == nil {
		return nil, autherr.Wrap(autherr.ErrRegistrationFailed, opRegister, ErrNotReady)
	}

	_, err := deps.FindUser(ctx, in.Email)
	switch {
	case err == nil:
		deps.MetricInc(deps.Metrics.RegisterDuplicate)
		return nil, autherr.ErrEmailExists
	case !errors.Is(err, autherr.ErrUserNotFound):
		return nil, autherr.Wrap(autherr.ErrRegistrationFailed, opRegister, err)
	}

	if err := deps.CheckOTPRestrictions(ctx, in.Email); err != nil {
		deps.MetricInc(deps.Metrics.OTPRestricted)
		deps.Warn("otp request restricted", "op", opRegister, "email", in.Email, "error", err)
		return nil, autherr.PassThrough(autherr.ErrRegistrationFailed, opRegister, err)
	}

	hash, err := deps.HashPassword(in.Password)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrRegistrationFailed, opRegister, err)
	}

	var g errgroup.Group
	g.Go(func() error {
		return deps.SendOTP(ctx, in.Email, in.Name, mail.TemplateUserActivation)
	})
	g.Go(func() error {
		return deps.TrackOTPRequest(ctx, in.Email)
	})
	g.Go(func() error {
		return deps.SavePending(ctx, PendingRecord{
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: hash,
		}, deps.PendingTTL)
	})
	if err := g.Wait(); err != nil {
		return nil, autherr.PassThrough(autherr.ErrRegistrationFailed, opRegister, err)
	}

	deps.MetricInc(deps.Metrics.RegisterStarted)
	deps.MetricInc(deps.Metrics.OTPSent)
	return &RegisterResult{Message: MsgRegisterOTPSent}, nil
}
