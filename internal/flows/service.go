package flows

import (
	"context"

	"github.com/MrEthical07/otpauth/jwt"
)

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Login.FindUser != nil
}

func (s Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	return RunRegister(ctx, in, s.deps.Register)
}

func (s Service) VerifyRegistration(ctx context.Context, email, code string) (*UserRecord, error) {
	return RunVerifyRegistration(ctx, email, code, s.deps.VerifyRegistration)
}

func (s Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	return RunLogin(ctx, email, password, s.deps.Login)
}

func (s Service) RequestPasswordReset(ctx context.Context, email string) (*ResetRequestResult, error) {
	return RunRequestPasswordReset(ctx, email, s.deps.PasswordReset)
}

func (s Service) ConfirmPasswordResetOTP(ctx context.Context, email, code string) error {
	return RunConfirmPasswordResetOTP(ctx, email, code, s.deps.PasswordReset)
}

func (s Service) ResetPassword(ctx context.Context, email, newPassword string) error {
	return RunResetPassword(ctx, email, newPassword, s.deps.PasswordReset)
}

func (s Service) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	return RunRefresh(ctx, refreshToken, s.deps.Refresh)
}

func (s Service) Validate(ctx context.Context, token string) (*jwt.Claims, error) {
	return RunValidate(ctx, token, s.deps.Validate)
}
