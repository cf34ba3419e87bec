package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/otpauth/autherr"
	"github.com/MrEthical07/otpauth/jwt"
)

const opLogin = "login"

// LoginResult is the flow-local login response shape.
type LoginResult struct {
	User   UserRecord
	Tokens TokenPair
}

// LoginMetrics carries metric IDs needed by the login flow.
type LoginMetrics struct {
	LoginSuccess     int
	LoginFailure     int
	LoginRateLimited int
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	// DummyHash is verified against when the user does not exist so both
	// failure paths cost one hash verification.
	DummyHash string

	CheckLoginRate     func(context.Context, string) error
	RecordLoginFailure func(context.Context, string) (int, error)
	ResetLoginRate     func(context.Context, string) error

	FindUser       func(context.Context, string) (UserRecord, error)
	VerifyPassword func(password, encodedHash string) (bool, error)
	IssueTokens    func(subject string) (jwt.Pair, error)

	// Rehash is skipped unless UpgradeOnLogin is set and all three funcs
	// are present. Its failures never fail the login.
	UpgradeOnLogin       bool
	PasswordNeedsUpgrade func(encodedHash string) (bool, error)
	HashPassword         func(string) (string, error)
	UpdatePasswordHash   func(ctx context.Context, email, encodedHash string) error

	MetricInc func(int)
	Warn      func(string, ...any)
	Metrics   LoginMetrics
}

func normalizeLoginDeps(deps *LoginDeps) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
}

// RunLogin verifies email and password and issues a token pair.
//
// Unknown users and wrong passwords both record a failed attempt and return
// the same INVALID_CREDENTIALS error.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) (*LoginResult, error) {
	normalizeLoginDeps(&deps)
	if deps.CheckLoginRate == nil ||
		deps.RecordLoginFailure == nil ||
		deps.ResetLoginRate == nil ||
		deps.FindUser == nil ||
		deps.VerifyPassword == nil ||
		deps.IssueTokens == nil {
		return nil, autherr.Wrap(autherr.ErrLoginFailed, opLogin, ErrNotReady)
	}

	if err := deps.CheckLoginRate(ctx, email); err != nil {
		deps.MetricInc(deps.Metrics.LoginRateLimited)
		deps.Warn("login rate limited", "email", email)
		return nil, autherr.PassThrough(autherr.ErrLoginFailed, opLogin, err)
	}

	user, err := deps.FindUser(ctx, email)
	if err != nil {
		if !errors.Is(err, autherr.ErrUserNotFound) {
			return nil, autherr.Wrap(autherr.ErrLoginFailed, opLogin, err)
		}
		if deps.DummyHash != "" {
			// Only the cost matters; the result is always a failed login.
			_, _ = deps.VerifyPassword(password, deps.DummyHash)
		}
		return nil, failLogin(ctx, email, deps)
	}

	ok, err := deps.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrLoginFailed, opLogin, err)
	}
	if !ok {
		return nil, failLogin(ctx, email, deps)
	}

	if err := deps.ResetLoginRate(ctx, email); err != nil {
		return nil, autherr.Wrap(autherr.ErrLoginFailed, opLogin, err)
	}
	upgradeHash(ctx, user, password, deps)

	pair, err := deps.IssueTokens(user.ID)
	if err != nil {
		return nil, autherr.Wrap(autherr.ErrLoginFailed, opLogin, err)
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	return &LoginResult{
		User:   user,
		Tokens: tokenPairFrom(pair),
	}, nil
}

func upgradeHash(ctx context.Context, user UserRecord, password string, deps LoginDeps) {
	if !deps.UpgradeOnLogin ||
		deps.PasswordNeedsUpgrade == nil ||
		deps.HashPassword == nil ||
		deps.UpdatePasswordHash == nil {
		return
	}

	needs, err := deps.PasswordNeedsUpgrade(user.PasswordHash)
	if err != nil || !needs {
		return
	}
	hash, err := deps.HashPassword(password)
	if err != nil {
		deps.Warn("password hash upgrade failed", "email", user.Email, "error", err)
		return
	}
	if err := deps.UpdatePasswordHash(ctx, user.Email, hash); err != nil {
		deps.Warn("password hash upgrade not stored", "email", user.Email, "error", err)
	}
}

func failLogin(ctx context.Context, email string, deps LoginDeps) error {
	deps.MetricInc(deps.Metrics.LoginFailure)
	if _, err := deps.RecordLoginFailure(ctx, email); err != nil {
		return autherr.Wrap(autherr.ErrLoginFailed, opLogin, err)
	}
	return autherr.ErrInvalidCredentials
}
