package otpauth

import (
	"context"
	"time"

	internalflows "github.com/MrEthical07/otpauth/internal/flows"
	"github.com/MrEthical07/otpauth/jwt"
)

// Login checks a password and issues an access/refresh token pair.
//
// Unknown emails and wrong passwords fail identically with
// ErrInvalidCredentials and both count towards the login lockout. Once the
// lockout threshold is reached Login fails with ErrLoginRateLimited until
// the failure window expires.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if err := e.validateInput(loginInput{Email: email, Password: password}); err != nil {
		return nil, err
	}

	res, err := e.flows.Login(ctx, email, password)
	if err != nil {
		return nil, e.finish(ctx, "login", email, err)
	}
	_ = e.finish(ctx, "login", email, nil)
	return e.loginResult(res), nil
}

// Refresh exchanges a valid refresh token for a new pair. Tokens are not
// tracked server side, so an old refresh token stays usable until it
// expires.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res, err := e.flows.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, e.finish(ctx, "refresh", "", err)
	}
	return e.loginResult(res), nil
}

// Validate verifies an access token and returns its claims. It never
// touches the ephemeral store or the credential store.
func (e *Engine) Validate(ctx context.Context, accessToken string) (*jwt.Claims, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	return e.flows.Validate(ctx, accessToken)
}

func (e *Engine) loginResult(res *internalflows.LoginResult) *LoginResult {
	return &LoginResult{
		User:             fromFlowUser(res.User),
		AccessToken:      res.Tokens.AccessToken,
		RefreshToken:     res.Tokens.RefreshToken,
		AccessExpiresAt:  res.Tokens.AccessExpiresAt,
		RefreshExpiresAt: res.Tokens.RefreshExpiresAt,
		AccessMaxAge:     e.jwtManager.AccessTTL(),
		RefreshMaxAge:    e.jwtManager.RefreshTTL(),
	}
}

func (e *Engine) loginFlowDeps() internalflows.LoginDeps {
	return internalflows.LoginDeps{
		DummyHash:          e.dummyHash,
		CheckLoginRate:     e.loginLimiter.Check,
		RecordLoginFailure: e.loginLimiter.RecordFailure,
		ResetLoginRate:     e.loginLimiter.Reset,
		FindUser:           e.findUserByEmail,
		VerifyPassword:     e.passwordHash.Verify,
		IssueTokens:        e.jwtManager.IssuePair,

		UpgradeOnLogin:       e.config.Password.UpgradeOnLogin,
		PasswordNeedsUpgrade: e.passwordHash.NeedsUpgrade,
		HashPassword:         e.passwordHash.Hash,
		UpdatePasswordHash:   e.credentials.UpdatePassword,

		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		Warn: e.warn,
		Metrics: internalflows.LoginMetrics{
			LoginSuccess:     int(MetricLoginSuccess),
			LoginFailure:     int(MetricLoginFailure),
			LoginRateLimited: int(MetricLoginRateLimited),
		},
	}
}

func (e *Engine) refreshFlowDeps() internalflows.RefreshDeps {
	return internalflows.RefreshDeps{
		ParseRefresh: e.jwtManager.ParseRefresh,
		FindUserByID: e.findUserByID,
		IssueTokens:  e.jwtManager.IssuePair,
		MetricInc: func(id int) {
			e.metricInc(MetricID(id))
		},
		Metrics: internalflows.RefreshMetrics{
			RefreshSuccess: int(MetricRefreshSuccess),
			RefreshFailure: int(MetricRefreshFailure),
		},
	}
}

func (e *Engine) validateFlowDeps() internalflows.ValidateDeps {
	deps := internalflows.ValidateDeps{
		ParseAccess: e.jwtManager.ParseAccess,
		Now:         time.Now,
		Metrics: internalflows.ValidateMetrics{
			ValidateLatency: int(MetricValidateLatency),
		},
	}
	if e.metrics.LatencyEnabled() {
		deps.Observe = func(id int, d time.Duration) {
			e.metricObserve(MetricID(id), d)
		}
	}
	return deps
}
