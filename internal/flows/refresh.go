package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/otpauth/autherr"
	"github.com/MrEthical07/otpauth/jwt"
)

const opRefresh = "refresh"

type RefreshMetrics struct {
	RefreshSuccess int
	RefreshFailure int
}

// RefreshDeps captures refresh dependencies.
type RefreshDeps struct {
	ParseRefresh func(string) (*jwt.Claims, error)
	FindUserByID func(context.Context, string) (UserRecord, error)
	IssueTokens  func(subject string) (jwt.Pair, error)

	MetricInc func(int)
	Metrics   RefreshMetrics
}

// RunRefresh issues a new pair for a valid refresh token whose user still
// exists. Every token problem maps to INVALID_TOKEN.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) (*LoginResult, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.ParseRefresh == nil || deps.FindUserByID == nil || deps.IssueTokens == nil {
		return nil, autherr.Wrap(autherr.ErrTokenRefreshFailed, opRefresh, ErrNotReady)
	}

	claims, err := deps.ParseRefresh(refreshToken)
	if err != nil {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		return nil, autherr.ErrInvalidToken
	}

	user, err := deps.FindUserByID(ctx, claims.ID)
	if err != nil {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		if errors.Is(err, autherr.ErrUserNotFound) {
			return nil, autherr.ErrInvalidToken
		}
		return nil, autherr.Wrap(autherr.ErrTokenRefreshFailed, opRefresh, err)
	}

	pair, err := deps.IssueTokens(user.ID)
	if err != nil {
		deps.MetricInc(deps.Metrics.RefreshFailure)
		return nil, autherr.Wrap(autherr.ErrTokenRefreshFailed, opRefresh, err)
	}

	deps.MetricInc(deps.Metrics.RefreshSuccess)
	return &LoginResult{User: user, Tokens: tokenPairFrom(pair)}, nil
}
