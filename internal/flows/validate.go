package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/otpauth/autherr"
	"github.com/MrEthical07/otpauth/jwt"
)

type ValidateMetrics struct {
	ValidateLatency int
}

// ValidateDeps captures access-token validation dependencies.
type ValidateDeps struct {
	ParseAccess func(string) (*jwt.Claims, error)
	Now         func() time.Time
	Observe     func(int, time.Duration)
	Metrics     ValidateMetrics
}

// RunValidate verifies an access token. It is stateless: no store is read.
func RunValidate(_ context.Context, token string, deps ValidateDeps) (*jwt.Claims, error) {
	if deps.ParseAccess == nil {
		return nil, autherr.ErrInvalidToken
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Observe != nil {
		start := deps.Now()
		defer func() {
			deps.Observe(deps.Metrics.ValidateLatency, deps.Now().Sub(start))
		}()
	}

	if token == "" {
		return nil, autherr.ErrInvalidToken
	}
	claims, err := deps.ParseAccess(token)
	if err != nil {
		return nil, autherr.ErrInvalidToken
	}
	return claims, nil
}
