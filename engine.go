package otpauth

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrEthical07/otpauth/autherr"
	"github.com/MrEthical07/otpauth/internal/errutil"
	"github.com/MrEthical07/otpauth/internal/flows"
	"github.com/MrEthical07/otpauth/internal/kv"
	"github.com/MrEthical07/otpauth/internal/limiters"
	"github.com/MrEthical07/otpauth/internal/otp"
	"github.com/MrEthical07/otpauth/internal/stores"
	"github.com/MrEthical07/otpauth/jwt"
	"github.com/MrEthical07/otpauth/password"
)

// Engine runs registration, login and password reset over an ephemeral
// store and a CredentialStore. Create it with a Builder. All methods are
// safe for concurrent use.
type Engine struct {
	config       Config
	store        kv.Store
	otpLimiter   *limiters.OTPLimiter
	loginLimiter *limiters.LoginLimiter
	otp          *otp.Engine
	pending      *stores.PendingRegistrationStore
	grants       *stores.ChangePasswordGrantStore
	credentials  CredentialStore
	passwordHash *password.Argon2
	dummyHash    string
	jwtManager   *jwt.Manager
	metrics      *Metrics
	logger       *slog.Logger
	validate     *validator.Validate
	flows        flows.Service
}

func (e *Engine) ready() bool {
	return e != nil && e.flows.Initialized()
}

// Config returns a copy of the configuration the engine was built with.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// MetricsSnapshot returns the in-process counters and latency histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) warn(msg string, args ...any) {
	e.logger.Warn(msg, args...)
}

// finish logs the outcome of an operation and returns err unchanged.
// Internal failures are logged with their oops context and counted; locks
// and rate limits are logged at warn; everything else at debug.
func (e *Engine) finish(ctx context.Context, op, email string, err error) error {
	attrs := []any{"op", op, "email", email}
	if ip := clientIPFromContext(ctx); ip != "" {
		attrs = append(attrs, "client_ip", ip)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, "request_id", id)
	}

	switch autherr.KindOf(err) {
	case autherr.KindUnknown:
		if err == nil {
			e.logger.DebugContext(ctx, "operation succeeded", attrs...)
			return nil
		}
		e.metricInc(MetricInternalFailure)
		errutil.LogError(ctx, e.logger.With(attrs...), "operation failed", err)
	case autherr.KindInternal:
		e.metricInc(MetricInternalFailure)
		errutil.LogError(ctx, e.logger.With(attrs...), "operation failed", err)
	case autherr.KindTemporarilyLocked, autherr.KindTooManyAttempts:
		e.logger.WarnContext(ctx, "operation throttled", append(attrs, "error", err)...)
	default:
		e.logger.DebugContext(ctx, "operation rejected", append(attrs, "error", err)...)
	}
	return err
}

func toFlowUser(u UserRecord) flows.UserRecord {
	return flows.UserRecord{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func fromFlowUser(u flows.UserRecord) UserRecord {
	return UserRecord{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func (e *Engine) findUserByEmail(ctx context.Context, email string) (flows.UserRecord, error) {
	user, err := e.credentials.FindByEmail(ctx, email)
	if err != nil {
		return flows.UserRecord{}, err
	}
	return toFlowUser(user), nil
}

func (e *Engine) findUserByID(ctx context.Context, id string) (flows.UserRecord, error) {
	user, err := e.credentials.FindByID(ctx, id)
	if err != nil {
		return flows.UserRecord{}, err
	}
	return toFlowUser(user), nil
}
