package otpauth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/otpauth/internal/flows"
	"github.com/MrEthical07/otpauth/internal/keys"
	"github.com/MrEthical07/otpauth/internal/kv"
	"github.com/MrEthical07/otpauth/internal/limiters"
	"github.com/MrEthical07/otpauth/internal/logging"
	"github.com/MrEthical07/otpauth/internal/otp"
	"github.com/MrEthical07/otpauth/internal/stores"
	"github.com/MrEthical07/otpauth/jwt"
	"github.com/MrEthical07/otpauth/mail"
	"github.com/MrEthical07/otpauth/password"
)

// EphemeralStore is the TTL key/value contract every OTP, lockout and
// pending-registration record lives in. Implementations must be safe for
// concurrent use and report absent keys as ok == false, never as an error.
type EphemeralStore = kv.Store

// NewMemoryStore returns a process-local EphemeralStore for single-instance
// deployments and tests.
func NewMemoryStore() EphemeralStore {
	return kv.NewMemoryStore()
}

// NewRedisStore returns an EphemeralStore backed by Redis. Any client
// shape works: single node, sentinel or cluster.
func NewRedisStore(client redis.UniversalClient) EphemeralStore {
	return kv.NewRedisStore(client)
}

// Builder assembles an Engine. Configure it once during initialization;
// Build may only be called once.
type Builder struct {
	config Config

	redis       redis.UniversalClient
	store       EphemeralStore
	credentials CredentialStore
	mailer      mail.Sender
	logger      *slog.Logger

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the ephemeral state with Redis. It is ignored when
// WithStore is also used.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithStore(store EphemeralStore) *Builder {
	b.store = store
	return b
}

func (b *Builder) WithCredentialStore(cs CredentialStore) *Builder {
	b.credentials = cs
	return b
}

func (b *Builder) WithMailer(sender mail.Sender) *Builder {
	b.mailer = sender
	return b
}

// WithLogger sets the engine logger. Without one the engine logs nothing.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires every component. It fails
// when token secrets are missing, short or shared, or when a required
// collaborator was not provided.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil && b.redis != nil {
		store = kv.NewRedisStore(b.redis)
	}
	if store == nil {
		return nil, errors.New("ephemeral store required: use WithRedis or WithStore")
	}
	if b.credentials == nil {
		return nil, errors.New("credential store required")
	}
	if b.mailer == nil {
		return nil, errors.New("mail sender required")
	}

	logger := b.logger
	if logger == nil {
		logger = logging.Discard()
	}

	ns := keys.New(cfg.KeyPrefix)

	engine := &Engine{
		config:      cloneConfig(cfg),
		store:       store,
		credentials: b.credentials,
		logger:      logger,
		metrics:     NewMetrics(cfg.Metrics),
		validate:    newValidator(),
	}

	// -------- LIMITERS --------
	engine.otpLimiter = limiters.NewOTPLimiter(store, ns, limiters.OTPConfig{
		MaxRequests:      cfg.OTP.MaxRequests,
		RequestWindow:    cfg.OTP.RequestWindow,
		SpamLockDuration: cfg.OTP.SpamLockDuration,
	})
	engine.loginLimiter = limiters.NewLoginLimiter(store, ns, limiters.LoginConfig{
		MaxAttempts: cfg.Login.MaxAttempts,
		Window:      cfg.Login.Window,
	})

	// -------- OTP ENGINE --------
	engine.otp = otp.New(store, ns, b.mailer, otp.Config{
		Digits:        cfg.OTP.Digits,
		CodeTTL:       cfg.OTP.CodeTTL,
		CooldownTTL:   cfg.OTP.CooldownTTL,
		MaxAttempts:   cfg.OTP.MaxVerifyAttempts,
		AttemptWindow: cfg.OTP.AttemptWindow,
		LockDuration:  cfg.OTP.LockDuration,
		Subject:       cfg.OTP.Subject,
	})

	// -------- TRANSIENT RECORDS --------
	engine.pending = stores.NewPendingRegistrationStore(store, ns)
	engine.grants = stores.NewChangePasswordGrantStore(store, ns)

	// -------- PASSWORDS --------
	ph, err := password.NewArgon2(password.Config{
		Memory:           cfg.Password.Memory,
		Time:             cfg.Password.Time,
		Parallelism:      cfg.Password.Parallelism,
		SaltLength:       cfg.Password.SaltLength,
		KeyLength:        cfg.Password.KeyLength,
		MaxPasswordBytes: cfg.Password.MaxPasswordBytes,
	})
	if err != nil {
		return nil, err
	}
	engine.passwordHash = ph

	dummy, err := newDummyHash(ph)
	if err != nil {
		return nil, err
	}
	engine.dummyHash = dummy

	// -------- TOKENS --------
	jm, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		AccessSecret:  cloneBytes(cfg.JWT.AccessSecret),
		RefreshSecret: cloneBytes(cfg.JWT.RefreshSecret),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
		RequireIAT:    cfg.JWT.RequireIAT,
		MaxFutureIAT:  cfg.JWT.MaxFutureIAT,
	})
	if err != nil {
		return nil, err
	}
	engine.jwtManager = jm

	engine.flows = flows.New(flows.Deps{
		Register:           engine.registerFlowDeps(),
		VerifyRegistration: engine.verifyRegistrationFlowDeps(),
		Login:              engine.loginFlowDeps(),
		PasswordReset:      engine.passwordResetFlowDeps(),
		Refresh:            engine.refreshFlowDeps(),
		Validate:           engine.validateFlowDeps(),
	})

	b.built = true

	return engine, nil
}

// newDummyHash hashes a random secret nobody knows. Logins for unknown
// emails verify against it.
func newDummyHash(ph *password.Argon2) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return ph.Hash(hex.EncodeToString(buf))
}
