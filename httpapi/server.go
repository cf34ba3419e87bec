package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/internal/logging"
	"github.com/MrEthical07/otpauth/jwt"
	"github.com/MrEthical07/otpauth/middleware"
)

// Auth is the engine surface the handlers call. *otpauth.Engine satisfies it.
type Auth interface {
	Register(ctx context.Context, req otpauth.RegisterRequest) (*otpauth.Result, error)
	VerifyRegistration(ctx context.Context, email, code string) (*otpauth.UserRecord, error)
	Login(ctx context.Context, email, password string) (*otpauth.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*otpauth.LoginResult, error)
	Validate(ctx context.Context, accessToken string) (*jwt.Claims, error)
	RequestPasswordReset(ctx context.Context, email string) (*otpauth.Result, error)
	ConfirmPasswordResetOTP(ctx context.Context, email, code string) (*otpauth.Result, error)
	ResetPassword(ctx context.Context, email, newPassword string) (*otpauth.Result, error)
	Health(ctx context.Context) otpauth.HealthStatus
}

// Options configures the transport.
type Options struct {
	Logger *slog.Logger

	// Development adds the oops stacktrace of internal failures to error
	// responses.
	Development bool

	// Cookies. SameSite defaults to None, which browsers only accept on
	// Secure cookies.
	CookieSameSite http.SameSite
	CookieInsecure bool
	CookieDomain   string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// Handler serves the auth routes.
type Handler struct {
	auth Auth
	opts Options
	l    *slog.Logger
	now  func() time.Time
}

// New returns a Handler. A nil logger discards.
func New(auth Auth, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.CookieSameSite == 0 {
		opts.CookieSameSite = http.SameSiteNoneMode
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Handler{auth: auth, opts: opts, l: opts.Logger, now: time.Now}
}

// Routes returns the router wrapped in recover, client IP and request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /auth/register", h.Register)
	mux.HandleFunc("POST /auth/verify", h.VerifyRegistration)
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/refresh", h.Refresh)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("POST /auth/forgot-password", h.RequestPasswordReset)
	mux.HandleFunc("POST /auth/verify-forgot-password", h.ConfirmPasswordResetOTP)
	mux.HandleFunc("POST /auth/reset-password", h.ResetPassword)
	mux.Handle("GET /auth/me", middleware.RequireAccess(h.auth)(http.HandlerFunc(h.Me)))

	mux.HandleFunc("/", h.notFound)

	return use(mux, h.recoverPanics, h.withRequestContext, h.logRequests)
}

func use(handler http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}
