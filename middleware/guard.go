package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/otpauth/jwt"
)

// AccessCookie is the cookie the HTTP transport stores the access token in.
const AccessCookie = "access_token"

// Validator is satisfied by *otpauth.Engine.
type Validator interface {
	Validate(ctx context.Context, accessToken string) (*jwt.Claims, error)
}

// TokenSource extracts a raw token from a request.
type TokenSource func(r *http.Request) (string, bool)

type claimsContextKey struct{}

// ClaimsFromContext returns the claims injected by a guard.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.Claims)
	return claims, ok && claims != nil
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// Guard rejects requests without a valid access token from any of sources
// with 401, and otherwise serves next with the claims in the context.
func Guard(v Validator, sources ...TokenSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := firstToken(r, sources)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.Validate(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func firstToken(r *http.Request, sources []TokenSource) (string, bool) {
	for _, source := range sources {
		if token, ok := source(r); ok {
			return token, true
		}
	}
	return "", false
}

// FromBearer reads "Authorization: Bearer <token>".
func FromBearer(r *http.Request) (string, bool) {
	return bearerToken(r.Header.Get("Authorization"))
}

// FromCookie reads the named cookie.
func FromCookie(name string) TokenSource {
	return func(r *http.Request) (string, bool) {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			return "", false
		}
		return c.Value, true
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
