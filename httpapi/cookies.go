package httpapi

import (
	"net/http"
	"time"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/middleware"
)

const (
	AccessCookie  = middleware.AccessCookie
	RefreshCookie = "refresh_token"
)

func (h *Handler) setSessionCookies(w http.ResponseWriter, res *otpauth.LoginResult) {
	http.SetCookie(w, h.cookie(AccessCookie, res.AccessToken, res.AccessMaxAge))
	http.SetCookie(w, h.cookie(RefreshCookie, res.RefreshToken, res.RefreshMaxAge))
}

func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		c := h.cookie(name, "", 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func (h *Handler) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.opts.CookieDomain,
		MaxAge:   int(maxAge / time.Second),
		Secure:   !h.opts.CookieInsecure,
		HttpOnly: true,
		SameSite: h.opts.CookieSameSite,
	}
}

// ParseSameSite maps "strict", "lax" or "none" to an http.SameSite. Anything
// else yields None.
func ParseSameSite(value string) http.SameSite {
	switch value {
	case "strict", "Strict":
		return http.SameSiteStrictMode
	case "lax", "Lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteNoneMode
	}
}
