package middleware

import "net/http"

// RequireAccess guards a handler with the bearer header or, failing that,
// the access_token cookie.
func RequireAccess(v Validator) func(http.Handler) http.Handler {
	return Guard(v, FromBearer, FromCookie(AccessCookie))
}
