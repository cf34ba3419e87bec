package middleware

import "net/http"

// RequireBearer guards a handler with the Authorization header only. Use it
// for API clients that never carry the session cookies; cookie fallback
// would make such routes reachable by cross-site form posts.
func RequireBearer(v Validator) func(http.Handler) http.Handler {
	return Guard(v, FromBearer)
}
