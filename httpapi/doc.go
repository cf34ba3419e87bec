// Package httpapi exposes an *otpauth.Engine over JSON/HTTP.
//
// Routes live under /auth. Tokens travel in HttpOnly cookies: access_token
// for 15 minutes and refresh_token for 7 days by default. Engine errors are
// rendered as
//
//	{"error", "code", "details", "attemptsLeft", "statusCode", "timestamp", "path"}
//
// with a "stack" field only when Options.Development is set.
package httpapi
