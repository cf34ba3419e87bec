// Package middleware exposes HTTP middleware that admits requests carrying
// a valid otpauth access token.
//
// # Guards
//
//   - [RequireAccess] reads the Authorization bearer token, falling back to
//     the access_token cookie set at login.
//   - [RequireBearer] accepts the Authorization header only, for clients
//     that do not carry cookies.
//
// Each guard calls Engine.Validate and injects the validated claims into the
// request context; read them with [ClaimsFromContext].
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access the ephemeral store or the credential store.
package middleware
