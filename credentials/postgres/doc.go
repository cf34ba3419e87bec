// Package postgres is a PostgreSQL CredentialStore for otpauth.
//
// Users live in a single users table keyed by a UUID with a unique email.
// The schema ships as embedded goose migrations; run Migrate once before
// serving, or use the migrate command of cmd/otpauth.
package postgres
