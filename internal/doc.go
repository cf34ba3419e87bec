// Package internal contains helpers that are intentionally private to otpauth.
//
// # Sub-packages
//
//   - errutil: oops-aware structured error logging
//   - flows: pure-function flow orchestrators for every Engine operation
//   - keys: ephemeral store key namespace
//   - kv: TTL key/value store (Redis and in-memory)
//   - limiters: OTP and login lockout state machines
//   - logging: slog setup with trace context
//   - otp: OTP issuance and verification
//   - security: configuration posture report
//   - stores: pending registration and change-password grant records
//
// # What this package must NOT do
//
//   - Export types that appear in the public otpauth API.
//   - Be imported by any package outside the otpauth module.
package internal
