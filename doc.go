// Package otpauth provides an OTP-gated authentication engine: email
// verified registration, brute-force protected password login and an
// OTP-gated password reset, issuing HS256 access and refresh tokens.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// otpauth is the public surface. It exposes [Engine], [Builder], [Config],
// the [CredentialStore] contract and the structured [Error] model. Every
// short-lived record (codes, cooldowns, locks, attempt counters, pending
// registrations, change-password grants) lives in an [EphemeralStore]
// under keys of the form <prefix>:<kind>:<email>. Flow orchestration, the
// OTP engine and the limiters live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Persist a user before the email is verified.
//   - Keep state outside the EphemeralStore and the CredentialStore.
//   - Tell callers whether an email has an account, on login or on reset.
//
// # Errors
//
// Expected outcomes are *[Error] values with a [Kind] and a stable code.
// Use errors.Is with the kind sentinels ([ErrTemporarilyLocked],
// [ErrTooManyAttempts], ...) or the coded ones ([ErrOTPCooldown], ...).
// Unexpected failures are wrapped into an operation-scoped internal error
// whose message is safe to show and whose cause is only logged.
package otpauth
