// Package stores persists the short-lived records of the OTP flows on top of
// an ephemeral kv.Store.
//
// # Design
//
// A pending registration is a versioned, binary-encoded record keyed by
// email and written with a TTL; it carries the already hashed password and
// nothing else secret. A change-password grant is a bare marker whose
// presence authorizes exactly one password change.
//
// # Architecture boundaries
//
// This package owns encoding and key layout for transient records. It does
// NOT send mail, verify codes or enforce rate limits; those belong to
// internal/otp, internal/limiters and the flow functions in internal/flows.
package stores
