// Package kv provides the ephemeral, TTL-scoped key/value store every OTP,
// lockout and transient record lives in.
//
// # Implementations
//
//   - [RedisStore]: go-redis UniversalClient; required for multi-instance deployments.
//   - [MemoryStore]: mutex-guarded map with lazy expiry for single-instance use and tests.
//
// Only single-key atomicity is offered. Callers that read a counter and then
// act on it accept the resulting race.
//
// # What this package must NOT do
//
//   - Know any key names (see internal/keys).
//   - Treat a missing key as an error.
package kv
