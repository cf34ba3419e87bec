// Package limiters implements the anti-abuse state machines that sit in
// front of OTP issuance and password login.
//
// # Limiters
//
//   - [OTPLimiter]: lock, spam lock and cooldown checks, plus the per-identity
//     OTP request counter that escalates into the spam lock.
//   - [LoginLimiter]: failed-login counter with a sliding lockout window.
//
// [OTPState] is the explicit per-identity view (locked, spam locked, code
// active, no code) computed from the current keys. CheckRestrictions fills
// its marker fields and returns [OTPState.RequestRestriction], so the
// precedence lives in one place.
//
// All limiters are nil-safe: calling any method on a nil receiver is a no-op.
//
// # Architecture boundaries
//
// Expected outcomes are returned as *autherr.Error values. Store failures are
// returned as-is (wrapping kv.ErrUnavailable) for the flow layer to scope.
//
// # What this package must NOT do
//
//   - Import otpauth or internal/flows.
//   - Generate, store or compare OTP codes (see internal/otp).
package limiters
