// Package otp issues numeric one-time codes by mail and verifies them.
//
// A code lives under the identity's otp key for CodeTTL; issuing one also
// sets the resend cooldown marker. Wrong guesses are counted per identity
// and the MaxAttempts-th wrong guess sets the lock marker and discards the
// code. Locks and cooldowns are enforced for new requests by
// internal/limiters, which reads the same keys.
package otp
