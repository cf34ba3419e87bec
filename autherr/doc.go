// Package autherr defines the structured error type shared by the otpauth
// engine, its internal state machines and its transports.
//
// Every expected outcome (bad input, wrong OTP, an active lock) is an *Error
// with a [Kind] and a stable Code. Unexpected backend failures are wrapped with
// [Wrap] into an operation-scoped KindInternal error whose cause is an oops
// error carrying the operation name and a stacktrace.
//
// # What this package must NOT do
//
//   - Import any other otpauth package.
//   - Put backend detail into Message.
package autherr
