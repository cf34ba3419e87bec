// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunRegister, RunLogin, RunResetPassword, etc.) accepts a
// typed dependency struct of function fields and returns results without
// side effects beyond those dependencies. This keeps the Engine type thin and
// lets every branch be tested with fakes.
//
// # Error policy
//
// Structured *autherr.Error values raised by dependencies pass through
// unchanged. Any other failure is wrapped into the operation's internal
// error (REGISTRATION_FAILED, VERIFICATION_FAILED, LOGIN_FAILED,
// PASSWORD_RESET_FAILED, TOKEN_REFRESH_FAILED).
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import the root package (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency functions.
package flows
