package autherr

// Kind-only sentinels. errors.Is(err, ErrValidation) matches every
// validation error regardless of its code.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrAuth              = &Error{Kind: KindAuth}
	ErrTemporarilyLocked = &Error{Kind: KindTemporarilyLocked}
	ErrTooManyAttempts   = &Error{Kind: KindTooManyAttempts}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInternal          = &Error{Kind: KindInternal}
)

var (
	ErrInvalidInput = New(KindValidation, "INVALID_INPUT", "Validation failed")
	ErrEmailExists  = New(KindValidation, "EMAIL_EXISTS", "User already exists with this email!")
	ErrInvalidOTP   = New(KindValidation, "INVALID_OTP", "incorrect OTP")
	ErrSamePassword = New(KindValidation, "SAME_PASSWORD", "New password cannot be the same as the old password")

	ErrInvalidCredentials = New(KindAuth, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrResetNotAuthorized = New(KindAuth, "RESET_NOT_AUTHORIZED", "Please verify the OTP before resetting your password")
	ErrInvalidToken       = New(KindAuth, "INVALID_TOKEN", "Invalid or expired token")

	ErrOTPLocked     = New(KindTemporarilyLocked, "OTP_LOCKED", "OTP requests are temporarily locked")
	ErrOTPSpamLocked = New(KindTemporarilyLocked, "OTP_SPAM_LOCKED", "Too many OTP requests. 1 hour lock applied.")
	ErrOTPCooldown   = New(KindTemporarilyLocked, "OTP_COOLDOWN", "Please wait before requesting another OTP.")

	ErrOTPAttemptsExceeded = New(KindTooManyAttempts, "OTP_ATTEMPTS_EXCEEDED", "Too many failed attempts. OTP requests are temporarily locked.")
	ErrLoginRateLimited    = New(KindTooManyAttempts, "LOGIN_RATE_LIMITED", "Too many login attempts. Please try again later.")

	ErrOTPExpired     = New(KindNotFound, "OTP_EXPIRED", "OTP expired or not found")
	ErrInvalidSession = New(KindNotFound, "INVALID_SESSION", "Invalid session. Please register again.")
	ErrUserNotFound   = New(KindNotFound, "USER_NOT_FOUND", "User not found")

	ErrRegistrationFailed  = New(KindInternal, "REGISTRATION_FAILED", "Registration failed")
	ErrVerificationFailed  = New(KindInternal, "VERIFICATION_FAILED", "Verification failed")
	ErrLoginFailed         = New(KindInternal, "LOGIN_FAILED", "Login failed")
	ErrPasswordResetFailed = New(KindInternal, "PASSWORD_RESET_FAILED", "Password reset failed")
	ErrTokenRefreshFailed  = New(KindInternal, "TOKEN_REFRESH_FAILED", "Token refresh failed")
)
