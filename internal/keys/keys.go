// Package keys builds the ephemeral store key for every per-identity record.
//
// All keys share the layout <prefix>:<kind>:<identity>. Components that
// read each other's records (the OTP engine writes the lock, the limiter
// reads it) must go through this package so both sides agree on names.
package keys

const DefaultPrefix = "otpauth"

// Namespace scopes keys to a deployment prefix.
type Namespace struct {
	prefix string
}

func New(prefix string) Namespace {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Namespace{prefix: prefix}
}

func (n Namespace) key(kind, identity string) string {
	return n.prefix + ":" + kind + ":" + identity
}

func (n Namespace) OTP(identity string) string         { return n.key("otp", identity) }
func (n Namespace) OTPCooldown(identity string) string { return n.key("otp_cooldown", identity) }
func (n Namespace) OTPAttempts(identity string) string { return n.key("otp_attempts", identity) }
func (n Namespace) OTPLock(identity string) string     { return n.key("otp_lock", identity) }
func (n Namespace) OTPSpamLock(identity string) string { return n.key("otp_spam_lock", identity) }
func (n Namespace) OTPRequests(identity string) string {
	return n.key("otp_requests_count", identity)
}
func (n Namespace) Pending(identity string) string        { return n.key("pending", identity) }
func (n Namespace) ChangePassword(identity string) string { return n.key("change_password", identity) }
func (n Namespace) LoginAttempts(identity string) string  { return n.key("login_attempts", identity) }
