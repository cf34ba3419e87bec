package internaldefs

import (
	"strconv"

	"github.com/MrEthical07/otpauth"
)

// CounterDef names one engine counter for exporters.
type CounterDef struct {
	ID   otpauth.MetricID
	Name string
	Help string
}

// HistogramDef names one engine histogram for exporters.
type HistogramDef struct {
	ID   otpauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	counter(otpauth.MetricRegisterStarted, "Registrations that sent an activation OTP."),
	counter(otpauth.MetricRegisterDuplicate, "Registrations rejected because the email exists."),
	counter(otpauth.MetricRegistrationVerified, "Registrations completed by OTP."),
	counter(otpauth.MetricOTPSent, "OTP mails sent."),
	counter(otpauth.MetricOTPRestricted, "OTP requests refused by cooldown, spam lock or lock."),
	counter(otpauth.MetricOTPVerifyFailure, "Incorrect OTP submissions."),
	counter(otpauth.MetricLoginSuccess, "Successful logins."),
	counter(otpauth.MetricLoginFailure, "Failed logins."),
	counter(otpauth.MetricLoginRateLimited, "Logins refused by the lockout."),
	counter(otpauth.MetricPasswordResetRequest, "Password reset requests."),
	counter(otpauth.MetricPasswordResetConfirmed, "Password reset OTPs confirmed."),
	counter(otpauth.MetricPasswordResetSuccess, "Passwords reset."),
	counter(otpauth.MetricPasswordResetRejected, "Password resets rejected without a grant or with the same password."),
	counter(otpauth.MetricRefreshSuccess, "Successful token refreshes."),
	counter(otpauth.MetricRefreshFailure, "Failed token refreshes."),
	counter(otpauth.MetricInternalFailure, "Operations that failed on a backend."),
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: otpauth.MetricValidateLatency, Name: "otpauth_validate_latency_seconds", Help: "Access token validation latency."},
}

// BucketCount is the number of engine histogram buckets, +Inf included.
const BucketCount = len(otpauth.LatencyBucketBounds) + 1

// HistogramBounds are the engine bucket upper bounds in seconds. The last
// bucket is unbounded.
var HistogramBounds = func() []float64 {
	out := make([]float64, len(otpauth.LatencyBucketBounds))
	for i, d := range otpauth.LatencyBucketBounds {
		out[i] = d.Seconds()
	}
	return out
}()

func counter(id otpauth.MetricID, help string) CounterDef {
	return CounterDef{ID: id, Name: "otpauth_" + id.String() + "_total", Help: help}
}

// BucketLabel renders the upper bound of bucket i the way Prometheus
// writes its le label. The bucket past the last bound is "+Inf".
func BucketLabel(i int) string {
	if i < 0 || i >= len(HistogramBounds) {
		return "+Inf"
	}
	return strconv.FormatFloat(HistogramBounds[i], 'g', -1, 64)
}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
