package otpauth

import (
	"strconv"
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter or histogram.
type MetricID uint16

const (
	MetricRegisterStarted MetricID = iota
	MetricRegisterDuplicate
	MetricRegistrationVerified
	MetricOTPSent
	MetricOTPRestricted
	MetricOTPVerifyFailure
	MetricLoginSuccess
	MetricLoginFailure
	MetricLoginRateLimited
	MetricPasswordResetRequest
	MetricPasswordResetConfirmed
	MetricPasswordResetSuccess
	MetricPasswordResetRejected
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricInternalFailure
	MetricValidateLatency
	metricIDCount
)

// MetricIDCount is the number of defined metric IDs.
const MetricIDCount = int(metricIDCount)

var metricNames = [metricIDCount]string{
	MetricRegisterStarted:        "register_started",
	MetricRegisterDuplicate:      "register_duplicate",
	MetricRegistrationVerified:   "registration_verified",
	MetricOTPSent:                "otp_sent",
	MetricOTPRestricted:          "otp_restricted",
	MetricOTPVerifyFailure:       "otp_verify_failure",
	MetricLoginSuccess:           "login_success",
	MetricLoginFailure:           "login_failure",
	MetricLoginRateLimited:       "login_rate_limited",
	MetricPasswordResetRequest:   "password_reset_request",
	MetricPasswordResetConfirmed: "password_reset_confirmed",
	MetricPasswordResetSuccess:   "password_reset_success",
	MetricPasswordResetRejected:  "password_reset_rejected",
	MetricRefreshSuccess:         "refresh_success",
	MetricRefreshFailure:         "refresh_failure",
	MetricInternalFailure:        "internal_failure",
	MetricValidateLatency:        "validate_latency",
}

// String returns the snake_case name exporters build metric names from.
func (id MetricID) String() string {
	if id < metricIDCount {
		return metricNames[id]
	}
	return "metric_" + strconv.Itoa(int(id))
}

// LatencyBucketBounds are the inclusive upper bounds of the validate latency
// histogram. One more bucket collects everything slower.
var LatencyBucketBounds = [...]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
}

const latencyBucketCount = len(LatencyBucketBounds) + 1

// counters sit on separate cache lines so hot IDs do not contend.
type paddedCounter struct {
	atomic.Uint64
	_ [56]byte
}

// Metrics holds lock-free counters and the validate latency histogram.
// A nil or disabled *Metrics ignores every write.
type Metrics struct {
	enabled  bool
	latency  bool
	counters [metricIDCount]paddedCounter
	buckets  [latencyBucketCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters. Histogram buckets
// are non-cumulative.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
		latency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.latency
}

func (m *Metrics) Inc(id MetricID) {
	if !m.Enabled() || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Observe records d for histogram metrics. Only MetricValidateLatency is a
// histogram; other IDs are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if !m.LatencyEnabled() || id != MetricValidateLatency {
		return
	}
	m.buckets[latencyBucket(d)].Add(1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if !m.Enabled() {
		return s
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricValidateLatency {
			continue
		}
		s.Counters[id] = m.counters[id].Load()
	}
	if m.latency {
		buckets := make([]uint64, latencyBucketCount)
		for i := range buckets {
			buckets[i] = m.buckets[i].Load()
		}
		s.Histograms[MetricValidateLatency] = buckets
	}
	return s
}

func latencyBucket(d time.Duration) int {
	for i, bound := range LatencyBucketBounds {
		if d <= bound {
			return i
		}
	}
	return len(LatencyBucketBounds)
}
