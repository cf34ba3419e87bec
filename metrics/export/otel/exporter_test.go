package otel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrEthical07/otpauth"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot otpauth.MetricsSnapshot
}

func (f *fakeSource) MetricsSnapshot() otpauth.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := otpauth.MetricsSnapshot{
		Counters:   make(map[otpauth.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[otpauth.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

type healthySource struct {
	*fakeSource
	up bool
}

func (h healthySource) Health(context.Context) otpauth.HealthStatus {
	return otpauth.HealthStatus{StoreAvailable: h.up}
}

func newReader() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func findSum(rm metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || len(sum.DataPoints) == 0 {
				return 0, false
			}
			return sum.DataPoints[0].Value, true
		}
	}
	return 0, false
}

func findGauge(rm metricdata.ResourceMetrics, name string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			g, ok := m.Data.(metricdata.Gauge[int64])
			if !ok || len(g.DataPoints) == 0 {
				return 0, false
			}
			return g.DataPoints[0].Value, true
		}
	}
	return 0, false
}

func findBucket(rm metricdata.ResourceMetrics, name, le string) (int64, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			g, ok := m.Data.(metricdata.Gauge[int64])
			if !ok {
				return 0, false
			}
			for _, dp := range g.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key("le")); ok && v.AsString() == le {
					return dp.Value, true
				}
			}
		}
	}
	return 0, false
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newReader()
	meter := provider.Meter("otpauth-test")

	src := &fakeSource{
		snapshot: otpauth.MetricsSnapshot{
			Counters: map[otpauth.MetricID]uint64{
				otpauth.MetricLoginSuccess:     3,
				otpauth.MetricOTPVerifyFailure: 2,
			},
			Histograms: map[otpauth.MetricID][]uint64{
				otpauth.MetricValidateLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
	}

	exp, err := New(meter, src)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if v, ok := findSum(rm, "otpauth_login_success_total"); !ok || v != 3 {
		t.Fatalf("login success = %d, %v", v, ok)
	}
	if v, ok := findSum(rm, "otpauth_otp_verify_failure_total"); !ok || v != 2 {
		t.Fatalf("otp verify failure = %d, %v", v, ok)
	}
	if v, ok := findBucket(rm, "otpauth_validate_latency_seconds_bucket", "0.025"); !ok || v != 3 {
		t.Fatalf("bucket 0.025 = %d, %v", v, ok)
	}
	if v, ok := findBucket(rm, "otpauth_validate_latency_seconds_bucket", "+Inf"); !ok || v != 8 {
		t.Fatalf("bucket +Inf = %d, %v", v, ok)
	}
	if v, ok := findSum(rm, "otpauth_validate_latency_seconds_count"); !ok || v != 8 {
		t.Fatalf("count = %d, %v", v, ok)
	}
	if _, ok := findSum(rm, "otpauth_store_up"); ok {
		t.Fatal("store_up registered without a health source")
	}
}

func TestExporterPublishesStoreUp(t *testing.T) {
	reader, provider := newReader()
	meter := provider.Meter("otpauth-test")

	exp, err := New(meter, healthySource{fakeSource: &fakeSource{}, up: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = exp.Close() }()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if v, ok := findGauge(rm, "otpauth_store_up"); !ok || v != 1 {
		t.Fatalf("store_up = %d, %v", v, ok)
	}
}

func TestExporterRejectsNilArguments(t *testing.T) {
	_, provider := newReader()
	meter := provider.Meter("otpauth-test")

	if _, err := New(meter, nil); !errors.Is(err, ErrNilSource) {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := New(nil, &fakeSource{}); !errors.Is(err, ErrNilMeter) {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newReader()
	meter := provider.Meter("otpauth-test")

	src := &fakeSource{
		snapshot: otpauth.MetricsSnapshot{
			Counters: map[otpauth.MetricID]uint64{
				otpauth.MetricLoginSuccess: 1,
			},
			Histograms: map[otpauth.MetricID][]uint64{
				otpauth.MetricValidateLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := New(meter, src)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[otpauth.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}

var _ Source = (*otpauth.Engine)(nil)
