package prometheus

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/MrEthical07/otpauth"
)

type fakeSource struct {
	snapshot otpauth.MetricsSnapshot
}

func (f fakeSource) MetricsSnapshot() otpauth.MetricsSnapshot { return f.snapshot }

type healthySource struct {
	fakeSource
	health otpauth.HealthStatus
}

func (h healthySource) Health(context.Context) otpauth.HealthStatus { return h.health }

func scrape(t *testing.T, exp *PrometheusExporter) string {
	t.Helper()
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestDisabledMetricsEmitNothing(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: otpauth.MetricsSnapshot{
			Counters:   map[otpauth.MetricID]uint64{},
			Histograms: map[otpauth.MetricID][]uint64{},
		},
	})

	out := scrape(t, exp)
	if strings.Contains(out, "otpauth_") {
		t.Fatalf("expected no otpauth series, got:\n%s", out)
	}
}

func TestScrapeIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: otpauth.MetricsSnapshot{
			Counters: map[otpauth.MetricID]uint64{
				otpauth.MetricLoginSuccess: 7,
				otpauth.MetricOTPSent:      2,
			},
			Histograms: map[otpauth.MetricID][]uint64{
				otpauth.MetricValidateLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
	})

	out := scrape(t, exp)
	for _, want := range []string{
		"otpauth_login_success_total 7",
		"otpauth_otp_sent_total 2",
		"otpauth_register_started_total 0",
		`otpauth_validate_latency_seconds_bucket{le="0.005"} 1`,
		`otpauth_validate_latency_seconds_bucket{le="0.5"} 28`,
		`otpauth_validate_latency_seconds_bucket{le="+Inf"} 36`,
		"otpauth_validate_latency_seconds_count 36",
		"go_goroutines",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestExporterRegistersInExistingRegistry(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: otpauth.MetricsSnapshot{
			Counters: map[otpauth.MetricID]uint64{otpauth.MetricRefreshFailure: 3},
		},
	})

	reg := prom.NewRegistry()
	if err := reg.Register(exp); err != nil {
		t.Fatalf("Register: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "otpauth_refresh_failure_total" {
			found = true
			if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 3 {
				t.Fatalf("value = %v, want 3", got)
			}
		}
	}
	if !found {
		t.Fatal("otpauth_refresh_failure_total not gathered")
	}
}

func TestStoreProbeExportedWithMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(healthySource{
		health: otpauth.HealthStatus{StoreAvailable: true, StoreLatency: 250 * time.Millisecond},
	})

	out := scrape(t, exp)
	for _, want := range []string{"otpauth_store_up 1", "otpauth_store_probe_seconds 0.25"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "otpauth_login_success_total") {
		t.Fatalf("unexpected counters while disabled:\n%s", out)
	}

	down := NewPrometheusExporterFromSource(healthySource{})
	if out := scrape(t, down); !strings.Contains(out, "otpauth_store_up 0") {
		t.Fatalf("expected store down in:\n%s", out)
	}
}

func TestNilSourceCollectsNothing(t *testing.T) {
	exp := NewPrometheusExporterFromSource(nil)
	ch := make(chan prom.Metric, 64)
	exp.Collect(ch)
	close(ch)
	if len(ch) != 0 {
		t.Fatalf("expected no metrics, got %d", len(ch))
	}
}
