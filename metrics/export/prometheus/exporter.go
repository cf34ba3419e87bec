package prometheus

import (
	"context"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() otpauth.MetricsSnapshot
}

// healthSource is optional. When the source implements it, every scrape
// probes the ephemeral store.
type healthSource interface {
	Health(ctx context.Context) otpauth.HealthStatus
}

const healthProbeTimeout = 2 * time.Second

// PrometheusExporter is a prom.Collector over the engine counters.
type PrometheusExporter struct {
	source       metricsSource
	counters     []*prom.Desc
	histograms   []*prom.Desc
	storeUp      *prom.Desc
	storeLatency *prom.Desc
}

var _ prom.Collector = (*PrometheusExporter)(nil)

// NewPrometheusExporter creates an exporter that reads from engine.
func NewPrometheusExporter(engine *otpauth.Engine) *PrometheusExporter {
	return NewPrometheusExporterFromSource(engine)
}

// NewPrometheusExporterFromSource creates an exporter from any snapshot source.
func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	p := &PrometheusExporter{
		source:     source,
		counters:   make([]*prom.Desc, len(internaldefs.CounterDefs)),
		histograms: make([]*prom.Desc, len(internaldefs.HistogramDefs)),
		storeUp: prom.NewDesc("otpauth_store_up",
			"Whether the ephemeral store answered the last probe.", nil, nil),
		storeLatency: prom.NewDesc("otpauth_store_probe_seconds",
			"Duration of the last ephemeral store probe.", nil, nil),
	}
	for i, def := range internaldefs.CounterDefs {
		p.counters[i] = prom.NewDesc(def.Name, def.Help, nil, nil)
	}
	for i, def := range internaldefs.HistogramDefs {
		p.histograms[i] = prom.NewDesc(def.Name, def.Help, nil, nil)
	}
	return p
}

func (p *PrometheusExporter) Describe(ch chan<- *prom.Desc) {
	for _, d := range p.counters {
		ch <- d
	}
	for _, d := range p.histograms {
		ch <- d
	}
	ch <- p.storeUp
	ch <- p.storeLatency
}

// Collect skips the engine counters while metrics are disabled. The store
// probe is reported regardless.
func (p *PrometheusExporter) Collect(ch chan<- prom.Metric) {
	if p == nil || p.source == nil {
		return
	}

	if hs, ok := p.source.(healthSource); ok {
		ctx, cancel := context.WithTimeout(context.Background(), healthProbeTimeout)
		h := hs.Health(ctx)
		cancel()
		up := 0.0
		if h.StoreAvailable {
			up = 1
		}
		ch <- prom.MustNewConstMetric(p.storeUp, prom.GaugeValue, up)
		ch <- prom.MustNewConstMetric(p.storeLatency, prom.GaugeValue, h.StoreLatency.Seconds())
	}

	snapshot := p.source.MetricsSnapshot()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 {
		return
	}

	for i, def := range internaldefs.CounterDefs {
		ch <- prom.MustNewConstMetric(p.counters[i], prom.CounterValue, float64(snapshot.Counters[def.ID]))
	}

	for i, def := range internaldefs.HistogramDefs {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramBounds))
		for j, le := range internaldefs.HistogramBounds {
			buckets[le] = cumulative[j]
		}
		// The engine keeps no sum.
		ch <- prom.MustNewConstHistogram(p.histograms[i], cumulative[len(cumulative)-1], 0, buckets)
	}
}

// Registry returns a fresh registry holding the exporter plus the Go and
// process collectors.
func (p *PrometheusExporter) Registry() *prom.Registry {
	registry := prom.NewRegistry()
	registry.MustRegister(p)
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// Handler serves the exporter's registry in the Prometheus text format.
func (p *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(p.Registry(), promhttp.HandlerOpts{})
}
