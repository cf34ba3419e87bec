package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// Source is what the exporter reads on every collection. *otpauth.Engine
// satisfies it.
type Source interface {
	MetricsSnapshot() otpauth.MetricsSnapshot
}

// HealthSource adds a store probe. When the Source implements it, the
// exporter publishes otpauth_store_up.
type HealthSource interface {
	Health(ctx context.Context) otpauth.HealthStatus
}

type histogramInstruments struct {
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableCounter
}

// Exporter publishes engine metrics as observable instruments. A histogram
// becomes one cumulative gauge carrying an "le" attribute per bucket, plus a
// sample counter.
type Exporter struct {
	source       Source
	registration metric.Registration
	counters     map[otpauth.MetricID]metric.Int64ObservableCounter
	histograms   map[otpauth.MetricID]histogramInstruments
	storeUp      metric.Int64ObservableGauge
	leAttrs      []metric.ObserveOption
}

// New registers instruments on meter that read from source.
func New(meter metric.Meter, source Source) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{
		source:     source,
		counters:   make(map[otpauth.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
		histograms: make(map[otpauth.MetricID]histogramInstruments, len(internaldefs.HistogramDefs)),
	}
	for i := 0; i <= len(internaldefs.HistogramBounds); i++ {
		e.leAttrs = append(e.leAttrs, metric.WithAttributes(attribute.String("le", internaldefs.BucketLabel(i))))
	}

	var observables []metric.Observable
	for _, def := range internaldefs.CounterDefs {
		c, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", def.Name, err)
		}
		e.counters[def.ID] = c
		observables = append(observables, c)
	}

	for _, def := range internaldefs.HistogramDefs {
		buckets, err := meter.Int64ObservableGauge(def.Name+"_bucket",
			metric.WithDescription(def.Help+" Cumulative count per upper bound."),
			metric.WithUnit("{sample}"),
		)
		if err != nil {
			return nil, fmt.Errorf("histogram buckets %s: %w", def.Name, err)
		}
		count, err := meter.Int64ObservableCounter(def.Name+"_count", metric.WithDescription(def.Help+" Sample count."))
		if err != nil {
			return nil, fmt.Errorf("histogram count %s: %w", def.Name, err)
		}
		e.histograms[def.ID] = histogramInstruments{buckets: buckets, count: count}
		observables = append(observables, buckets, count)
	}

	if _, ok := source.(HealthSource); ok {
		up, err := meter.Int64ObservableGauge("otpauth_store_up",
			metric.WithDescription("Whether the ephemeral store answered the last probe."),
		)
		if err != nil {
			return nil, fmt.Errorf("store up gauge: %w", err)
		}
		e.storeUp = up
		observables = append(observables, up)
	}

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func (e *Exporter) observe(ctx context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for id, c := range e.counters {
		o.ObserveInt64(c, int64(snap.Counters[id]))
	}
	for id, h := range e.histograms {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[id]))
		for i, v := range cumulative {
			o.ObserveInt64(h.buckets, int64(v), e.leAttrs[i])
		}
		o.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]))
	}
	if hs, ok := e.source.(HealthSource); ok && e.storeUp != nil {
		var up int64
		if hs.Health(ctx).StoreAvailable {
			up = 1
		}
		o.ObserveInt64(e.storeUp, up)
	}
	return nil
}

// Close unregisters the callback. The instruments stay on the meter.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
