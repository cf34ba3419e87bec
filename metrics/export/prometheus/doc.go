// Package prometheus exposes otpauth engine metrics through
// prometheus/client_golang.
//
// [PrometheusExporter] is a collector. Mount [PrometheusExporter.Handler] at
// /metrics, or register the exporter in an existing registry. Counter names
// are otpauth_*_total; the single histogram is otpauth_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
