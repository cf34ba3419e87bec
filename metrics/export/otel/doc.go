// Package otel publishes otpauth engine metrics as OpenTelemetry observable
// instruments.
//
// [New] registers one Int64ObservableCounter per engine counter. Each latency
// histogram becomes a cumulative gauge with an "le" attribute per bucket and
// a sample counter. A single callback reads the snapshot on each collection.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
