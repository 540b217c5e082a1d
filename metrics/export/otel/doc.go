// Package otel publishes client metrics as OpenTelemetry observable instruments.
//
// [NewOTelExporter] registers one Int64ObservableCounter per client counter, a
// dashauth_session_status gauge (1 for the current status attribute, 0 for the rest) and
// a dashauth_refresh_shared_per_flight gauge. Each latency histogram becomes a _bucket
// gauge split by the le attribute plus a _count gauge. Every observation carries the
// client's store backend as the store attribute. A single callback reads
// [dashauth.Client.MetricsView] on each collection cycle and observes nothing while
// metrics are disabled.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate client state.
package otel
