// Package prometheus renders client metrics in Prometheus text exposition format.
//
// [NewPrometheusExporter] reads a [dashauth.Client] and exposes an [http.Handler].
// Counters are named dashauth_*_total; the two latency histograms are
// dashauth_gateway_latency_seconds and dashauth_refresh_latency_seconds.
// dashauth_session_status is one-hot over the status label and
// dashauth_refresh_shared_per_flight reports how many callers each gateway refresh
// served. Every sample carries a store label naming the credential store backend.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate client state.
package prometheus
