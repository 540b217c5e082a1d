package internaldefs

import (
	dashauth "github.com/MrEthical07/goAuthClient"
)

// CounterDef binds a client counter to its exported name.
type CounterDef struct {
	ID   dashauth.MetricID
	Name string
	Help string
}

// HistogramDef binds a client latency histogram to its exported name.
type HistogramDef struct {
	ID   dashauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: dashauth.MetricLoginSuccess, Name: "dashauth_login_success_total", Help: "Logins that reached the authenticated state."},
	{ID: dashauth.MetricLoginFailure, Name: "dashauth_login_failure_total", Help: "Logins that ended in the error state."},
	{ID: dashauth.MetricLoginRejectedInput, Name: "dashauth_login_rejected_input_total", Help: "Logins refused locally for missing or malformed credentials."},
	{ID: dashauth.MetricLogout, Name: "dashauth_logout_total", Help: "Local logouts."},
	{ID: dashauth.MetricLogoutRemoteFailure, Name: "dashauth_logout_remote_failure_total", Help: "Remote logout calls that failed and were ignored."},
	{ID: dashauth.MetricRefreshStarted, Name: "dashauth_refresh_started_total", Help: "Token refreshes sent to the gateway."},
	{ID: dashauth.MetricRefreshSuccess, Name: "dashauth_refresh_success_total", Help: "Token refreshes that rotated the pair."},
	{ID: dashauth.MetricRefreshFailure, Name: "dashauth_refresh_failure_total", Help: "Token refreshes that ended the session."},
	{ID: dashauth.MetricRefreshDeduplicated, Name: "dashauth_refresh_deduplicated_total", Help: "Callers that shared an in-flight refresh."},
	{ID: dashauth.MetricBootstrapRestored, Name: "dashauth_bootstrap_restored_total", Help: "Startups that restored a persisted session."},
	{ID: dashauth.MetricBootstrapCleared, Name: "dashauth_bootstrap_cleared_total", Help: "Startups that discarded persisted credentials."},
	{ID: dashauth.MetricStaleResultDiscarded, Name: "dashauth_stale_result_discarded_total", Help: "Gateway results dropped after a newer login or logout."},
	{ID: dashauth.MetricRequestRetried, Name: "dashauth_request_retried_total", Help: "Requests replayed after a refresh."},
	{ID: dashauth.MetricStoreWriteFailure, Name: "dashauth_store_write_failure_total", Help: "Credential store writes that failed; the session fell back to a signed-out state."},
}

// HistogramDefs lists every exported latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: dashauth.MetricGatewayLatency, Name: "dashauth_gateway_latency_seconds", Help: "Login, logout and bootstrap gateway latency."},
	{ID: dashauth.MetricRefreshLatency, Name: "dashauth_refresh_latency_seconds", Help: "Refresh gateway latency."},
}

// Client-level series derived from the view rather than a single counter.
const (
	AuditDroppedName = "dashauth_audit_dropped_total"
	AuditDroppedHelp = "Audit events dropped under dispatcher backpressure."

	SessionStatusName = "dashauth_session_status"
	SessionStatusHelp = "1 for the client's current session status, 0 for the others."

	SharedRefreshName = "dashauth_refresh_shared_per_flight"
	SharedRefreshHelp = "Shared refresh deliveries per refresh sent to the gateway."
)

// Label names. Every exported series carries StoreLabel.
const (
	StoreLabel  = "store"
	StatusLabel = "status"
)

// Statuses lists every session status in export order.
var Statuses = []dashauth.Status{
	dashauth.StatusUnauthenticated,
	dashauth.StatusAuthenticating,
	dashauth.StatusAuthenticated,
	dashauth.StatusRefreshing,
	dashauth.StatusError,
}

// HistogramBounds are the upper bounds of the eight latency buckets, in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// StoreName is the store label value for backend; unnamed stores export as "custom".
func StoreName(backend string) string {
	if backend == "" {
		return "custom"
	}
	return backend
}

// NormalizeBuckets copies raw into a fixed eight-bucket array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
