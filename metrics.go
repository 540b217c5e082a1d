package goAuthClient

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one client counter or latency histogram.
type MetricID uint16

const (
	// MetricLoginSuccess counts logins that reached AUTHENTICATED.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts logins that ended in ERROR.
	MetricLoginFailure
	// MetricLoginRejectedInput counts logins refused locally for empty credentials.
	MetricLoginRejectedInput
	// MetricLogout counts local logouts.
	MetricLogout
	// MetricLogoutRemoteFailure counts gateway logout calls that failed and were swallowed.
	MetricLogoutRemoteFailure
	// MetricRefreshStarted counts refreshes that reached the gateway.
	MetricRefreshStarted
	// MetricRefreshSuccess counts refreshes that rotated the token pair.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refreshes that ended the session.
	MetricRefreshFailure
	// MetricRefreshDeduplicated counts callers that shared an in-flight refresh.
	MetricRefreshDeduplicated
	// MetricBootstrapRestored counts bootstraps that restored a session.
	MetricBootstrapRestored
	// MetricBootstrapCleared counts bootstraps that discarded persisted credentials.
	MetricBootstrapCleared
	// MetricStaleResultDiscarded counts gateway completions dropped because a newer login or
	// logout superseded them.
	MetricStaleResultDiscarded
	// MetricRequestRetried counts requests replayed after a refresh.
	MetricRequestRetried
	// MetricStoreWriteFailure counts credential store writes that failed after retries.
	MetricStoreWriteFailure
	// MetricGatewayLatency is the login/bootstrap/logout gateway latency histogram.
	MetricGatewayLatency
	// MetricRefreshLatency is the refresh gateway latency histogram.
	MetricRefreshLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and fixed-bucket latency histograms. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of every metric.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// MetricsView is what exporters publish: the counters plus the client facts used to label them
// and derive client-level series.
type MetricsView struct {
	Snapshot     MetricsSnapshot
	AuditDropped uint64
	Status       Status
	StoreBackend string
}

// Empty reports whether there is nothing worth exporting, as when metrics are disabled.
func (v MetricsView) Empty() bool {
	return len(v.Snapshot.Counters) == 0 && len(v.Snapshot.Histograms) == 0 && v.AuditDropped == 0
}

// SharedRefreshesPerFlight is how many shared refresh deliveries each gateway refresh served.
// It is zero before the first refresh.
func (s MetricsSnapshot) SharedRefreshesPerFlight() float64 {
	started := s.Counters[MetricRefreshStarted]
	if started == 0 {
		return 0
	}
	return float64(s.Counters[MetricRefreshDeduplicated]) / float64(started)
}

// NewMetrics returns metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether histograms are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in histogram id. Non-histogram IDs are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || !isHistogram(id) {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and, when latency is enabled, every histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 2),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if isHistogram(id) {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		for _, id := range []MetricID{MetricGatewayLatency, MetricRefreshLatency} {
			buckets := make([]uint64, histBucketCount)
			for i := 0; i < histBucketCount; i++ {
				buckets[i] = atomic.LoadUint64(&m.histograms[id].buckets[i])
			}
			s.Histograms[id] = buckets
		}
	}

	return s
}

func isHistogram(id MetricID) bool {
	return id == MetricGatewayLatency || id == MetricRefreshLatency
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
