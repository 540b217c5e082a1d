package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/metrics/export/internaldefs"
)

// ContentType is the exposition format served by [PrometheusExporter.Handler].
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

type viewSource interface {
	MetricsView() dashauth.MetricsView
}

// PrometheusExporter renders one client's metrics in Prometheus text exposition format. Every
// series is labelled with the client's store backend.
type PrometheusExporter struct {
	source viewSource
}

// NewPrometheusExporter returns an exporter reading from client.
func NewPrometheusExporter(client *dashauth.Client) *PrometheusExporter {
	return &PrometheusExporter{source: client}
}

// NewPrometheusExporterFromSource returns an exporter reading from any view source.
func NewPrometheusExporterFromSource(source viewSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler serves [PrometheusExporter.Render].
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", ContentType)
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics, or "" when metrics are disabled.
func (p *PrometheusExporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}
	view := p.source.MetricsView()
	if view.Empty() {
		return ""
	}

	w := newExposition(view.StoreBackend)
	for _, def := range internaldefs.CounterDefs {
		w.family(def.Name, def.Help, "counter")
		w.sample(def.Name, "", strconv.FormatUint(view.Snapshot.Counters[def.ID], 10))
	}
	w.family(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp, "counter")
	w.sample(internaldefs.AuditDroppedName, "", strconv.FormatUint(view.AuditDropped, 10))

	w.family(internaldefs.SharedRefreshName, internaldefs.SharedRefreshHelp, "gauge")
	w.sample(internaldefs.SharedRefreshName, "", strconv.FormatFloat(view.Snapshot.SharedRefreshesPerFlight(), 'g', -1, 64))

	w.family(internaldefs.SessionStatusName, internaldefs.SessionStatusHelp, "gauge")
	for _, st := range internaldefs.Statuses {
		v := "0"
		if st == view.Status {
			v = "1"
		}
		w.sample(internaldefs.SessionStatusName, label(internaldefs.StatusLabel, st.String()), v)
	}

	for _, def := range internaldefs.HistogramDefs {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(view.Snapshot.Histograms[def.ID]))
		w.family(def.Name, def.Help, "histogram")
		for i, le := range internaldefs.HistogramBounds {
			w.sample(def.Name+"_bucket", label("le", le), strconv.FormatUint(cumulative[i], 10))
		}
		w.sample(def.Name+"_count", "", strconv.FormatUint(cumulative[len(cumulative)-1], 10))
		// Snapshots carry bucket counts only.
		w.sample(def.Name+"_sum", "", "0")
	}
	return w.String()
}

// exposition accumulates families and samples, prefixing every label set with the store label.
type exposition struct {
	strings.Builder
	base string
}

func newExposition(store string) *exposition {
	w := &exposition{base: label(internaldefs.StoreLabel, internaldefs.StoreName(store))}
	w.Grow(8192)
	return w
}

func (w *exposition) family(name, help, kind string) {
	w.WriteString("# HELP " + name + " " + escapeHelp(help) + "\n")
	w.WriteString("# TYPE " + name + " " + kind + "\n")
}

func (w *exposition) sample(name, extra, value string) {
	w.WriteString(name)
	w.WriteByte('{')
	w.WriteString(w.base)
	if extra != "" {
		w.WriteByte(',')
		w.WriteString(extra)
	}
	w.WriteString("} ")
	w.WriteString(value)
	w.WriteByte('\n')
}

func label(name, value string) string {
	return name + `="` + escapeLabel(value) + `"`
}

var (
	helpEscaper  = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	labelEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)
)

func escapeHelp(help string) string   { return helpEscaper.Replace(help) }
func escapeLabel(value string) string { return labelEscaper.Replace(value) }
