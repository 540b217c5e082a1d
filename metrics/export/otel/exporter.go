package otel

import (
	"context"
	"errors"
	"fmt"

	dashauth "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNilMeter is returned when no meter is supplied.
	ErrNilMeter = errors.New("nil meter")
	// ErrNilSource is returned when no metrics source is supplied.
	ErrNilSource = errors.New("nil metrics source")
)

type viewSource interface {
	MetricsView() dashauth.MetricsView
}

type counterInstrument struct {
	id  dashauth.MetricID
	ins metric.Int64ObservableCounter
}

// histogramInstrument reports cumulative buckets on one gauge, told apart by the le attribute.
type histogramInstrument struct {
	id      dashauth.MetricID
	buckets metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter publishes one client's metrics through observable instruments on a caller's
// meter. Every observation carries the client's store backend as the store attribute.
type OTelExporter struct {
	source       viewSource
	registration metric.Registration

	counters      []counterInstrument
	histograms    []histogramInstrument
	auditDropped  metric.Int64ObservableCounter
	sessionStatus metric.Int64ObservableGauge
	sharedRefresh metric.Float64ObservableGauge
}

// NewOTelExporter registers instruments for client on meter. Call Close to unregister.
func NewOTelExporter(meter metric.Meter, client *dashauth.Client) (*OTelExporter, error) {
	if client == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, client)
}

// NewOTelExporterFromSource is NewOTelExporter for any view source.
func NewOTelExporterFromSource(meter metric.Meter, source viewSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	var (
		observables []metric.Observable
		err         error
	)

	for _, def := range internaldefs.CounterDefs {
		c := counterInstrument{id: def.ID}
		if c.ins, err = meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help)); err != nil {
			return nil, fmt.Errorf("counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, c)
		observables = append(observables, c.ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		h := histogramInstrument{id: def.ID}
		if h.buckets, err = meter.Int64ObservableGauge(def.Name+"_bucket",
			metric.WithDescription(def.Help+" Cumulative count per le bound.")); err != nil {
			return nil, fmt.Errorf("histogram %s buckets: %w", def.Name, err)
		}
		if h.count, err = meter.Int64ObservableGauge(def.Name+"_count",
			metric.WithDescription(def.Help+" Total samples.")); err != nil {
			return nil, fmt.Errorf("histogram %s count: %w", def.Name, err)
		}
		e.histograms = append(e.histograms, h)
		observables = append(observables, h.buckets, h.count)
	}

	if e.auditDropped, err = meter.Int64ObservableCounter(internaldefs.AuditDroppedName,
		metric.WithDescription(internaldefs.AuditDroppedHelp)); err != nil {
		return nil, fmt.Errorf("audit dropped counter: %w", err)
	}
	if e.sessionStatus, err = meter.Int64ObservableGauge(internaldefs.SessionStatusName,
		metric.WithDescription(internaldefs.SessionStatusHelp)); err != nil {
		return nil, fmt.Errorf("session status gauge: %w", err)
	}
	if e.sharedRefresh, err = meter.Float64ObservableGauge(internaldefs.SharedRefreshName,
		metric.WithDescription(internaldefs.SharedRefreshHelp)); err != nil {
		return nil, fmt.Errorf("shared refresh gauge: %w", err)
	}
	observables = append(observables, e.auditDropped, e.sessionStatus, e.sharedRefresh)

	if e.registration, err = meter.RegisterCallback(e.observe, observables...); err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	view := e.source.MetricsView()
	if view.Empty() {
		return nil
	}
	store := attribute.String(internaldefs.StoreLabel, internaldefs.StoreName(view.StoreBackend))
	base := metric.WithAttributes(store)

	for _, c := range e.counters {
		o.ObserveInt64(c.ins, int64(view.Snapshot.Counters[c.id]), base)
	}
	for _, h := range e.histograms {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(view.Snapshot.Histograms[h.id]))
		for i, le := range internaldefs.HistogramBounds {
			o.ObserveInt64(h.buckets, int64(cumulative[i]), metric.WithAttributes(store, attribute.String("le", le)))
		}
		o.ObserveInt64(h.count, int64(cumulative[len(cumulative)-1]), base)
	}
	o.ObserveInt64(e.auditDropped, int64(view.AuditDropped), base)
	o.ObserveFloat64(e.sharedRefresh, view.Snapshot.SharedRefreshesPerFlight(), base)
	for _, st := range internaldefs.Statuses {
		var current int64
		if st == view.Status {
			current = 1
		}
		o.ObserveInt64(e.sessionStatus, current,
			metric.WithAttributes(store, attribute.String(internaldefs.StatusLabel, st.String())))
	}
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
