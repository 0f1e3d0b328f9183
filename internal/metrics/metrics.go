// Package metrics exposes Prometheus instruments for dataset loads and the
// JSON API. Each Metrics owns its registry so tests and commands stay isolated.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/cafesales-cli/internal/analysis"
)

const namespace = "cafesales"

// Metrics groups the collectors registered for one process.
type Metrics struct {
	Registry *prometheus.Registry

	Loads         *prometheus.CounterVec
	LoadDuration  prometheus.Histogram
	Records       prometheus.Gauge
	DroppedRows   prometheus.Counter
	InvalidValues *prometheus.CounterVec
	Outliers      *prometheus.GaugeVec
	ViewRequests  *prometheus.CounterVec
}

// New creates and registers every collector, plus Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Dataset loads by result.",
		}, []string{"result"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent reading, cleaning and summarizing a source.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Records in the most recently loaded dataset.",
		}),
		DroppedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_rows_total",
			Help:      "Rows removed because the transaction date could not be parsed.",
		}),
		InvalidValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_values_total",
			Help:      "Non-blank cells coerced to missing, by field.",
		}, []string{"field"}),
		Outliers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outliers",
			Help:      "Records outside the IQR fence in the latest load, by field.",
		}, []string{"field"}),
		ViewRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "JSON API requests by resource and status code.",
		}, []string{"resource", "code"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Loads, m.LoadDuration, m.Records, m.DroppedRows,
		m.InvalidValues, m.Outliers, m.ViewRequests,
	)
	return m
}

// ObserveLoad records the outcome of one load. res may be nil on failure.
func (m *Metrics) ObserveLoad(res *analysis.LoadResult, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.LoadDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.Loads.WithLabelValues("error").Inc()
		return
	}
	m.Loads.WithLabelValues("ok").Inc()
	m.Records.Set(float64(res.Dataset.Len()))
	m.DroppedRows.Add(float64(res.Stats.DroppedRows))
	for f, n := range res.Stats.Invalid {
		m.InvalidValues.WithLabelValues(string(f)).Add(float64(n))
	}
	for _, o := range res.Outliers {
		m.Outliers.WithLabelValues(string(o.Field)).Set(float64(o.Count()))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
