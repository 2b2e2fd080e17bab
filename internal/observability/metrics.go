package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for table loading and decoding.
type Metrics struct {
	DaysDecoded    prometheus.Counter
	SamplesDecoded prometheus.Counter
	FieldIssues    *prometheus.CounterVec // labels: field
	DecodeDuration prometheus.Histogram

	TableFetches *prometheus.CounterVec // labels: outcome={success,not_found,error}
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	registry *prometheus.Registry
}

func newMetrics() *Metrics {
	return &Metrics{
		DaysDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tide",
			Name:      "days_decoded_total",
			Help:      "Daily records decoded into samples.",
		}),
		SamplesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tide",
			Name:      "samples_decoded_total",
			Help:      "Samples produced by the decoder.",
		}),
		FieldIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tide",
			Name:      "field_issues_total",
			Help:      "Record fields that decoded to an absent value.",
		}, []string{"field"}),
		DecodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tide",
			Name:      "decode_duration_seconds",
			Help:      "Time to decode one tide table.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		TableFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tide",
			Name:      "table_fetch_total",
			Help:      "Tide table retrievals by outcome.",
		}, []string{"outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tide",
			Name:      "cache_total",
			Help:      "Decoded series cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DaysDecoded,
		m.SamplesDecoded,
		m.FieldIssues,
		m.DecodeDuration,
		m.TableFetches,
		m.CacheLookups,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics on a private registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(m.collectors()...)
	return m
}

// Gatherer returns the registry the metrics were registered with
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m.registry != nil {
		return m.registry
	}
	return prometheus.DefaultGatherer
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Gatherer(), promhttp.HandlerOpts{})
}
