// Package observability holds the Prometheus instrumentation for the
// scraping pipeline
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts fetch outcomes and parse quality per upstream source
type Metrics struct {
	Fetches       *prometheus.CounterVec // labels: kind={level,flow,temperature}, outcome={ok,empty,failed}
	RowsSkipped   *prometheus.CounterVec // labels: kind
	BatchDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the
// default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pegelmonitor",
			Name:      "fetches_total",
			Help:      "Upstream fetches by reading kind and outcome.",
		}, []string{"kind", "outcome"}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pegelmonitor",
			Name:      "rows_skipped_total",
			Help:      "Table rows dropped because a cell failed to parse.",
		}, []string{"kind"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pegelmonitor",
			Name:      "batch_duration_seconds",
			Help:      "Duration of one full fetch cycle across all water bodies.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	prometheus.MustRegister(m.Fetches, m.RowsSkipped, m.BatchDuration)
	return m
}
