// Package metrics provides Prometheus metrics for rgraph clients.
//
// Metrics are registered on the Registerer passed to New, so several clients
// (and tests) can keep separate registries. Every Recorder method is safe to
// call on a nil *Recorder, which is how the client runs with metrics off.
//
// Example Usage:
//
//	reg := prometheus.NewRegistry()
//	c, err := client.New(cfg, client.WithMetrics(metrics.New(reg)))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcome labels.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusTimeout = "timeout"
)

// Recorder holds all Prometheus metrics for one client.
type Recorder struct {
	QueriesTotal        *prometheus.CounterVec
	QueryDuration       *prometheus.HistogramVec
	MetadataRefreshes   *prometheus.CounterVec
	RecordsDecoded      prometheus.Counter
	ConnectionsInFlight prometheus.Gauge
}

// New creates and registers the client metrics on reg.
//
// Registering twice on the same registry panics, as with promauto.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rgraph_queries_total",
				Help: "Total number of graph commands sent",
			},
			[]string{"command", "status"},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rgraph_query_duration_seconds",
				Help:    "Round trip and decode time of graph commands in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"command"},
		),
		MetadataRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rgraph_metadata_refreshes_total",
				Help: "Total number of label, relationship type and property key reloads",
			},
			[]string{"category"},
		),
		RecordsDecoded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rgraph_records_decoded_total",
				Help: "Total number of result records decoded",
			},
		),
		ConnectionsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rgraph_connections_in_use",
				Help: "Number of pooled connections currently borrowed",
			},
		),
	}
}

// ObserveQuery records one command and its outcome.
func (r *Recorder) ObserveQuery(command, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.QueriesTotal.WithLabelValues(command, status).Inc()
	r.QueryDuration.WithLabelValues(command).Observe(d.Seconds())
}

// ObserveRecords adds n decoded records.
func (r *Recorder) ObserveRecords(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.RecordsDecoded.Add(float64(n))
}

// ObserveRefresh records one metadata reload.
func (r *Recorder) ObserveRefresh(category string) {
	if r == nil {
		return
	}
	r.MetadataRefreshes.WithLabelValues(category).Inc()
}

// ConnAcquired marks a connection as borrowed.
func (r *Recorder) ConnAcquired() {
	if r == nil {
		return
	}
	r.ConnectionsInFlight.Inc()
}

// ConnReleased marks a borrowed connection as returned.
func (r *Recorder) ConnReleased() {
	if r == nil {
		return
	}
	r.ConnectionsInFlight.Dec()
}
