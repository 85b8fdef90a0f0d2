/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusOK              = "ok"
	StatusDerivationError = "derivation_error"
	StatusBindingError    = "binding_error"
	StatusExecutionError  = "execution_error"
	StatusCancelled       = "cancelled"
)

// Collector holds the query dispatcher's Prometheus instruments.
type Collector struct {
	registry *prometheus.Registry

	// QueriesTotal counts executions by strategy, shape and outcome.
	QueriesTotal *prometheus.CounterVec
	// QueryDuration is the latency from dispatch to adapted result.
	QueryDuration *prometheus.HistogramVec
	// OpenCursors is the number of driver cursors held by live streams.
	OpenCursors prometheus.Gauge
	// AmbiguousResults counts single-result queries that matched more than one document.
	AmbiguousResults *prometheus.CounterVec
	// RowsReturned counts rows decoded into results.
	RowsReturned *prometheus.CounterVec
}

// New creates a Collector registered on its own registry. A namespace of
// "" defaults to "repoquery".
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = "repoquery"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of repository query executions",
			},
			[]string{"strategy", "shape", "status"},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Repository query latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"strategy"},
		),
		OpenCursors: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "open_cursors",
				Help:      "Driver cursors held by unfinished result streams",
			},
		),
		AmbiguousResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ambiguous_results_total",
				Help:      "Single-result queries that matched more than one document",
			},
			[]string{"method"},
		),
		RowsReturned: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_returned_total",
				Help:      "Rows decoded into query results",
			},
			[]string{"shape"},
		),
	}
}

// Registry exposes the registry for an HTTP handler or a gatherer.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveQuery records one finished execution. A nil Collector is a no-op.
func (c *Collector) ObserveQuery(strategy, shape, status string, started time.Time) {
	if c == nil {
		return
	}
	c.QueriesTotal.WithLabelValues(strategy, shape, status).Inc()
	c.QueryDuration.WithLabelValues(strategy).Observe(time.Since(started).Seconds())
}

// CursorOpened increments the open cursor gauge.
func (c *Collector) CursorOpened() {
	if c == nil {
		return
	}
	c.OpenCursors.Inc()
}

// CursorClosed decrements the open cursor gauge.
func (c *Collector) CursorClosed() {
	if c == nil {
		return
	}
	c.OpenCursors.Dec()
}

// Ambiguous records a discarded-rows event for method.
func (c *Collector) Ambiguous(method string) {
	if c == nil {
		return
	}
	c.AmbiguousResults.WithLabelValues(method).Inc()
}

// Rows adds n decoded rows for shape.
func (c *Collector) Rows(shape string, n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.RowsReturned.WithLabelValues(shape).Add(float64(n))
}
