// Package metrics exposes Prometheus instruments for query execution:
// executions by strategy and outcome, latency, open stream cursors and
// ambiguous single results.
package metrics
