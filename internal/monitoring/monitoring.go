// Package monitoring exposes operational counters for the ingestion
// pipeline via the default Prometheus registry.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReportBatches counts accepted report batches.
	ReportBatches = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenpay",
		Subsystem: "ingest",
		Name:      "report_batches_total",
		Help:      "Number of metric report batches processed.",
	})

	// MetricsStored counts metrics accepted as new and persisted.
	MetricsStored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenpay",
		Subsystem: "ingest",
		Name:      "metrics_stored_total",
		Help:      "Number of metrics stored as new records.",
	})

	// MetricsSkipped counts metrics skipped as duplicates inside the window.
	MetricsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenpay",
		Subsystem: "ingest",
		Name:      "metrics_skipped_total",
		Help:      "Number of metrics skipped as dedup-window duplicates.",
	})

	// ForwardFailures counts failed collector forward attempts.
	ForwardFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tokenpay",
		Subsystem: "ingest",
		Name:      "forward_failures_total",
		Help:      "Number of failed forwards to the external collector.",
	})
)
