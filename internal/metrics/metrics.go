// Package metrics holds the Prometheus collectors of the build pipeline,
// delivery and the preview server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CompilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formc_compiles_total",
			Help: "Compilations by outcome (ok, cached, contract_error, error)",
		},
		[]string{"outcome"},
	)

	CompileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "formc_compile_duration_seconds",
			Help:    "Duration of normalize and compile for one record",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)

	ArtifactBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formc_artifact_bytes",
			Help:    "Size of compiled files",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
		},
		[]string{"file"},
	)

	NormalizedFields = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formc_normalized_fields_total",
			Help: "Resolved fields by the source that supplied them",
		},
		[]string{"source"},
	)

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formc_deliveries_total",
			Help: "Best-effort deliveries by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	SubmissionsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formc_submissions_received_total",
			Help: "Payloads received by the submission sink by validity",
		},
		[]string{"valid"},
	)

	PublicationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "formc_publications_total",
			Help: "Artifacts published",
		},
	)
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeCached   = "cached"
	OutcomeContract = "contract_error"
	OutcomeError    = "error"
	OutcomeFailed   = "failed"
)
