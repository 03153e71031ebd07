package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	IntentsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxwallet_intents_extracted_total",
		Help: "The total number of intents extracted from user input",
	}, []string{"action"})

	ExtractionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxwallet_extraction_failures_total",
		Help: "Total number of extraction failures by reason",
	}, []string{"reason"})

	Confirmations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxwallet_confirmations_total",
		Help: "Confirmation replies by outcome",
	}, []string{"outcome"})

	ExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxwallet_executions_total",
		Help: "Transaction executions by route and status",
	}, []string{"route", "status"})

	ExecutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voxwallet_execution_seconds",
		Help:    "Time taken to execute transactions",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10), // Start at 1s with 10 buckets doubling in size
	}, []string{"route"})

	RoutingErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxwallet_routing_errors_total",
		Help: "Executions rejected because no route matched the action and network",
	})

	SessionStoreRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxwallet_session_store_retries_total",
		Help: "Session store operations that needed a reconnect and retry",
	})

	AuditLogFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxwallet_audit_log_failures_total",
		Help: "Best-effort audit log writes that failed",
	})

	PendingConfirmations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voxwallet_pending_confirmations",
		Help: "Sessions currently awaiting a confirmation reply",
	})
)
