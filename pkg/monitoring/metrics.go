package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Domain-specific metric collectors.
var (
	watchEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prometheus_cluster_operator_watch_events_total",
			Help: "Total number of PrometheusCluster watch events received, by event type.",
		},
		[]string{"type"},
	)

	watchRestartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prometheus_cluster_operator_watch_restarts_total",
			Help: "Total number of watch stream reconnects, by reason.",
		},
		[]string{"reason"},
	)

	decodeErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prometheus_cluster_operator_decode_errors_total",
			Help: "Total number of watch events skipped because the payload could not be decoded.",
		},
	)

	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prometheus_cluster_operator_reconcile_total",
			Help: "Total number of reconciliations, by operation and result.",
		},
		[]string{"operation", "result"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prometheus_cluster_operator_reconcile_duration_seconds",
			Help:    "Latency of a single reconciliation in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	childOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prometheus_cluster_operator_child_operations_total",
			Help: "Total number of operations issued against child resources, by kind, action and result.",
		},
		[]string{"kind", "action", "result"},
	)

	clusterReplicas = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prometheus_cluster_operator_cluster_replicas",
			Help: "Desired Prometheus replicas declared by a PrometheusCluster.",
		},
		[]string{"name", "namespace"},
	)
)

func init() {
	metrics.Registry.MustRegister(Collectors()...)
}

// Collectors returns all registered metric collectors. This is useful for
// testing that metrics are properly registered.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		watchEventsTotal,
		watchRestartsTotal,
		decodeErrorsTotal,
		reconcileTotal,
		reconcileDuration,
		childOperationsTotal,
		clusterReplicas,
	}
}
