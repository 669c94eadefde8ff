// Package monitoring provides Prometheus metrics and tracing helpers for
// the Prometheus Cluster Operator. It exposes domain-specific gauges and
// counters for the watch loop and the provisioners.
//
// All metrics follow the naming convention prometheus_cluster_operator_<metric>_<unit>
// and are registered against controller-runtime's default Prometheus registry
// on import, so the manager's metrics server exposes them.
//
// Usage in the watch loop:
//
//	monitoring.RecordWatchEvent("ADDED")
//	monitoring.RecordReconcile("install", err, elapsed)
//
// Usage in provisioners:
//
//	monitoring.RecordChildOperation("ConfigMap", "create", err)
//	monitoring.SetClusterReplicas(cluster.Name, cluster.Namespace, cluster.Spec.Replicas)
package monitoring
