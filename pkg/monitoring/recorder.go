package monitoring

import "time"

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordWatchEvent counts a watch event of the given type.
func RecordWatchEvent(eventType string) {
	watchEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordWatchRestart counts a watch reconnect. reason is "stream_end",
// "expired" or "error".
func RecordWatchRestart(reason string) {
	watchRestartsTotal.WithLabelValues(reason).Inc()
}

// RecordDecodeError counts an event skipped because of a malformed payload.
func RecordDecodeError() {
	decodeErrorsTotal.Inc()
}

// RecordReconcile records the result and duration of one reconciliation.
func RecordReconcile(operation string, err error, duration time.Duration) {
	reconcileTotal.WithLabelValues(operation, result(err)).Inc()
	reconcileDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordChildOperation records a create, update, patch or delete issued
// against a child resource.
func RecordChildOperation(kind, action string, err error) {
	childOperationsTotal.WithLabelValues(kind, action, result(err)).Inc()
}

// SetClusterReplicas sets the desired replica gauge for a PrometheusCluster.
func SetClusterReplicas(name, namespace string, replicas int32) {
	clusterReplicas.WithLabelValues(name, namespace).Set(float64(replicas))
}

// DeleteClusterReplicas removes the replica gauge of an uninstalled cluster.
func DeleteClusterReplicas(name, namespace string) {
	clusterReplicas.DeleteLabelValues(name, namespace)
}
