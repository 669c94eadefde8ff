// Package watcher runs the watch-reconcile loop for PrometheusCluster
// resources.
//
// The loop keeps a single watch stream open across all namespaces and hands
// each event, in order, to a provisioner.Provisioner:
//
//	ADDED    -> Install
//	MODIFIED -> Upgrade
//	DELETED  -> Uninstall
//
// Streams are opened with a server-side idle timeout, so a stream ending
// without an error is routine and the loop reconnects at once, resuming from
// the last resourceVersion it saw. A stream failing with an API error is
// retried after a backoff. A 410 Gone restarts the watch from the current
// state without waiting.
//
// Nothing that happens while handling an event stops the loop. It returns
// only when its context is cancelled.
package watcher
