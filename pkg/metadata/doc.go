// Package metadata provides utilities for building Kubernetes resource metadata
// such as labels used across all objects owned by a PrometheusCluster.
//
// The label set returned by SelectorLabels is the only source for both the
// Service selectors and the StatefulSet pod template, so Services always select
// exactly the pods the StatefulSet creates.
package metadata
