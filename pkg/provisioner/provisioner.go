// Package provisioner defines the reconciliation strategies that converge a
// PrometheusCluster onto the cluster.
//
// Two strategies exist and exactly one is selected per deployment:
//   - objects: create or update the child ConfigMap, Services and StatefulSet
//     directly (see package objects).
//   - helm: delegate to the helm CLI, passing replicas and config as chart
//     values (see package helm).
package provisioner

import (
	"context"
	"fmt"
	"strings"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
)

// Provisioner converges the infrastructure of one PrometheusCluster. Each
// method corresponds to one watch event type.
//
// Install and Upgrade converge to the same end state and are safe to repeat.
// Uninstall treats already-absent resources as success.
type Provisioner interface {
	Install(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error
	Upgrade(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error
	Uninstall(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error
}

// Strategy names a reconciliation strategy.
type Strategy string

const (
	// StrategyObjects manages the child objects directly.
	StrategyObjects Strategy = "objects"

	// StrategyHelm delegates to the helm CLI.
	StrategyHelm Strategy = "helm"
)

// Strategies lists every known strategy.
var Strategies = []Strategy{StrategyObjects, StrategyHelm}

// ParseStrategy converts a configuration string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(s)) {
	case StrategyObjects:
		return StrategyObjects, nil
	case StrategyHelm:
		return StrategyHelm, nil
	}
	return "", fmt.Errorf("unknown provisioning strategy %q", s)
}
