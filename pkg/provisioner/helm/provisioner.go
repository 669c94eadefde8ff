package helm

import (
	"context"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
	"github.com/numtide/prometheus-cluster-operator/pkg/monitoring"
	"github.com/numtide/prometheus-cluster-operator/pkg/provisioner"
)

// Provisioner manages one helm release per PrometheusCluster.
type Provisioner struct {
	Deployer PackageDeployer
}

var _ provisioner.Provisioner = &Provisioner{}

// NewProvisioner returns a Provisioner deploying through d.
func NewProvisioner(d PackageDeployer) *Provisioner {
	return &Provisioner{Deployer: d}
}

// Install installs the release of cluster.
func (p *Provisioner) Install(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error {
	return p.do(ctx, "install", cluster, func(ctx context.Context) error {
		return p.Deployer.Install(ctx, releaseFor(cluster))
	})
}

// Upgrade upgrades the release of cluster.
func (p *Provisioner) Upgrade(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error {
	return p.do(ctx, "upgrade", cluster, func(ctx context.Context) error {
		return p.Deployer.Upgrade(ctx, releaseFor(cluster))
	})
}

// Uninstall removes the release of cluster.
func (p *Provisioner) Uninstall(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error {
	return p.do(ctx, "uninstall", cluster, func(ctx context.Context) error {
		return p.Deployer.Uninstall(ctx, cluster.Name, cluster.Namespace)
	})
}

func (p *Provisioner) do(
	ctx context.Context,
	operation string,
	cluster *prometheusv1alpha1.PrometheusCluster,
	fn func(context.Context) error,
) error {
	start := time.Now()
	ctx, span := monitoring.StartReconcileSpan(
		ctx, "PrometheusCluster."+operation, cluster.Name, cluster.Namespace, prometheusv1alpha1.Kind,
	)
	defer span.End()
	ctx = monitoring.EnrichLoggerWithTrace(ctx)
	logger := log.FromContext(ctx).WithValues("operation", operation, "release", cluster.Name)

	err := fn(ctx)
	monitoring.RecordSpanError(span, err)
	monitoring.RecordReconcile(operation, err, time.Since(start))
	if err != nil {
		logger.Error(err, "Failed to "+operation+" Prometheus cluster", "namespace", cluster.Namespace)
		return err
	}

	switch operation {
	case "uninstall":
		monitoring.DeleteClusterReplicas(cluster.Name, cluster.Namespace)
	default:
		monitoring.SetClusterReplicas(cluster.Name, cluster.Namespace, cluster.Spec.Replicas)
	}
	logger.Info("Successfully completed "+operation+" of Prometheus cluster", "namespace", cluster.Namespace)
	return nil
}

func releaseFor(cluster *prometheusv1alpha1.PrometheusCluster) Release {
	return Release{
		Name:      cluster.Name,
		Namespace: cluster.Namespace,
		Values:    ValuesFor(cluster),
	}
}
