package objects

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
	"github.com/numtide/prometheus-cluster-operator/pkg/metadata"
	"github.com/numtide/prometheus-cluster-operator/pkg/names"
)

// ConfigKey is the ConfigMap data key holding spec.config.
const ConfigKey = "prometheus.yml"

// BuildConfigMap creates the ConfigMap carrying the Prometheus configuration.
// spec.config is stored verbatim.
func BuildConfigMap(cluster *prometheusv1alpha1.PrometheusCluster) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "ConfigMap",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:            names.ConfigMap(cluster.Name),
			Namespace:       cluster.Namespace,
			Labels:          objectLabels(cluster, metadata.ComponentConfig),
			OwnerReferences: ownerReferences(cluster),
		},
		Data: map[string]string{
			ConfigKey: cluster.Spec.Config,
		},
	}
}
