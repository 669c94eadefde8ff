package objects

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
	"github.com/numtide/prometheus-cluster-operator/pkg/metadata"
	"github.com/numtide/prometheus-cluster-operator/pkg/resource"
)

// ownerReferences returns the controller reference pointing at cluster. The
// reference uses the served version the cluster was decoded from. A cluster
// without a UID cannot be referenced and yields nil.
func ownerReferences(cluster *prometheusv1alpha1.PrometheusCluster) []metav1.OwnerReference {
	if cluster.UID == "" {
		return nil
	}
	gvk := schema.FromAPIVersionAndKind(cluster.APIVersion, cluster.Kind)
	return []metav1.OwnerReference{*metav1.NewControllerRef(cluster, gvk)}
}

// objectLabels returns the labels stamped on a child object's metadata.
func objectLabels(cluster *prometheusv1alpha1.PrometheusCluster, component string) map[string]string {
	labels := metadata.BuildStandardLabels(cluster.Name, component)
	return metadata.AddCRDVersionLabel(labels, resource.CRDVersion(cluster))
}
