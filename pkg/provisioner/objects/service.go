package objects

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
	"github.com/numtide/prometheus-cluster-operator/pkg/metadata"
	"github.com/numtide/prometheus-cluster-operator/pkg/names"
)

// BuildHeadlessService creates the headless Service for the Prometheus
// StatefulSet. Headless services are required for StatefulSet pod DNS records.
func BuildHeadlessService(cluster *prometheusv1alpha1.PrometheusCluster) *corev1.Service {
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Service",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:            names.HeadlessService(cluster.Name),
			Namespace:       cluster.Namespace,
			Labels:          objectLabels(cluster, metadata.ComponentServer),
			OwnerReferences: ownerReferences(cluster),
		},
		Spec: corev1.ServiceSpec{
			ClusterIP:                corev1.ClusterIPNone,
			Selector:                 metadata.SelectorLabels(cluster.Name),
			Ports:                    buildServicePorts(),
			PublishNotReadyAddresses: true,
		},
	}
}

// BuildClientService creates the client Service.
// This service load balances across all Prometheus pods.
func BuildClientService(cluster *prometheusv1alpha1.PrometheusCluster) *corev1.Service {
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "Service",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:            names.Service(cluster.Name),
			Namespace:       cluster.Namespace,
			Labels:          objectLabels(cluster, metadata.ComponentServer),
			OwnerReferences: ownerReferences(cluster),
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeClusterIP,
			Selector: metadata.SelectorLabels(cluster.Name),
			Ports:    buildServicePorts(),
		},
	}
}
