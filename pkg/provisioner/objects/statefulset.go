package objects

import (
	"crypto/sha256"
	"encoding/hex"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
	"github.com/numtide/prometheus-cluster-operator/pkg/metadata"
	"github.com/numtide/prometheus-cluster-operator/pkg/names"
)

const (
	// ContainerName is the name of the Prometheus container.
	ContainerName = "prometheus"

	// DefaultImage is the Prometheus container image.
	DefaultImage = "prom/prometheus:v2.53.0"

	// DefaultStorageSize is the size of each pod's data volume.
	DefaultStorageSize = "10Gi"

	// DefaultCPURequest is the CPU request of the Prometheus container.
	DefaultCPURequest = "100m"

	// DefaultMemoryRequest is the memory request of the Prometheus container.
	DefaultMemoryRequest = "256Mi"

	// ConfigVolumeName is the name of the volume sourcing the ConfigMap.
	ConfigVolumeName = "config"

	// ConfigMountPath is where the ConfigMap is mounted.
	ConfigMountPath = "/etc/prometheus"

	// DataVolumeName is the name of the data volume claim template.
	DataVolumeName = "data"

	// DataMountPath is the mount path for the TSDB.
	DataMountPath = "/prometheus"

	// PrometheusUID is the numeric uid of the nobody user the image runs as.
	PrometheusUID int64 = 65534

	// ConfigHashAnnotation carries a digest of spec.config on the pod template
	// so configuration changes roll the pods.
	ConfigHashAnnotation = "relaxdiego.com/config-hash"
)

// BuildStatefulSet creates the StatefulSet running the Prometheus pods.
// Returns a deterministic StatefulSet based on the PrometheusCluster spec.
func BuildStatefulSet(cluster *prometheusv1alpha1.PrometheusCluster) *appsv1.StatefulSet {
	replicas := cluster.Spec.Replicas
	podLabels := metadata.SelectorLabels(cluster.Name)

	return &appsv1.StatefulSet{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "apps/v1",
			Kind:       "StatefulSet",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:            names.StatefulSet(cluster.Name),
			Namespace:       cluster.Namespace,
			Labels:          objectLabels(cluster, metadata.ComponentServer),
			OwnerReferences: ownerReferences(cluster),
		},
		Spec: appsv1.StatefulSetSpec{
			ServiceName: names.HeadlessService(cluster.Name),
			Replicas:    &replicas,
			Selector: &metav1.LabelSelector{
				MatchLabels: metadata.SelectorLabels(cluster.Name),
			},
			PodManagementPolicy: appsv1.ParallelPodManagement,
			UpdateStrategy: appsv1.StatefulSetUpdateStrategy{
				Type: appsv1.RollingUpdateStatefulSetStrategyType,
			},
			PersistentVolumeClaimRetentionPolicy: retentionPolicy(),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: podLabels,
					Annotations: map[string]string{
						ConfigHashAnnotation: configHash(cluster.Spec.Config),
					},
				},
				Spec: corev1.PodSpec{
					// The data volume is root-owned until fsGroup hands it to the image's user.
					SecurityContext: &corev1.PodSecurityContext{
						FSGroup: ptr.To(PrometheusUID),
					},
					Containers: []corev1.Container{
						buildContainer(),
					},
					Volumes: []corev1.Volume{
						{
							Name: ConfigVolumeName,
							VolumeSource: corev1.VolumeSource{
								ConfigMap: &corev1.ConfigMapVolumeSource{
									LocalObjectReference: corev1.LocalObjectReference{
										Name: names.ConfigMap(cluster.Name),
									},
								},
							},
						},
					},
				},
			},
			VolumeClaimTemplates: []corev1.PersistentVolumeClaim{
				buildDataVolumeClaimTemplate(),
			},
		},
	}
}

func buildContainer() corev1.Container {
	return corev1.Container{
		Name:  ContainerName,
		Image: DefaultImage,
		Args: []string{
			"--config.file=" + ConfigMountPath + "/" + ConfigKey,
			"--storage.tsdb.path=" + DataMountPath,
			"--web.enable-lifecycle",
		},
		Ports: buildContainerPorts(),
		Resources: corev1.ResourceRequirements{
			Requests: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse(DefaultCPURequest),
				corev1.ResourceMemory: resource.MustParse(DefaultMemoryRequest),
			},
		},
		VolumeMounts: []corev1.VolumeMount{
			{
				Name:      ConfigVolumeName,
				MountPath: ConfigMountPath,
				ReadOnly:  true,
			},
			{
				Name:      DataVolumeName,
				MountPath: DataMountPath,
			},
		},
		ReadinessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Path: "/-/ready",
					Port: intstr.FromString(WebPortName),
				},
			},
			PeriodSeconds: 5,
		},
		LivenessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Path: "/-/healthy",
					Port: intstr.FromString(WebPortName),
				},
			},
			PeriodSeconds:    15,
			FailureThreshold: 4,
		},
		SecurityContext: &corev1.SecurityContext{
			RunAsNonRoot:             ptr.To(true),
			RunAsUser:                ptr.To(PrometheusUID),
			RunAsGroup:               ptr.To(PrometheusUID),
			AllowPrivilegeEscalation: ptr.To(false),
		},
	}
}

// buildDataVolumeClaimTemplate creates the PVC template for the TSDB.
// A nil storage class selects the cluster default.
func buildDataVolumeClaimTemplate() corev1.PersistentVolumeClaim {
	return corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name: DataVolumeName,
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{
				corev1.ReadWriteOnce,
			},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{
					corev1.ResourceStorage: resource.MustParse(DefaultStorageSize),
				},
			},
		},
	}
}

func configHash(config string) string {
	sum := sha256.Sum256([]byte(config))
	return hex.EncodeToString(sum[:])
}

// retentionPolicy keeps the TSDB volumes when the StatefulSet is deleted or
// scaled down. Uninstall never removes metric data.
func retentionPolicy() *appsv1.StatefulSetPersistentVolumeClaimRetentionPolicy {
	return &appsv1.StatefulSetPersistentVolumeClaimRetentionPolicy{
		WhenDeleted: appsv1.RetainPersistentVolumeClaimRetentionPolicyType,
		WhenScaled:  appsv1.RetainPersistentVolumeClaimRetentionPolicyType,
	}
}
