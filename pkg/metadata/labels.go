package metadata

import "maps"

// Standard Kubernetes label keys following kubernetes.io conventions.
//
// See: https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
const (
	// LabelAppName is the standard label key for the application name.
	LabelAppName = "app.kubernetes.io/name"

	// LabelAppInstance is the standard label key for the unique instance name.
	LabelAppInstance = "app.kubernetes.io/instance"

	// LabelAppComponent is the standard label key for the component within the
	// application.
	LabelAppComponent = "app.kubernetes.io/component"

	// LabelAppPartOf is the standard label key for the name of a higher level
	// application this one is part of.
	LabelAppPartOf = "app.kubernetes.io/part-of"

	// LabelAppManagedBy is the standard label key for the tool managing the
	// resource.
	LabelAppManagedBy = "app.kubernetes.io/managed-by"
)

const (
	// AppNamePrometheus is the fixed application name for all managed resources.
	AppNamePrometheus = "prometheus"

	// PartOfPrometheusCluster groups the resources of one PrometheusCluster.
	PartOfPrometheusCluster = "prometheus-cluster"

	// ManagedByOperator identifies the operator managing these resources.
	ManagedByOperator = "prometheus-cluster-operator"

	// LabelCRDVersion records which served version of the CRD the owner was
	// decoded from. It is an object label only and never part of a selector.
	LabelCRDVersion = "relaxdiego.com/crd-version"
)

const (
	// ComponentServer is the component value for Prometheus server pods.
	ComponentServer = "server"

	// ComponentConfig is the component value for the configuration ConfigMap.
	ComponentConfig = "config"
)

// BuildStandardLabels builds the standard Kubernetes labels for an object
// owned by the PrometheusCluster named clusterName.
//
// Standard labels include:
//   - app.kubernetes.io/name: "prometheus"
//   - app.kubernetes.io/instance: <clusterName>
//   - app.kubernetes.io/component: <componentName>
//   - app.kubernetes.io/part-of: "prometheus-cluster"
//   - app.kubernetes.io/managed-by: "prometheus-cluster-operator"
func BuildStandardLabels(clusterName, componentName string) map[string]string {
	return map[string]string{
		LabelAppName:      AppNamePrometheus,
		LabelAppInstance:  clusterName,
		LabelAppComponent: componentName,
		LabelAppPartOf:    PartOfPrometheusCluster,
		LabelAppManagedBy: ManagedByOperator,
	}
}

// SelectorLabels returns the pod labels for the PrometheusCluster named
// clusterName. Both Services select on exactly this set and the StatefulSet
// stamps it on its pod template.
func SelectorLabels(clusterName string) map[string]string {
	return BuildStandardLabels(clusterName, ComponentServer)
}

// AddCRDVersionLabel adds the CRD version label to the provided labels map.
func AddCRDVersionLabel(labels map[string]string, version string) map[string]string {
	if version != "" {
		labels[LabelCRDVersion] = version
	}
	return labels
}

// MergeLabels merges custom labels with standard labels.
//
// Note that standard labels take precedence over custom labels to prevent users
// from overriding critical operator-managed labels.
func MergeLabels(standardLabels, customLabels map[string]string) map[string]string {
	merged := make(map[string]string)

	// Copy custom labels first (if provided)
	maps.Copy(merged, customLabels)

	// Copy standard labels (overwriting any duplicates from custom)
	maps.Copy(merged, standardLabels)

	return merged
}
