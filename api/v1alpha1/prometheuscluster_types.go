/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ============================================================================
// PrometheusCluster Spec (User-editable API)
// ============================================================================

// PrometheusClusterSpec defines the desired state of PrometheusCluster.
type PrometheusClusterSpec struct {
	// Replicas is the desired number of Prometheus pods.
	// +kubebuilder:validation:Minimum=0
	Replicas int32 `json:"replicas"`

	// Config is the prometheus.yml payload. It is passed through verbatim.
	Config string `json:"config"`
}

// ============================================================================
// Kind Definition and registration
// ============================================================================

// +kubebuilder:object:root=true
// +kubebuilder:resource:path=prometheusclusters,scope=Namespaced
// +kubebuilder:printcolumn:name="Replicas",type="integer",JSONPath=".spec.replicas"

// PrometheusCluster is the Schema for the prometheusclusters API
type PrometheusCluster struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec PrometheusClusterSpec `json:"spec,omitempty"`
}

// String identifies the resource in log lines.
func (p *PrometheusCluster) String() string {
	return fmt.Sprintf("%s %s ns=%s name=%s", p.Kind, p.APIVersion, p.Namespace, p.Name)
}

// +kubebuilder:object:root=true

// PrometheusClusterList contains a list of PrometheusCluster
type PrometheusClusterList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []PrometheusCluster `json:"items"`
}

func init() {
	SchemeBuilder.Register(&PrometheusCluster{}, &PrometheusClusterList{})
}
