/*
Copyright 2026 Numtide.

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

// Package names derives the names of the objects owned by a PrometheusCluster.
//
// Every child is 1:1 with its owner, so names are plain concatenations of the
// owner's name and a fixed per-kind suffix. No hashing, randomness or counters
// are involved: recomputing a name always yields the same string, and two
// differently named owners never share a child name of the same kind.
package names

const (
	// ClusterSuffix is appended to the owner's name for the ConfigMap and the
	// client Service.
	ClusterSuffix = "-prometheus-cluster"

	// PodAddressesSuffix is appended to the owner's name for the headless
	// Service.
	PodAddressesSuffix = "-prometheus-cluster-pod-addresses"

	// WorkloadSuffix is appended to the owner's name for the StatefulSet.
	WorkloadSuffix = "-prometheus"
)

// ConfigMap returns the name of the ConfigMap holding prometheus.yml.
func ConfigMap(owner string) string {
	return owner + ClusterSuffix
}

// HeadlessService returns the name of the Service that resolves to the
// individual pod addresses.
func HeadlessService(owner string) string {
	return owner + PodAddressesSuffix
}

// Service returns the name of the load-balanced client Service.
func Service(owner string) string {
	return owner + ClusterSuffix
}

// StatefulSet returns the name of the Prometheus StatefulSet.
func StatefulSet(owner string) string {
	return owner + WorkloadSuffix
}
