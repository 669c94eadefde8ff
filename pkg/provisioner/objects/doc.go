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

// Package objects implements the direct-object provisioning strategy for the
// PrometheusCluster resource.
//
// For each PrometheusCluster the Reconciler ensures four child objects, in
// order:
//
// # ConfigMap
//
// Holds spec.config verbatim under the prometheus.yml key. Updates replace the
// whole object since its body is fully owned by the operator.
//
// # Services
//
//   - Headless Service: resolves to the individual pod addresses (clusterIP
//     None) and gives each StatefulSet pod a stable DNS name.
//   - Client Service: load balances across all Prometheus pods on port 9090.
//
// Updates merge-patch labels, selector and ports only.
//
// # StatefulSet
//
// Runs spec.replicas Prometheus pods, each mounting the ConfigMap and a
// dedicated data volume. Updates merge-patch replicas, labels and the pod
// template; immutable fields (selector, serviceName, volume claim templates)
// are never touched.
//
// # Failure handling
//
// Every ensure step runs even if an earlier one failed. Failures are logged
// with kind, name and namespace, recorded as Kubernetes Events on the
// PrometheusCluster, and returned joined. Nothing is retried inline; the next
// watch event for the same resource retries the whole set.
package objects
