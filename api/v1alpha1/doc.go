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

// Package v1alpha1 defines the API types for the Prometheus Cluster Operator.
//
// This package contains the Go type definitions for the PrometheusCluster
// custom resource in the relaxdiego.com API group.
//
// # Custom Resources
//
//   - PrometheusCluster: a user-declared Prometheus deployment. The operator
//     converges a ConfigMap, two Services and a StatefulSet to match it.
//
// # Resource Hierarchy
//
//	PrometheusCluster
//	├── ConfigMap   <name>-prometheus-cluster (prometheus.yml)
//	├── Service     <name>-prometheus-cluster-pod-addresses (headless)
//	├── Service     <name>-prometheus-cluster (client)
//	└── StatefulSet <name>-prometheus
//
// # Versioning
//
// The v1 version of the CRD is served with the same schema. The operator
// decodes both into the types of this package.
package v1alpha1
