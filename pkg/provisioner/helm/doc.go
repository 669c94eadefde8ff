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

// Package helm implements the package-deployer provisioning strategy. Each
// PrometheusCluster maps to one helm release named after the resource and
// installed into its namespace. spec.replicas and spec.config are passed to
// the chart as:
//
//	prometheus:
//	  replicas: <spec.replicas>
//	  config: |
//	    <spec.config>
//
// The helm binary runs as a subprocess. Install and upgrade both run
// "helm upgrade --install", so replaying an install over an existing release
// converges it. Both are atomic and wait for the release to become ready,
// bounded by a timeout.
package helm
