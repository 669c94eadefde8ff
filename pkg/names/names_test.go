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

package names

import "testing"

func TestNames(t *testing.T) {
	tests := map[string]struct {
		owner           string
		configMap       string
		headlessService string
		service         string
		statefulSet     string
	}{
		"cluster-a": {
			owner:           "cluster-a",
			configMap:       "cluster-a-prometheus-cluster",
			headlessService: "cluster-a-prometheus-cluster-pod-addresses",
			service:         "cluster-a-prometheus-cluster",
			statefulSet:     "cluster-a-prometheus",
		},
		"demo": {
			owner:           "demo",
			configMap:       "demo-prometheus-cluster",
			headlessService: "demo-prometheus-cluster-pod-addresses",
			service:         "demo-prometheus-cluster",
			statefulSet:     "demo-prometheus",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ConfigMap(tc.owner); got != tc.configMap {
				t.Errorf("ConfigMap(%q) = %q, want %q", tc.owner, got, tc.configMap)
			}
			if got := HeadlessService(tc.owner); got != tc.headlessService {
				t.Errorf("HeadlessService(%q) = %q, want %q", tc.owner, got, tc.headlessService)
			}
			if got := Service(tc.owner); got != tc.service {
				t.Errorf("Service(%q) = %q, want %q", tc.owner, got, tc.service)
			}
			if got := StatefulSet(tc.owner); got != tc.statefulSet {
				t.Errorf("StatefulSet(%q) = %q, want %q", tc.owner, got, tc.statefulSet)
			}
		})
	}
}

// TestNamesDeterministic checks that repeated calls agree and that distinct
// owners never collide.
func TestNamesDeterministic(t *testing.T) {
	funcs := map[string]func(string) string{
		"ConfigMap":       ConfigMap,
		"HeadlessService": HeadlessService,
		"Service":         Service,
		"StatefulSet":     StatefulSet,
	}

	for fname, f := range funcs {
		t.Run(fname, func(t *testing.T) {
			first := f("cluster-a")
			for range 10 {
				if got := f("cluster-a"); got != first {
					t.Fatalf("%s not deterministic: %q != %q", fname, got, first)
				}
			}
			if f("cluster-a") == f("cluster-b") {
				t.Errorf("%s collides for distinct owners", fname)
			}
		})
	}
}
