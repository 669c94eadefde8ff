package helm

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
)

func TestValuesRender(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		config      string
		wantLiteral bool
	}{
		"multi-line config is a literal block": {
			config:      "global:\n  scrape_interval: 15s\n",
			wantLiteral: true,
		},
		"single line config stays inline": {
			config: "{}",
		},
		"empty config": {
			config: "",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cluster := &prometheusv1alpha1.PrometheusCluster{
				ObjectMeta: metav1.ObjectMeta{Name: "demo", Namespace: "ns1"},
				Spec:       prometheusv1alpha1.PrometheusClusterSpec{Replicas: 3, Config: tc.config},
			}
			values := ValuesFor(cluster)

			out, err := values.Render()
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got := strings.Contains(string(out), "config: |"); got != tc.wantLiteral {
				t.Errorf("literal block = %v, want %v; output:\n%s", got, tc.wantLiteral, out)
			}

			var decoded Values
			if err := yaml.Unmarshal(out, &decoded); err != nil {
				t.Fatalf("rendered values are not valid YAML: %v", err)
			}
			if diff := cmp.Diff(values, decoded); diff != "" {
				t.Errorf("decoded values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
