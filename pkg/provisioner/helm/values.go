package helm

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
)

// Values is the values payload handed to the chart.
type Values struct {
	Prometheus PrometheusValues `yaml:"prometheus"`
}

// PrometheusValues carries the PrometheusCluster spec.
type PrometheusValues struct {
	Replicas int32  `yaml:"replicas"`
	Config   string `yaml:"config"`
}

// ValuesFor returns the values payload of cluster.
func ValuesFor(cluster *prometheusv1alpha1.PrometheusCluster) Values {
	return Values{
		Prometheus: PrometheusValues{
			Replicas: cluster.Spec.Replicas,
			Config:   cluster.Spec.Config,
		},
	}
}

// Render encodes v as YAML. Multi-line strings are written as literal blocks
// so the embedded Prometheus configuration stays readable.
func (v Values) Render() ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding values: %w", err)
	}
	literalMultiline(&node)
	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("marshalling values: %w", err)
	}
	return out, nil
}

func literalMultiline(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!str" && strings.Contains(n.Value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	for _, c := range n.Content {
		literalMultiline(c)
	}
}
