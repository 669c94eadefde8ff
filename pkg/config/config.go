package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/numtide/prometheus-cluster-operator/pkg/provisioner"
	"github.com/numtide/prometheus-cluster-operator/pkg/resource"
)

const (
	// EnvPrefix prefixes the nested environment variables, e.g.
	// PCO__HELM__CHART.
	EnvPrefix = "PCO"

	// EnvCRDVersion selects the served CRD version to watch.
	EnvCRDVersion = "PROMETHEUS_CLUSTER_CRD_VERSION_TO_WATCH"
)

// Config is the operator configuration.
type Config struct {
	// CRDVersion is the served version of the PrometheusCluster CRD to watch.
	CRDVersion string `koanf:"crd_version"`
	// Strategy selects how clusters are provisioned: objects or helm.
	Strategy string `koanf:"strategy"`
	// Kubeconfig is an explicit kubeconfig path. Empty means discover.
	Kubeconfig string        `koanf:"kubeconfig"`
	Watch      WatchConfig   `koanf:"watch"`
	Helm       HelmConfig    `koanf:"helm"`
	Metrics    MetricsConfig `koanf:"metrics"`
	Health     HealthConfig  `koanf:"health"`
}

// WatchConfig tunes the watch loop.
type WatchConfig struct {
	TimeoutSeconds int64         `koanf:"timeout_seconds"`
	Backoff        BackoffConfig `koanf:"backoff"`
}

// BackoffConfig mirrors wait.Backoff. Factor 1 keeps the delay constant.
type BackoffConfig struct {
	Duration time.Duration `koanf:"duration"`
	Factor   float64       `koanf:"factor"`
	Steps    int           `koanf:"steps"`
	Cap      time.Duration `koanf:"cap"`
}

// HelmConfig configures the helm strategy.
type HelmConfig struct {
	Binary  string        `koanf:"binary"`
	Chart   string        `koanf:"chart"`
	Timeout time.Duration `koanf:"timeout"`
}

// MetricsConfig configures the metrics endpoint.
type MetricsConfig struct {
	// BindAddress is served by the manager. "0" disables it.
	BindAddress string `koanf:"bind_address"`
}

// HealthConfig configures the health probe endpoint.
type HealthConfig struct {
	ProbeBindAddress string `koanf:"probe_bind_address"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		CRDVersion: "v1alpha1",
		Strategy:   string(provisioner.StrategyObjects),
		Watch: WatchConfig{
			TimeoutSeconds: 10,
			Backoff: BackoffConfig{
				Duration: 5 * time.Second,
				Factor:   1.0,
			},
		},
		Helm: HelmConfig{
			Binary:  "helm",
			Chart:   "charts/prometheus",
			Timeout: 3 * time.Minute,
		},
		Metrics: MetricsConfig{BindAddress: ":8080"},
		Health:  HealthConfig{ProbeBindAddress: ":8081"},
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidationErrors

	errs.Add(MustBeOneOf(NewPath("crd_version"), c.CRDVersion, resource.SupportedVersions))

	strategies := make([]string, 0, len(provisioner.Strategies))
	for _, s := range provisioner.Strategies {
		strategies = append(strategies, string(s))
	}
	errs.Add(MustBeOneOf(NewPath("strategy"), c.Strategy, strategies))

	watch := NewPath("watch")
	errs.Add(MustBeInRange(watch.Child("timeout_seconds"), c.Watch.TimeoutSeconds, 1, 3600))
	backoff := watch.Child("backoff")
	errs.Add(
		MustBeGreaterThan(backoff.Child("duration"), c.Watch.Backoff.Duration, 0),
		MustBeInRange(backoff.Child("factor"), c.Watch.Backoff.Factor, 1.0, 10.0),
		MustBeNonNegative(backoff.Child("steps"), c.Watch.Backoff.Steps),
		MustBeNonNegative(backoff.Child("cap"), c.Watch.Backoff.Cap),
	)

	if c.Strategy == string(provisioner.StrategyHelm) {
		helm := NewPath("helm")
		errs.Add(
			MustNotBeEmpty(helm.Child("binary"), c.Helm.Binary),
			MustNotBeEmpty(helm.Child("chart"), c.Helm.Chart),
			MustBeGreaterThan(helm.Child("timeout"), c.Helm.Timeout, 0),
		)
	}

	errs.Add(
		MustNotBeEmpty(NewPath("metrics").Child("bind_address"), c.Metrics.BindAddress),
		MustNotBeEmpty(NewPath("health").Child("probe_bind_address"), c.Health.ProbeBindAddress),
	)

	return errs.OrNil()
}

// FlagMappings maps command-line flag names to configuration keys.
var FlagMappings = map[string]string{
	"crd-version":               "crd_version",
	"strategy":                  "strategy",
	"kubeconfig":                "kubeconfig",
	"watch-timeout-seconds":     "watch.timeout_seconds",
	"watch-backoff":             "watch.backoff.duration",
	"helm-binary":               "helm.binary",
	"helm-chart":                "helm.chart",
	"helm-timeout":              "helm.timeout",
	"metrics-bind-address":      "metrics.bind_address",
	"health-probe-bind-address": "health.probe_bind_address",
}

// BindFlags registers the flags listed in FlagMappings on fs. Their defaults
// are informational; only flags set explicitly override other sources.
func BindFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("crd-version", d.CRDVersion, "Served version of the PrometheusCluster CRD to watch")
	fs.String("strategy", d.Strategy, "Provisioning strategy: objects or helm")
	fs.String("kubeconfig", "", "Path to a kubeconfig file; discovered when empty")
	fs.Int64("watch-timeout-seconds", d.Watch.TimeoutSeconds, "Seconds before the API server closes a watch stream; the loop then resumes it")
	fs.Duration("watch-backoff", d.Watch.Backoff.Duration, "Wait before reconnecting after a watch error")
	fs.String("helm-binary", d.Helm.Binary, "helm executable")
	fs.String("helm-chart", d.Helm.Chart, "Chart installed for each PrometheusCluster")
	fs.Duration("helm-timeout", d.Helm.Timeout, "Timeout of helm install and upgrade")
	fs.String("metrics-bind-address", d.Metrics.BindAddress, "Address the metrics endpoint binds to; 0 disables it")
	fs.String("health-probe-bind-address", d.Health.ProbeBindAddress, "Address the health probe endpoint binds to")
}

// Load builds the configuration from defaults, the optional file at path,
// the environment and the explicitly set flags in fs, in increasing order of
// priority. The returned Loader holds the merged values.
func Load(path string, fs *pflag.FlagSet) (*Config, *Loader, error) {
	l := NewLoader(EnvPrefix)
	if err := l.LoadWithDefaults(Defaults(), path, map[string]string{EnvCRDVersion: "crd_version"}); err != nil {
		return nil, nil, err
	}
	if fs != nil {
		if err := l.LoadFlags(fs, FlagMappings); err != nil {
			return nil, nil, err
		}
	}
	cfg := &Config{}
	if err := l.UnmarshalAndValidate("", cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, l, nil
}
