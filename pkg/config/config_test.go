package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, _, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Defaults()
	if diff := cmp.Diff(&want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, `
crd_version: v1
strategy: helm
watch:
  timeout_seconds: 30
  backoff:
    duration: 2s
    factor: 2
    steps: 4
    cap: 30s
helm:
  chart: /charts/prometheus
`)
	t.Setenv(EnvCRDVersion, "v1alpha1")
	t.Setenv("PCO__WATCH__TIMEOUT_SECONDS", "45")
	t.Setenv("PCO__HELM__TIMEOUT", "5m")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse([]string{"--helm-chart=oci://example/prometheus", "--metrics-bind-address=0"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, _, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Defaults()
	want.CRDVersion = "v1alpha1"       // alias env beats file
	want.Strategy = "helm"             // file beats defaults
	want.Watch.TimeoutSeconds = 45     // nested env beats file
	want.Watch.Backoff = BackoffConfig{Duration: 2 * time.Second, Factor: 2, Steps: 4, Cap: 30 * time.Second}
	want.Helm.Chart = "oci://example/prometheus" // flag beats file
	want.Helm.Timeout = 5 * time.Minute
	want.Metrics.BindAddress = "0"

	if diff := cmp.Diff(&want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	path := writeFile(t, "strategy: helm\n")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, _, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Strategy != "helm" {
		t.Errorf("Strategy = %q, want helm from file", cfg.Strategy)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]struct {
		path    func(t *testing.T) string
		wantErr string
	}{
		"missing file": {
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantErr: "config file not found",
		},
		"unsupported version": {
			path:    func(t *testing.T) string { return writeFile(t, "crd_version: v2\n") },
			wantErr: "crd_version: must be one of: v1alpha1, v1",
		},
		"unknown strategy": {
			path:    func(t *testing.T) string { return writeFile(t, "strategy: kustomize\n") },
			wantErr: "strategy: must be one of: objects, helm",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := Load(tc.path(t), nil)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mutate     func(*Config)
		wantFields []string
	}{
		"defaults are valid": {
			mutate: func(*Config) {},
		},
		"bad watch settings": {
			mutate: func(c *Config) {
				c.Watch.TimeoutSeconds = 0
				c.Watch.Backoff.Duration = 0
				c.Watch.Backoff.Factor = 0.5
				c.Watch.Backoff.Steps = -1
			},
			wantFields: []string{
				"watch.timeout_seconds",
				"watch.backoff.duration",
				"watch.backoff.factor",
				"watch.backoff.steps",
			},
		},
		"helm settings checked only for helm strategy": {
			mutate: func(c *Config) {
				c.Helm = HelmConfig{}
			},
		},
		"helm strategy without chart": {
			mutate: func(c *Config) {
				c.Strategy = "helm"
				c.Helm.Chart = ""
				c.Helm.Timeout = 0
			},
			wantFields: []string{"helm.chart", "helm.timeout"},
		},
		"empty bind addresses": {
			mutate: func(c *Config) {
				c.Metrics.BindAddress = ""
				c.Health.ProbeBindAddress = ""
			},
			wantFields: []string{"metrics.bind_address", "health.probe_bind_address"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := Defaults()
			tc.mutate(&cfg)
			err := cfg.Validate()

			var got []string
			var verrs ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					got = append(got, fe.Field)
				}
			} else if err != nil {
				t.Fatalf("Validate() error = %v, want ValidationErrors", err)
			}
			if diff := cmp.Diff(tc.wantFields, got); diff != "" {
				t.Errorf("invalid fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoader_DumpYAML(t *testing.T) {
	_, l, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	var buf bytes.Buffer
	if err := l.DumpYAML(&buf); err != nil {
		t.Fatalf("DumpYAML() error = %v", err)
	}
	for _, want := range []string{"crd_version: v1alpha1", "strategy: objects", "timeout_seconds: 10"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("dump missing %q:\n%s", want, buf.String())
		}
	}
}
