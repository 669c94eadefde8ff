package helm

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeCmd struct {
	run func() ([]byte, error)
}

func (c *fakeCmd) CombinedOutput() ([]byte, error) { return c.run() }

type exitError struct{ code int }

func (e *exitError) Error() string { return "exit status" }
func (e *exitError) ExitCode() int { return e.code }

// commandRecorder records helm invocations and the values file content seen
// while the command ran.
type commandRecorder struct {
	mu     sync.Mutex
	name   string
	args   []string
	values string
	out    []byte
	err    error
}

func (r *commandRecorder) factory(_ context.Context, name string, arg ...string) Cmd {
	return &fakeCmd{run: func() ([]byte, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.name = name
		r.args = arg
		for i, a := range arg {
			if a == "--values" && i+1 < len(arg) {
				data, err := os.ReadFile(arg[i+1])
				if err != nil {
					return nil, err
				}
				r.values = string(data)
			}
		}
		return r.out, r.err
	}}
}

func (r *commandRecorder) valuesFile() string {
	for i, a := range r.args {
		if a == "--values" && i+1 < len(r.args) {
			return r.args[i+1]
		}
	}
	return ""
}

func demoRelease() Release {
	return Release{
		Name:      "demo",
		Namespace: "ns1",
		Values: Values{Prometheus: PrometheusValues{
			Replicas: 3,
			Config:   "global:\n  scrape_interval: 15s",
		}},
	}
}

func TestDeployer_InstallAndUpgrade(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		call func(context.Context, *Deployer) error
		verb string
	}{
		"install": {
			call: func(ctx context.Context, d *Deployer) error { return d.Install(ctx, demoRelease()) },
			verb: "install",
		},
		"upgrade": {
			call: func(ctx context.Context, d *Deployer) error { return d.Upgrade(ctx, demoRelease()) },
			verb: "upgrade",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := &commandRecorder{}
			d := NewDeployer("", "", 0)
			d.TempDir = t.TempDir()
			d.Command = rec.factory

			if err := tc.call(t.Context(), d); err != nil {
				t.Fatalf("%s error = %v", tc.verb, err)
			}

			if rec.name != DefaultBinary {
				t.Errorf("binary = %q, want %q", rec.name, DefaultBinary)
			}
			valuesFile := rec.valuesFile()
			want := []string{
				"upgrade", "--install", "--atomic", "--wait", "--timeout=3m0s",
				"--values", valuesFile,
				"--namespace=ns1", "demo", DefaultChart,
			}
			if diff := cmp.Diff(want, rec.args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
			if !strings.Contains(rec.values, "replicas: 3") || !strings.Contains(rec.values, "scrape_interval: 15s") {
				t.Errorf("values file content = %q", rec.values)
			}
			if _, err := os.Stat(valuesFile); !os.IsNotExist(err) {
				t.Errorf("values file %s not removed: %v", valuesFile, err)
			}
		})
	}
}

// releaseStore behaves like helm against a cluster: a plain install of an
// existing release and a plain upgrade of a missing one both fail.
type releaseStore struct {
	mu       sync.Mutex
	releases map[string]string
	verbs    []string
}

func (s *releaseStore) factory(_ context.Context, _ string, arg ...string) Cmd {
	return &fakeCmd{run: func() ([]byte, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		var verb, valuesFile, name string
		install := false
		positional := []string{}
		for i := 0; i < len(arg); i++ {
			switch a := arg[i]; {
			case a == "--install":
				install = true
			case a == "--values":
				i++
				valuesFile = arg[i]
			case strings.HasPrefix(a, "--"):
			default:
				positional = append(positional, a)
			}
		}
		verb, name = positional[0], positional[1]
		s.verbs = append(s.verbs, verb)

		_, exists := s.releases[name]
		switch {
		case verb == "install" && exists:
			return []byte("Error: INSTALLATION FAILED: cannot re-use a name that is still in use"), &exitError{code: 1}
		case verb == "upgrade" && !exists && !install:
			return []byte(`Error: UPGRADE FAILED: "` + name + `" has no deployed releases`), &exitError{code: 1}
		}
		data, err := os.ReadFile(valuesFile)
		if err != nil {
			return nil, err
		}
		s.releases[name] = string(data)
		return nil, nil
	}}
}

func TestDeployer_RepeatedInstallConverges(t *testing.T) {
	t.Parallel()

	store := &releaseStore{releases: map[string]string{}}
	d := NewDeployer("", "", 0)
	d.TempDir = t.TempDir()
	d.Command = store.factory

	first := demoRelease()
	if err := d.Install(t.Context(), first); err != nil {
		t.Fatalf("first Install() error = %v", err)
	}

	second := demoRelease()
	second.Values.Prometheus.Replicas = 5
	if err := d.Install(t.Context(), second); err != nil {
		t.Fatalf("second Install() error = %v", err)
	}
	if got := store.releases["demo"]; !strings.Contains(got, "replicas: 5") {
		t.Errorf("release values = %q, want replicas: 5", got)
	}

	// An upgrade of a release that was never installed installs it.
	other := demoRelease()
	other.Name = "other"
	if err := d.Upgrade(t.Context(), other); err != nil {
		t.Fatalf("Upgrade() of missing release error = %v", err)
	}
	if _, ok := store.releases["other"]; !ok {
		t.Error("release other was not installed by Upgrade")
	}
}

func TestDeployer_Uninstall(t *testing.T) {
	t.Parallel()

	rec := &commandRecorder{}
	d := NewDeployer("/usr/local/bin/helm", "charts/prometheus", time.Minute)
	d.Command = rec.factory

	if err := d.Uninstall(t.Context(), "demo", "ns1"); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	if rec.name != "/usr/local/bin/helm" {
		t.Errorf("binary = %q", rec.name)
	}
	if diff := cmp.Diff([]string{"uninstall", "--namespace=ns1", "demo"}, rec.args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestDeployer_CommandFailure(t *testing.T) {
	t.Parallel()

	rec := &commandRecorder{
		out: []byte("Error: release: not found"),
		err: &exitError{code: 1},
	}
	d := NewDeployer("", "", 0)
	d.TempDir = t.TempDir()
	d.Command = rec.factory

	err := d.Upgrade(t.Context(), demoRelease())
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Upgrade() error = %v, want *CommandError", err)
	}
	if cmdErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", cmdErr.ExitCode)
	}
	if !strings.Contains(cmdErr.Error(), "release: not found") {
		t.Errorf("error %q does not carry helm output", cmdErr.Error())
	}
	entries, readErr := os.ReadDir(d.TempDir)
	if readErr != nil {
		t.Fatalf("ReadDir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("temporary directory left behind: %v", entries)
	}
}
