package helm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	// DefaultBinary is the helm executable looked up on PATH.
	DefaultBinary = "helm"

	// DefaultChart is the chart location used when none is configured.
	DefaultChart = "charts/prometheus"

	// DefaultTimeout bounds install and upgrade.
	DefaultTimeout = 3 * time.Minute

	valuesFileName = "values.yaml"
	tempDirPrefix  = "prometheus-operator-"
)

// Release identifies a helm release and the values it is deployed with.
type Release struct {
	Name      string
	Namespace string
	Values    Values
}

// PackageDeployer installs, upgrades and uninstalls helm releases.
type PackageDeployer interface {
	Install(ctx context.Context, release Release) error
	Upgrade(ctx context.Context, release Release) error
	Uninstall(ctx context.Context, name, namespace string) error
}

// Deployer drives the helm CLI.
type Deployer struct {
	Binary  string
	Chart   string
	Timeout time.Duration
	// TempDir is where values files are written. Empty means os.TempDir.
	TempDir string
	Command CommandFactory
}

var _ PackageDeployer = &Deployer{}

// NewDeployer returns a Deployer running binary against chart. Empty values
// fall back to the defaults.
func NewDeployer(binary, chart string, timeout time.Duration) *Deployer {
	if binary == "" {
		binary = DefaultBinary
	}
	if chart == "" {
		chart = DefaultChart
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Deployer{
		Binary:  binary,
		Chart:   chart,
		Timeout: timeout,
		Command: ExecCommand,
	}
}

// Install installs release, or upgrades it when it already exists.
func (d *Deployer) Install(ctx context.Context, release Release) error {
	return d.withValues(release, func(valuesFile string) error {
		return d.run(ctx, InstallArgs(release.Name, release.Namespace, d.Chart, valuesFile, d.Timeout))
	})
}

// Upgrade upgrades release, installing it when it is missing.
func (d *Deployer) Upgrade(ctx context.Context, release Release) error {
	return d.withValues(release, func(valuesFile string) error {
		return d.run(ctx, UpgradeArgs(release.Name, release.Namespace, d.Chart, valuesFile, d.Timeout))
	})
}

// Uninstall runs helm uninstall for the named release.
func (d *Deployer) Uninstall(ctx context.Context, name, namespace string) error {
	return d.run(ctx, UninstallArgs(name, namespace))
}

// withValues writes the release values into a fresh temporary directory,
// calls fn with the file path and removes the directory afterwards.
func (d *Deployer) withValues(release Release, fn func(valuesFile string) error) (err error) {
	payload, err := release.Values.Render()
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp(d.TempDir, tempDirPrefix)
	if err != nil {
		return fmt.Errorf("creating values directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			err = errors.Join(err, fmt.Errorf("removing values directory: %w", rmErr))
		}
	}()

	valuesFile := filepath.Join(dir, valuesFileName)
	if err := os.WriteFile(valuesFile, payload, 0o600); err != nil {
		return fmt.Errorf("writing values file: %w", err)
	}
	return fn(valuesFile)
}

func (d *Deployer) run(ctx context.Context, args []string) error {
	logger := log.FromContext(ctx)
	logger.V(1).Info("Running helm", "binary", d.Binary, "args", args)

	command := d.Command
	if command == nil {
		command = ExecCommand
	}
	out, err := command(ctx, d.Binary, args...).CombinedOutput()
	logger.V(1).Info("helm finished", "output", string(out))
	if err != nil {
		return &CommandError{
			Args:     args,
			ExitCode: errToExitCode(err),
			Output:   string(out),
			Err:      err,
		}
	}
	return nil
}
