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

package main

import (
	"context"
	"flag"
	"os"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/dynamic"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
	"github.com/numtide/prometheus-cluster-operator/pkg/config"
	"github.com/numtide/prometheus-cluster-operator/pkg/credentials"
	"github.com/numtide/prometheus-cluster-operator/pkg/monitoring"
	"github.com/numtide/prometheus-cluster-operator/pkg/provisioner"
	"github.com/numtide/prometheus-cluster-operator/pkg/provisioner/helm"
	"github.com/numtide/prometheus-cluster-operator/pkg/provisioner/objects"
	"github.com/numtide/prometheus-cluster-operator/pkg/watcher"
)

const (
	operatorName = "prometheus-cluster-operator"

	exitFailure         = 1
	exitCredentialError = 3
)

// version is set at build time.
var version = "dev"

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(prometheusv1alpha1.AddToScheme(scheme))
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		setupLog.Error(err, "exiting")
		if credentials.IsCredentialError(err) {
			os.Exit(exitCredentialError)
		}
		os.Exit(exitFailure)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	zapOpts := zap.Options{Development: true}

	cmd := &cobra.Command{
		Use:           operatorName,
		Short:         "Provisions Prometheus clusters from PrometheusCluster resources",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts)))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return run(ctrl.SetupSignalHandler(), cfg)
		},
	}

	goFlags := flag.NewFlagSet(operatorName, flag.ContinueOnError)
	zapOpts.BindFlags(goFlags)
	cmd.PersistentFlags().AddGoFlagSet(goFlags)
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	config.BindFlags(cmd.Flags())

	cmd.AddCommand(newConfigCommand(&configPath))
	return cmd
}

// newConfigCommand prints the merged configuration.
func newConfigCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, loader, err := config.Load(*configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return loader.DumpYAML(cmd.OutOrStdout())
		},
	}
	config.BindFlags(cmd.Flags())
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	restConfig, source, err := credentials.Discover(credentials.Options{Kubeconfig: cfg.Kubeconfig})
	if err != nil {
		return err
	}
	setupLog.Info("Loaded Kubernetes credentials", "source", source, "host", restConfig.Host)

	shutdownTracing, err := monitoring.InitTracing(ctx, operatorName, version)
	if err != nil {
		setupLog.Error(err, "unable to initialise tracing")
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			setupLog.Error(err, "failed to shut down tracing")
		}
	}()

	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: cfg.Metrics.BindAddress,
		},
		HealthProbeBindAddress: cfg.Health.ProbeBindAddress,
		LeaderElection:         false,
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		return err
	}

	// Children are read once per event, so a direct client is used instead
	// of the manager's informer-backed one.
	c, err := client.New(mgr.GetConfig(), client.Options{Scheme: scheme})
	if err != nil {
		setupLog.Error(err, "failed to create client")
		return err
	}

	prov, err := newProvisioner(cfg, c, mgr.GetEventRecorderFor(operatorName))
	if err != nil {
		return err
	}

	dyn, err := dynamic.NewForConfig(mgr.GetConfig())
	if err != nil {
		setupLog.Error(err, "failed to create dynamic client")
		return err
	}
	gvr := prometheusv1alpha1.GroupVersionResource(cfg.CRDVersion)
	loop := watcher.New(dyn.Resource(gvr), prov, watcher.Options{
		TimeoutSeconds: cfg.Watch.TimeoutSeconds,
		Backoff: wait.Backoff{
			Duration: cfg.Watch.Backoff.Duration,
			Factor:   cfg.Watch.Backoff.Factor,
			Steps:    cfg.Watch.Backoff.Steps,
			Cap:      cfg.Watch.Backoff.Cap,
		},
	})
	if err := mgr.Add(loop); err != nil {
		setupLog.Error(err, "unable to add watch loop to manager")
		return err
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		return err
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		return err
	}

	setupLog.Info("starting manager",
		"resource", gvr.String(), "strategy", cfg.Strategy, "version", version)
	if err := mgr.Start(ctx); err != nil {
		setupLog.Error(err, "problem running manager")
		return err
	}
	return nil
}

func newProvisioner(cfg *config.Config, c client.Client, recorder record.EventRecorder) (provisioner.Provisioner, error) {
	strategy, err := provisioner.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	switch strategy {
	case provisioner.StrategyHelm:
		return helm.NewProvisioner(helm.NewDeployer(cfg.Helm.Binary, cfg.Helm.Chart, cfg.Helm.Timeout)), nil
	default:
		return objects.NewReconciler(c, recorder), nil
	}
}
