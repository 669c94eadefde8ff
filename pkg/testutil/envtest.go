package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	k8sruntime "k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/envtest"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
)

// EnvtestAssetsEnv points at the kube-apiserver and etcd binaries.
const EnvtestAssetsEnv = "KUBEBUILDER_ASSETS"

// CRDPath returns the directory holding the CRD manifests of this module.
func CRDPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "config", "crd", "bases")
}

// SetUpEnvtest starts a Kubernetes API server with the module's CRDs
// installed and stops it when the test finishes.
//
// This requires the envtest binaries. The test is skipped when
// KUBEBUILDER_ASSETS is not set.
func SetUpEnvtest(t testing.TB) *rest.Config {
	t.Helper()

	if os.Getenv(EnvtestAssetsEnv) == "" {
		t.Skipf("%s not set; skipping envtest based test", EnvtestAssetsEnv)
	}

	testEnv := &envtest.Environment{
		CRDDirectoryPaths:     []string{CRDPath()},
		ErrorIfCRDPathMissing: true,
		// Increase timeout to handle resource contention when many tests run in parallel
		ControlPlaneStartTimeout: 60 * time.Second,
		ControlPlaneStopTimeout:  60 * time.Second,
	}

	cfg, err := testEnv.Start()
	if err != nil {
		t.Fatalf("Setting up with envtest failed, %v", err)
	}
	t.Cleanup(func() {
		if err := testEnv.Stop(); err != nil {
			t.Errorf("Failed to stop envtest, %v", err)
		}
	})

	return cfg
}

// SetUpClient creates a direct Kubernetes client (non-cached).
func SetUpClient(t testing.TB, cfg *rest.Config, scheme *k8sruntime.Scheme) client.Client {
	t.Helper()

	k8sClient, err := client.New(cfg, client.Options{Scheme: scheme})
	if err != nil {
		t.Fatalf("Failed to setup a Kubernetes client: %v", err)
	}

	return k8sClient
}

// SetUpDynamicClient creates a dynamic client, as used to watch custom
// resources.
func SetUpDynamicClient(t testing.TB, cfg *rest.Config) dynamic.Interface {
	t.Helper()

	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		t.Fatalf("Failed to setup a dynamic client: %v", err)
	}

	return dyn
}

// SetUpManager creates a controller-runtime manager for testing, with the
// metrics server disabled. The manager is not started.
func SetUpManager(t testing.TB, cfg *rest.Config, scheme *k8sruntime.Scheme) manager.Manager {
	t.Helper()

	mgr, err := ctrl.NewManager(cfg, ctrl.Options{
		Scheme:         scheme,
		LeaderElection: false,
		Metrics: metricsserver.Options{
			BindAddress: "0",
		},
	})
	if err != nil {
		t.Fatalf("Failed to set up manager: %v", err)
	}

	return mgr
}

// StartManager starts the manager in the background using t.Context().
//
// t.Context() gets cancelled when the test finishes, which cleanly stops the
// manager. The returned channel is closed once the manager has stopped.
func StartManager(t testing.TB, mgr manager.Manager) <-chan struct{} {
	t.Helper()

	return startManager(t, t.Context(), mgr)
}

func startManager(t testing.TB, ctx context.Context, mgr manager.Manager) <-chan struct{} {
	t.Helper()

	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := mgr.Start(ctx); err != nil {
			t.Errorf("Manager failed: %v", err)
		}
	}()

	return done
}
