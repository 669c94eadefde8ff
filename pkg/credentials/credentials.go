// Package credentials discovers how to reach the Kubernetes API server.
//
// Sources are tried in order and the first one present wins:
//
//  1. an explicitly configured kubeconfig file
//  2. the development kubeconfig at .tmp/serviceaccount/dev_kubeconfig.yml
//  3. the user kubeconfig ($KUBECONFIG or ~/.kube/config)
//  4. the in-cluster service account
//
// A source that is present but unusable is an error; discovery does not fall
// through to the next one.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// DevKubeconfig is the development kubeconfig, relative to the working
// directory.
const DevKubeconfig = ".tmp/serviceaccount/dev_kubeconfig.yml"

// Source names where credentials were found.
type Source string

const (
	SourceExplicit  Source = "explicit kubeconfig"
	SourceDev       Source = "development kubeconfig"
	SourceUser      Source = "user kubeconfig"
	SourceInCluster Source = "in-cluster service account"
)

// Error is returned when no usable credentials exist.
type Error struct {
	Tried []string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("no usable Kubernetes credentials (tried %s): %v", strings.Join(e.Tried, ", "), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsCredentialError reports whether err is an *Error.
func IsCredentialError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// Options control discovery. The zero value discovers from the process
// environment.
type Options struct {
	// Kubeconfig is an explicit kubeconfig path.
	Kubeconfig string
	// DevKubeconfig overrides DevKubeconfig.
	DevKubeconfig string
	// HomeDir overrides the user's home directory.
	HomeDir string
	// InCluster overrides rest.InClusterConfig.
	InCluster func() (*rest.Config, error)
}

// Discover returns a rest.Config for the first source present.
func Discover(opts Options) (*rest.Config, Source, error) {
	var tried []string

	if opts.Kubeconfig != "" {
		cfg, err := fromFile(opts.Kubeconfig)
		if err != nil {
			return nil, "", &Error{Tried: []string{opts.Kubeconfig}, Err: err}
		}
		return cfg, SourceExplicit, nil
	}

	dev := opts.DevKubeconfig
	if dev == "" {
		dev = DevKubeconfig
	}
	tried = append(tried, dev)
	if exists(dev) {
		cfg, err := fromFile(dev)
		if err != nil {
			return nil, "", &Error{Tried: tried, Err: err}
		}
		return cfg, SourceDev, nil
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if os.Getenv(clientcmd.RecommendedConfigPathEnvVar) == "" {
		home := opts.HomeDir
		if home == "" {
			home, _ = os.UserHomeDir()
		}
		userConfig := filepath.Join(home, clientcmd.RecommendedHomeDir, clientcmd.RecommendedFileName)
		rules.Precedence = []string{userConfig}
	}
	tried = append(tried, rules.Precedence...)
	if anyExists(rules.Precedence) {
		cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
		if err != nil {
			return nil, "", &Error{Tried: tried, Err: err}
		}
		return cfg, SourceUser, nil
	}

	inCluster := opts.InCluster
	if inCluster == nil {
		inCluster = rest.InClusterConfig
	}
	tried = append(tried, string(SourceInCluster))
	cfg, err := inCluster()
	if err != nil {
		return nil, "", &Error{Tried: tried, Err: err}
	}
	return cfg, SourceInCluster, nil
}

func fromFile(path string) (*rest.Config, error) {
	cfg, err := clientcmd.BuildConfigFromFlags("", path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func anyExists(paths []string) bool {
	for _, p := range paths {
		if exists(p) {
			return true
		}
	}
	return false
}
