package helm

import (
	"fmt"
	"time"
)

// InstallArgs returns the arguments of a helm install. It runs as an upgrade
// with --install so that installing an existing release converges it to the
// given values instead of failing on the name being in use.
func InstallArgs(name, namespace, chart, valuesFile string, timeout time.Duration) []string {
	return releaseArgs(name, namespace, chart, valuesFile, timeout)
}

// UpgradeArgs returns the arguments of a helm upgrade. A missing release is
// installed.
func UpgradeArgs(name, namespace, chart, valuesFile string, timeout time.Duration) []string {
	return releaseArgs(name, namespace, chart, valuesFile, timeout)
}

// UninstallArgs returns the arguments of a helm uninstall.
func UninstallArgs(name, namespace string) []string {
	return []string{
		"uninstall",
		"--namespace=" + namespace,
		name,
	}
}

func releaseArgs(name, namespace, chart, valuesFile string, timeout time.Duration) []string {
	return []string{
		"upgrade",
		"--install",
		"--atomic",
		"--wait",
		fmt.Sprintf("--timeout=%s", timeout),
		"--values", valuesFile,
		"--namespace=" + namespace,
		name,
		chart,
	}
}
