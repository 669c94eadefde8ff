package objects

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
)

const (
	// WebPort is the port Prometheus serves its API and UI on.
	WebPort int32 = 9090

	// WebPortName names WebPort on containers and Services.
	WebPortName = "web"
)

// buildContainerPorts creates the port definitions for the Prometheus container.
func buildContainerPorts() []corev1.ContainerPort {
	return []corev1.ContainerPort{
		{
			Name:          WebPortName,
			ContainerPort: WebPort,
			Protocol:      corev1.ProtocolTCP,
		},
	}
}

// buildServicePorts creates the service ports shared by the headless and the
// client Service.
func buildServicePorts() []corev1.ServicePort {
	return []corev1.ServicePort{
		{
			Name:       WebPortName,
			Port:       WebPort,
			TargetPort: intstr.FromString(WebPortName),
			Protocol:   corev1.ProtocolTCP,
		},
	}
}
