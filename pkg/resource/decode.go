package resource

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
)

// SupportedVersions lists the served CRD versions the operator can decode.
// Every version shares the {replicas, config} spec schema.
var SupportedVersions = []string{"v1alpha1", "v1"}

// DecodeError reports a malformed PrometheusCluster payload.
type DecodeError struct {
	// Field is the dotted path of the offending field, e.g. "spec.replicas".
	Field string
	// Reason describes what is wrong with the field.
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s: %s", prometheusv1alpha1.Kind, e.Field, e.Reason)
}

// IsDecodeError reports whether err is, or wraps, a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsSupportedVersion reports whether version is a served CRD version the
// operator can decode.
func IsSupportedVersion(version string) bool {
	return slices.Contains(SupportedVersions, version)
}

// Decode validates a loosely typed watch payload and converts it into a
// PrometheusCluster.
//
// Required fields are metadata.name, metadata.namespace, spec.replicas (a
// non-negative integer that fits in int32) and spec.config (a string, possibly
// empty). The apiVersion must name the relaxdiego.com group and one of
// SupportedVersions.
func Decode(u *unstructured.Unstructured) (*prometheusv1alpha1.PrometheusCluster, error) {
	if u == nil || u.Object == nil {
		return nil, &DecodeError{Field: "object", Reason: "is empty"}
	}

	if err := validateTypeMeta(u); err != nil {
		return nil, err
	}

	for _, path := range [][]string{{"metadata", "name"}, {"metadata", "namespace"}} {
		if _, err := requiredString(u.Object, path...); err != nil {
			return nil, err
		}
		if v, _, _ := unstructured.NestedString(u.Object, path...); v == "" {
			return nil, &DecodeError{Field: dotted(path), Reason: "must not be empty"}
		}
	}

	replicas, err := requiredReplicas(u.Object)
	if err != nil {
		return nil, err
	}

	config, err := requiredString(u.Object, "spec", "config")
	if err != nil {
		return nil, err
	}

	// Normalize the number representation before handing the payload to the
	// converter, which only accepts integral kinds for int32 fields.
	obj := u.DeepCopy().Object
	if err := unstructured.SetNestedField(obj, int64(replicas), "spec", "replicas"); err != nil {
		return nil, &DecodeError{Field: "spec.replicas", Reason: err.Error()}
	}

	pc := &prometheusv1alpha1.PrometheusCluster{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj, pc); err != nil {
		return nil, &DecodeError{Field: "object", Reason: err.Error()}
	}
	pc.Spec.Config = config

	return pc, nil
}

func validateTypeMeta(u *unstructured.Unstructured) error {
	gv, err := schema.ParseGroupVersion(u.GetAPIVersion())
	if err != nil {
		return &DecodeError{Field: "apiVersion", Reason: err.Error()}
	}
	if gv.Group != prometheusv1alpha1.Group {
		return &DecodeError{
			Field:  "apiVersion",
			Reason: fmt.Sprintf("group %q is not %q", gv.Group, prometheusv1alpha1.Group),
		}
	}
	if !IsSupportedVersion(gv.Version) {
		return &DecodeError{
			Field:  "apiVersion",
			Reason: fmt.Sprintf("version %q is not one of %v", gv.Version, SupportedVersions),
		}
	}
	if kind := u.GetKind(); kind != prometheusv1alpha1.Kind {
		return &DecodeError{
			Field:  "kind",
			Reason: fmt.Sprintf("%q is not %q", kind, prometheusv1alpha1.Kind),
		}
	}
	return nil
}

func requiredString(obj map[string]any, path ...string) (string, error) {
	v, found, err := unstructured.NestedString(obj, path...)
	if err != nil {
		return "", &DecodeError{Field: dotted(path), Reason: "must be a string"}
	}
	if !found {
		return "", &DecodeError{Field: dotted(path), Reason: "is required"}
	}
	return v, nil
}

func requiredReplicas(obj map[string]any) (int32, error) {
	const field = "spec.replicas"

	raw, found, err := unstructured.NestedFieldNoCopy(obj, "spec", "replicas")
	if err != nil {
		return 0, &DecodeError{Field: "spec", Reason: "must be an object"}
	}
	if !found || raw == nil {
		return 0, &DecodeError{Field: field, Reason: "is required"}
	}

	var n int64
	switch v := raw.(type) {
	case int64:
		n = v
	case int32:
		n = int64(v)
	case int:
		n = int64(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, &DecodeError{Field: field, Reason: "must be an integer"}
		}
		n = int64(v)
	default:
		return 0, &DecodeError{Field: field, Reason: fmt.Sprintf("must be an integer, got %T", raw)}
	}

	if n < 0 {
		return 0, &DecodeError{Field: field, Reason: "must be non-negative"}
	}
	if n > math.MaxInt32 {
		return 0, &DecodeError{Field: field, Reason: "is out of range"}
	}
	return int32(n), nil
}

func dotted(path []string) string {
	return strings.Join(path, ".")
}

// CRDVersion returns the served version a decoded PrometheusCluster was read
// from, or "" if its apiVersion is malformed.
func CRDVersion(pc *prometheusv1alpha1.PrometheusCluster) string {
	gv, err := schema.ParseGroupVersion(pc.APIVersion)
	if err != nil {
		return ""
	}
	return gv.Version
}
