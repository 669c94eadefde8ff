package objects

import (
	"context"
	"errors"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/tools/record"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
	"github.com/numtide/prometheus-cluster-operator/pkg/metadata"
	"github.com/numtide/prometheus-cluster-operator/pkg/monitoring"
	"github.com/numtide/prometheus-cluster-operator/pkg/names"
	"github.com/numtide/prometheus-cluster-operator/pkg/provisioner"
)

// DefaultFieldOwner is the field manager recorded on every write.
const DefaultFieldOwner = "prometheus-cluster-operator"

// Child kinds as they appear in logs, events and metrics.
const (
	KindConfigMap   = "ConfigMap"
	KindService     = "Service"
	KindStatefulSet = "StatefulSet"
)

// Child actions as they appear in metrics.
const (
	actionCreate   = "create"
	actionUpdate   = "update"
	actionPatch    = "patch"
	actionRecreate = "recreate"
	actionDelete   = "delete"
)

var _ provisioner.Provisioner = &Reconciler{}

// Reconciler converges the ConfigMap, Services and StatefulSet of a
// PrometheusCluster by talking to the API server directly.
type Reconciler struct {
	Client     client.Client
	Recorder   record.EventRecorder
	FieldOwner string
}

// NewReconciler returns a Reconciler writing through c. A nil recorder
// discards events.
func NewReconciler(c client.Client, recorder record.EventRecorder) *Reconciler {
	if recorder == nil {
		recorder = &record.FakeRecorder{}
	}
	return &Reconciler{
		Client:     c,
		Recorder:   recorder,
		FieldOwner: DefaultFieldOwner,
	}
}

// ensureStep ensures one child resource.
type ensureStep struct {
	kind   string
	name   func(string) string
	ensure func(context.Context, *prometheusv1alpha1.PrometheusCluster) error
}

func (r *Reconciler) steps() []ensureStep {
	return []ensureStep{
		{kind: KindConfigMap, name: names.ConfigMap, ensure: r.ensureConfigMap},
		{kind: KindService, name: names.HeadlessService, ensure: r.ensureHeadlessService},
		{kind: KindService, name: names.Service, ensure: r.ensureClientService},
		{kind: KindStatefulSet, name: names.StatefulSet, ensure: r.ensureStatefulSet},
	}
}

// Install creates or updates every child of cluster.
func (r *Reconciler) Install(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error {
	return r.converge(ctx, "install", cluster)
}

// Upgrade converges to the same end state as Install.
func (r *Reconciler) Upgrade(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error {
	return r.converge(ctx, "upgrade", cluster)
}

// converge runs every ensure step in order. A failing step does not stop the
// ones after it; all failures are joined into the returned error.
func (r *Reconciler) converge(
	ctx context.Context,
	operation string,
	cluster *prometheusv1alpha1.PrometheusCluster,
) error {
	start := time.Now()
	ctx, span := monitoring.StartReconcileSpan(
		ctx, "PrometheusCluster."+operation, cluster.Name, cluster.Namespace, prometheusv1alpha1.Kind,
	)
	defer span.End()
	ctx = monitoring.EnrichLoggerWithTrace(ctx)
	logger := log.FromContext(ctx).WithValues("operation", operation)

	var errs []error
	for _, step := range r.steps() {
		name := step.name(cluster.Name)
		if err := step.ensure(ctx, cluster); err != nil {
			logger.Error(err, "Failed to reconcile child resource",
				"kind", step.kind,
				"name", name,
				"namespace", cluster.Namespace,
				"status", apiStatusCode(err),
				"reason", apierrors.ReasonForError(err),
			)
			r.Recorder.Eventf(cluster, corev1.EventTypeWarning, "FailedApply",
				"Failed to reconcile %s %s: %v", step.kind, name, err)
			errs = append(errs, fmt.Errorf("%s %s/%s: %w", step.kind, cluster.Namespace, name, err))
		}
	}

	err := errors.Join(errs...)
	monitoring.RecordSpanError(span, err)
	monitoring.RecordReconcile(operation, err, time.Since(start))
	monitoring.SetClusterReplicas(cluster.Name, cluster.Namespace, cluster.Spec.Replicas)
	if err != nil {
		return err
	}

	logger.Info("Reconciled PrometheusCluster", "replicas", cluster.Spec.Replicas)
	r.Recorder.Event(cluster, corev1.EventTypeNormal, "Synced", "Successfully reconciled PrometheusCluster")
	return nil
}

// Uninstall deletes the children of cluster, workload first. Children that
// are already gone count as deleted.
func (r *Reconciler) Uninstall(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error {
	start := time.Now()
	ctx, span := monitoring.StartReconcileSpan(
		ctx, "PrometheusCluster.uninstall", cluster.Name, cluster.Namespace, prometheusv1alpha1.Kind,
	)
	defer span.End()
	ctx = monitoring.EnrichLoggerWithTrace(ctx)
	logger := log.FromContext(ctx).WithValues("operation", "uninstall")

	meta := func(name string) metav1.ObjectMeta {
		return metav1.ObjectMeta{Name: name, Namespace: cluster.Namespace}
	}
	children := []struct {
		kind string
		obj  client.Object
	}{
		{KindStatefulSet, &appsv1.StatefulSet{ObjectMeta: meta(names.StatefulSet(cluster.Name))}},
		{KindService, &corev1.Service{ObjectMeta: meta(names.Service(cluster.Name))}},
		{KindService, &corev1.Service{ObjectMeta: meta(names.HeadlessService(cluster.Name))}},
		{KindConfigMap, &corev1.ConfigMap{ObjectMeta: meta(names.ConfigMap(cluster.Name))}},
	}

	var errs []error
	for _, child := range children {
		err := r.Client.Delete(ctx, child.obj, client.PropagationPolicy(metav1.DeletePropagationBackground))
		if apierrors.IsNotFound(err) {
			logger.V(1).Info("Child resource already absent",
				"kind", child.kind, "name", child.obj.GetName(), "namespace", cluster.Namespace)
			continue
		}
		monitoring.RecordChildOperation(child.kind, actionDelete, err)
		if err != nil {
			logger.Error(err, "Failed to delete child resource",
				"kind", child.kind,
				"name", child.obj.GetName(),
				"namespace", cluster.Namespace,
				"status", apiStatusCode(err),
				"reason", apierrors.ReasonForError(err),
			)
			errs = append(errs, fmt.Errorf("%s %s/%s: %w", child.kind, cluster.Namespace, child.obj.GetName(), err))
			continue
		}
		logger.Info("Deleted child resource", "kind", child.kind, "name", child.obj.GetName())
	}

	err := errors.Join(errs...)
	monitoring.RecordSpanError(span, err)
	monitoring.RecordReconcile("uninstall", err, time.Since(start))
	if err != nil {
		r.Recorder.Eventf(cluster, corev1.EventTypeWarning, "FailedDelete", "Failed to uninstall: %v", err)
		return err
	}

	monitoring.DeleteClusterReplicas(cluster.Name, cluster.Namespace)
	r.Recorder.Event(cluster, corev1.EventTypeNormal, "Deleted", "Deleted PrometheusCluster resources")
	return nil
}

// apiStatusCode is the HTTP status carried by an API error, or 0 when err did
// not come from the API server.
func apiStatusCode(err error) int32 {
	var status apierrors.APIStatus
	if errors.As(err, &status) {
		return status.Status().Code
	}
	return 0
}

// exists reads key into obj. Only NotFound and Gone mean the object is
// absent; every other error is returned.
func (r *Reconciler) exists(ctx context.Context, key client.ObjectKey, obj client.Object, kind string) (bool, error) {
	err := r.Client.Get(ctx, key, obj)
	switch {
	case err == nil:
		return true, nil
	case apierrors.IsNotFound(err), apierrors.IsGone(err):
		log.FromContext(ctx).V(1).Info("Child resource not found, creating",
			"kind", kind, "name", key.Name, "namespace", key.Namespace)
		return false, nil
	default:
		return false, fmt.Errorf("failed to get %s: %w", kind, err)
	}
}

func (r *Reconciler) create(ctx context.Context, obj client.Object, kind string) error {
	err := r.Client.Create(ctx, obj, client.FieldOwner(r.FieldOwner))
	monitoring.RecordChildOperation(kind, actionCreate, err)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", kind, err)
	}
	log.FromContext(ctx).Info("Created child resource", "kind", kind, "name", obj.GetName())
	return nil
}

// ensureConfigMap replaces the whole ConfigMap body; it is authoritative.
func (r *Reconciler) ensureConfigMap(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error {
	ctx, span := monitoring.StartChildSpan(ctx, "EnsureConfigMap")
	defer span.End()

	desired := BuildConfigMap(cluster)
	existing := &corev1.ConfigMap{}
	found, err := r.exists(ctx, client.ObjectKeyFromObject(desired), existing, KindConfigMap)
	if err != nil {
		monitoring.RecordSpanError(span, err)
		return err
	}
	if !found {
		err = r.create(ctx, desired, KindConfigMap)
		monitoring.RecordSpanError(span, err)
		return err
	}

	desired.ResourceVersion = existing.ResourceVersion
	err = r.Client.Update(ctx, desired, client.FieldOwner(r.FieldOwner))
	monitoring.RecordChildOperation(KindConfigMap, actionUpdate, err)
	if err != nil {
		err = fmt.Errorf("failed to replace ConfigMap: %w", err)
		monitoring.RecordSpanError(span, err)
		return err
	}
	return nil
}

func (r *Reconciler) ensureHeadlessService(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error {
	ctx, span := monitoring.StartChildSpan(ctx, "EnsureHeadlessService")
	defer span.End()
	err := r.ensureService(ctx, BuildHeadlessService(cluster))
	monitoring.RecordSpanError(span, err)
	return err
}

func (r *Reconciler) ensureClientService(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error {
	ctx, span := monitoring.StartChildSpan(ctx, "EnsureClientService")
	defer span.End()
	err := r.ensureService(ctx, BuildClientService(cluster))
	monitoring.RecordSpanError(span, err)
	return err
}

// ensureService creates desired or merge patches the live Service's labels,
// selector and ports. spec.clusterIP is immutable, so a Service that must be
// headless but is not is deleted and created again.
func (r *Reconciler) ensureService(ctx context.Context, desired *corev1.Service) error {
	existing := &corev1.Service{}
	found, err := r.exists(ctx, client.ObjectKeyFromObject(desired), existing, KindService)
	if err != nil {
		return err
	}
	if !found {
		return r.create(ctx, desired, KindService)
	}

	if desired.Spec.ClusterIP == corev1.ClusterIPNone && existing.Spec.ClusterIP != corev1.ClusterIPNone {
		return r.recreateService(ctx, existing, desired)
	}

	patch := client.MergeFrom(existing.DeepCopy())
	existing.Labels = metadata.MergeLabels(desired.Labels, existing.Labels)
	if len(desired.OwnerReferences) > 0 {
		existing.OwnerReferences = desired.OwnerReferences
	}
	existing.Spec.Selector = desired.Spec.Selector
	existing.Spec.Ports = mergeServicePorts(existing.Spec.Ports, desired.Spec.Ports)
	existing.Spec.PublishNotReadyAddresses = desired.Spec.PublishNotReadyAddresses

	err = r.Client.Patch(ctx, existing, patch, client.FieldOwner(r.FieldOwner))
	monitoring.RecordChildOperation(KindService, actionPatch, err)
	if err != nil {
		return fmt.Errorf("failed to patch Service: %w", err)
	}
	return nil
}

func (r *Reconciler) recreateService(ctx context.Context, existing, desired *corev1.Service) error {
	log.FromContext(ctx).Info("Recreating Service to make it headless",
		"name", existing.Name, "clusterIP", existing.Spec.ClusterIP)

	err := r.Client.Delete(ctx, existing)
	if err != nil && !apierrors.IsNotFound(err) {
		monitoring.RecordChildOperation(KindService, actionRecreate, err)
		return fmt.Errorf("failed to delete non-headless Service: %w", err)
	}
	err = r.Client.Create(ctx, desired, client.FieldOwner(r.FieldOwner))
	monitoring.RecordChildOperation(KindService, actionRecreate, err)
	if err != nil {
		return fmt.Errorf("failed to recreate Service: %w", err)
	}
	return nil
}

// mergeServicePorts returns want, keeping any nodePort the API server
// allocated for a port of the same name.
func mergeServicePorts(live, want []corev1.ServicePort) []corev1.ServicePort {
	nodePorts := make(map[string]int32, len(live))
	for _, p := range live {
		nodePorts[p.Name] = p.NodePort
	}
	out := make([]corev1.ServicePort, len(want))
	for i, p := range want {
		p.NodePort = nodePorts[p.Name]
		out[i] = p
	}
	return out
}

// ensureStatefulSet creates desired or merge patches the fields a
// StatefulSet allows to change: replicas, labels and the pod template.
// Selector, serviceName and volumeClaimTemplates are left as created.
func (r *Reconciler) ensureStatefulSet(ctx context.Context, cluster *prometheusv1alpha1.PrometheusCluster) error {
	ctx, span := monitoring.StartChildSpan(ctx, "EnsureStatefulSet")
	defer span.End()

	desired := BuildStatefulSet(cluster)
	existing := &appsv1.StatefulSet{}
	found, err := r.exists(ctx, client.ObjectKeyFromObject(desired), existing, KindStatefulSet)
	if err != nil {
		monitoring.RecordSpanError(span, err)
		return err
	}
	if !found {
		err = r.create(ctx, desired, KindStatefulSet)
		monitoring.RecordSpanError(span, err)
		return err
	}

	patch := client.MergeFrom(existing.DeepCopy())
	existing.Labels = metadata.MergeLabels(desired.Labels, existing.Labels)
	if len(desired.OwnerReferences) > 0 {
		existing.OwnerReferences = desired.OwnerReferences
	}
	existing.Spec.Replicas = desired.Spec.Replicas
	existing.Spec.Template = desired.Spec.Template

	err = r.Client.Patch(ctx, existing, patch, client.FieldOwner(r.FieldOwner))
	monitoring.RecordChildOperation(KindStatefulSet, actionPatch, err)
	if err != nil {
		err = fmt.Errorf("failed to patch StatefulSet: %w", err)
		monitoring.RecordSpanError(span, err)
		return err
	}
	return nil
}
