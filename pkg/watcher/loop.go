package watcher

import (
	"context"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/utils/clock"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"

	prometheusv1alpha1 "github.com/numtide/prometheus-cluster-operator/api/v1alpha1"
	"github.com/numtide/prometheus-cluster-operator/pkg/monitoring"
	"github.com/numtide/prometheus-cluster-operator/pkg/provisioner"
	"github.com/numtide/prometheus-cluster-operator/pkg/resource"
)

const (
	// DefaultTimeoutSeconds bounds the total duration of one stream. The server
	// closes the stream after it, whether or not events were delivered, and the
	// loop reconnects from the last resourceVersion.
	DefaultTimeoutSeconds int64 = 10

	// DefaultBackoff is the wait after a failed stream.
	DefaultBackoff = 5 * time.Second
)

// Restart reasons.
const (
	restartStreamEnd = "stream_end"
	restartExpired   = "expired"
	restartError     = "error"
)

// Source opens watch streams of PrometheusCluster objects. A
// dynamic.NamespaceableResourceInterface satisfies it.
type Source interface {
	Watch(ctx context.Context, opts metav1.ListOptions) (watch.Interface, error)
}

// Options tune the loop.
type Options struct {
	// TimeoutSeconds is the server-side lifetime of one stream, sent as
	// ListOptions.TimeoutSeconds. Zero means DefaultTimeoutSeconds.
	TimeoutSeconds int64

	// Backoff controls the wait after a stream error. The default waits
	// DefaultBackoff every time. Setting Factor, Steps and Cap makes it
	// exponential. It restarts from Duration once an event is handled.
	Backoff wait.Backoff
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		TimeoutSeconds: DefaultTimeoutSeconds,
		Backoff: wait.Backoff{
			Duration: DefaultBackoff,
			Factor:   1.0,
		},
	}
}

// Loop is the watch-reconcile loop.
type Loop struct {
	source      Source
	provisioner provisioner.Provisioner
	opts        Options
	clock       clock.Clock

	// resourceVersion is the last version seen; the next stream resumes there.
	resourceVersion string
}

var (
	_ manager.Runnable               = &Loop{}
	_ manager.LeaderElectionRunnable = &Loop{}
)

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the clock backoffs wait on.
func WithClock(c clock.Clock) Option {
	return func(l *Loop) {
		l.clock = c
	}
}

// New returns a Loop dispatching events from source to p.
func New(source Source, p provisioner.Provisioner, opts Options, options ...Option) *Loop {
	if opts.TimeoutSeconds <= 0 {
		opts.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if opts.Backoff.Duration <= 0 {
		opts.Backoff = DefaultOptions().Backoff
	}
	l := &Loop{
		source:      source,
		provisioner: p,
		opts:        opts,
		clock:       clock.RealClock{},
	}
	for _, o := range options {
		o(l)
	}
	return l
}

// Start runs the loop until ctx is done. It lets a controller-runtime
// manager host the loop.
func (l *Loop) Start(ctx context.Context) error {
	l.Run(ctx)
	return nil
}

// NeedLeaderElection is false: the loop runs in every replica.
func (l *Loop) NeedLeaderElection() bool {
	return false
}

// Run watches and reconciles until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	logger := log.FromContext(ctx).WithName("watcher")
	ctx = log.IntoContext(ctx, logger)
	backoff := l.opts.Backoff

	logger.Info("Starting watch loop", "timeoutSeconds", l.opts.TimeoutSeconds)
	for {
		err := l.stream(ctx, &backoff)
		if ctx.Err() != nil {
			logger.Info("Stopping watch loop")
			return
		}

		switch {
		case err == nil:
			logger.V(1).Info("Watch stream ended, reconnecting", "resourceVersion", l.resourceVersion)
			monitoring.RecordWatchRestart(restartStreamEnd)

		case isExpired(err):
			logger.Info("Resource version expired, restarting watch from current state",
				"resourceVersion", l.resourceVersion)
			l.resourceVersion = ""
			monitoring.RecordWatchRestart(restartExpired)

		default:
			delay := backoff.Step()
			logger.Error(err, "Watch stream failed, backing off",
				"status", streamCode(err),
				"reason", streamReason(err),
				"backoff", delay,
			)
			monitoring.RecordWatchRestart(restartError)
			select {
			case <-ctx.Done():
				logger.Info("Stopping watch loop")
				return
			case <-l.clock.After(delay):
			}
		}
	}
}

// stream opens one watch and handles its events until it ends. It returns
// nil when the stream closes cleanly.
func (l *Loop) stream(ctx context.Context, backoff *wait.Backoff) error {
	timeout := l.opts.TimeoutSeconds
	w, err := l.source.Watch(ctx, metav1.ListOptions{
		ResourceVersion:     l.resourceVersion,
		TimeoutSeconds:      &timeout,
		AllowWatchBookmarks: true,
	})
	if err != nil {
		return newStreamError(err)
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.ResultChan():
			if !ok {
				return nil
			}
			if event.Type == watch.Error {
				monitoring.RecordWatchEvent(string(event.Type))
				return newStreamError(apierrors.FromObject(event.Object))
			}
			l.handle(ctx, event)
			*backoff = l.opts.Backoff
		}
	}
}

// handle dispatches one event to the provisioner. Failures are logged; the
// next event for the same resource retries.
func (l *Loop) handle(ctx context.Context, event watch.Event) {
	logger := log.FromContext(ctx)
	monitoring.RecordWatchEvent(string(event.Type))

	u, ok := event.Object.(*unstructured.Unstructured)
	if !ok {
		logger.Info("Ignoring event with unexpected object", "type", event.Type, "object", fmt.Sprintf("%T", event.Object))
		return
	}
	if rv := u.GetResourceVersion(); rv != "" {
		l.resourceVersion = rv
	}

	var op func(context.Context, *prometheusv1alpha1.PrometheusCluster) error
	switch event.Type {
	case watch.Added:
		op = l.provisioner.Install
	case watch.Modified:
		op = l.provisioner.Upgrade
	case watch.Deleted:
		op = l.provisioner.Uninstall
	case watch.Bookmark:
		logger.V(1).Info("Bookmark", "resourceVersion", l.resourceVersion)
		return
	default:
		logger.Info("Ignoring unknown event type", "type", event.Type)
		return
	}

	cluster, err := resource.Decode(u)
	if err != nil {
		logger.Error(err, "Skipping malformed PrometheusCluster",
			"type", event.Type, "name", u.GetName(), "namespace", u.GetNamespace())
		monitoring.RecordDecodeError()
		return
	}

	logger = logger.WithValues("name", cluster.Name, "namespace", cluster.Namespace)
	logger.Info("Handling event", "type", event.Type, "resource", cluster.String())
	if err := op(log.IntoContext(ctx, logger), cluster); err != nil {
		logger.Error(err, "Reconciliation failed, waiting for the next event", "type", event.Type)
	}
}
