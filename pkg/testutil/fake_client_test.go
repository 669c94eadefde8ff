package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
)

func newScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	if err := corev1.AddToScheme(scheme); err != nil {
		t.Fatalf("AddToScheme: %v", err)
	}
	return scheme
}

func TestRecordingClient_Get(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		config  *FailureConfig
		key     client.ObjectKey
		wantErr bool
	}{
		"no failure - get succeeds": {
			key: client.ObjectKey{Name: "cm", Namespace: "default"},
		},
		"fail on specific name": {
			config:  &FailureConfig{OnGet: FailOnKeyName("cm", ErrInjected)},
			key:     client.ObjectKey{Name: "cm", Namespace: "default"},
			wantErr: true,
		},
		"no failure on different name": {
			config: &FailureConfig{OnGet: FailOnKeyName("other", ErrInjected)},
			key:    client.ObjectKey{Name: "cm", Namespace: "default"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cm := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "cm", Namespace: "default"}}
			base := fake.NewClientBuilder().WithScheme(newScheme(t)).WithObjects(cm).Build()
			c := NewFakeClientWithFailures(base, tc.config)

			err := c.Get(context.Background(), tc.key, &corev1.ConfigMap{})
			if (err != nil) != tc.wantErr {
				t.Errorf("Get() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr && !errors.Is(err, ErrInjected) {
				t.Errorf("Get() error = %v, want %v", err, ErrInjected)
			}
		})
	}
}

func TestRecordingClient_RecordsCallsInOrder(t *testing.T) {
	t.Parallel()

	base := fake.NewClientBuilder().WithScheme(newScheme(t)).Build()
	c := NewFakeClientWithFailures(base, &FailureConfig{
		OnCreate: FailOnKind("Service", ErrInjected),
	})
	ctx := context.Background()

	cm := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "cm", Namespace: "default"}}
	svc := &corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "svc", Namespace: "default"}}

	if err := c.Create(ctx, cm); err != nil {
		t.Fatalf("Create(ConfigMap) error = %v", err)
	}
	if err := c.Create(ctx, svc); !errors.Is(err, ErrInjected) {
		t.Fatalf("Create(Service) error = %v, want %v", err, ErrInjected)
	}
	if err := c.Delete(ctx, cm); err != nil {
		t.Fatalf("Delete(ConfigMap) error = %v", err)
	}

	want := []Call{
		{Verb: "create", Kind: "ConfigMap", Name: "cm"},
		{Verb: "create", Kind: "Service", Name: "svc"},
		{Verb: "delete", Kind: "ConfigMap", Name: "cm"},
	}
	if diff := cmp.Diff(want, c.Calls()); diff != "" {
		t.Errorf("Calls() mismatch (-want +got):\n%s", diff)
	}
	if got := len(c.CallsWithVerb("create")); got != 2 {
		t.Errorf("CallsWithVerb(create) = %d calls, want 2", got)
	}

	c.Reset()
	if got := c.Calls(); len(got) != 0 {
		t.Errorf("Calls() after Reset = %v, want none", got)
	}
}

func TestFailObjAfterNCalls(t *testing.T) {
	t.Parallel()

	fail := FailObjAfterNCalls(2, ErrNetworkTimeout)
	obj := &corev1.ConfigMap{}
	for i := range 2 {
		if err := fail(obj); err != nil {
			t.Fatalf("call %d: got %v, want nil", i+1, err)
		}
	}
	if err := fail(obj); !errors.Is(err, ErrNetworkTimeout) {
		t.Errorf("third call: got %v, want %v", err, ErrNetworkTimeout)
	}
}

func TestFailOnObjectName(t *testing.T) {
	t.Parallel()

	fail := FailOnObjectName("target", ErrInjected)
	if err := fail(&corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "target"}}); !errors.Is(err, ErrInjected) {
		t.Errorf("matching name: got %v, want %v", err, ErrInjected)
	}
	if err := fail(&corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "other"}}); err != nil {
		t.Errorf("other name: got %v, want nil", err)
	}
}
