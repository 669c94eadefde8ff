package testutil

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"k8s.io/apimachinery/pkg/api/meta"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// FailureConfig configures when the fake client should return errors.
// Each field is a function that receives the object/key and returns an error if the operation should fail.
type FailureConfig struct {
	// OnGet is called before Get operations. Return non-nil to fail the operation.
	OnGet func(key client.ObjectKey) error

	// OnCreate is called before Create operations. Return non-nil to fail the operation.
	OnCreate func(obj client.Object) error

	// OnUpdate is called before Update operations. Return non-nil to fail the operation.
	OnUpdate func(obj client.Object) error

	// OnPatch is called before Patch operations. Return non-nil to fail the operation.
	OnPatch func(obj client.Object) error

	// OnDelete is called before Delete operations. Return non-nil to fail the operation.
	OnDelete func(obj client.Object) error
}

// Call is one request observed by a RecordingClient. Failed calls are
// recorded too.
type Call struct {
	Verb string
	Kind string
	Name string
}

func (c Call) String() string {
	return fmt.Sprintf("%s %s %s", c.Verb, c.Kind, c.Name)
}

// RecordingClient wraps a client, injects failures based on configuration
// and records every Get, Create, Update, Patch and Delete in order.
type RecordingClient struct {
	client.Client
	config *FailureConfig

	mu    sync.Mutex
	calls []Call
}

// NewFakeClientWithFailures creates a fake client that can be configured to fail operations.
// This is useful for testing error handling paths and call ordering.
func NewFakeClientWithFailures(baseClient client.Client, config *FailureConfig) *RecordingClient {
	if config == nil {
		config = &FailureConfig{}
	}
	return &RecordingClient{
		Client: baseClient,
		config: config,
	}
}

// Calls returns a copy of the recorded calls.
func (c *RecordingClient) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// CallsWithVerb returns the recorded calls with the given verb.
func (c *RecordingClient) CallsWithVerb(verb string) []Call {
	var out []Call
	for _, call := range c.Calls() {
		if call.Verb == verb {
			out = append(out, call)
		}
	}
	return out
}

// Reset forgets every recorded call.
func (c *RecordingClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

func (c *RecordingClient) record(verb string, obj client.Object, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, Call{Verb: verb, Kind: kindOf(obj), Name: name})
}

// kindOf returns the Go type name of obj, which for built-in API types
// equals the Kind.
func kindOf(obj client.Object) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func (c *RecordingClient) Get(
	ctx context.Context,
	key client.ObjectKey,
	obj client.Object,
	opts ...client.GetOption,
) error {
	c.record("get", obj, key.Name)
	if c.config.OnGet != nil {
		if err := c.config.OnGet(key); err != nil {
			return err
		}
	}
	return c.Client.Get(ctx, key, obj, opts...)
}

func (c *RecordingClient) Create(
	ctx context.Context,
	obj client.Object,
	opts ...client.CreateOption,
) error {
	c.record("create", obj, obj.GetName())
	if c.config.OnCreate != nil {
		if err := c.config.OnCreate(obj); err != nil {
			return err
		}
	}
	return c.Client.Create(ctx, obj, opts...)
}

func (c *RecordingClient) Update(
	ctx context.Context,
	obj client.Object,
	opts ...client.UpdateOption,
) error {
	c.record("update", obj, obj.GetName())
	if c.config.OnUpdate != nil {
		if err := c.config.OnUpdate(obj); err != nil {
			return err
		}
	}
	return c.Client.Update(ctx, obj, opts...)
}

func (c *RecordingClient) Patch(
	ctx context.Context,
	obj client.Object,
	patch client.Patch,
	opts ...client.PatchOption,
) error {
	c.record("patch", obj, obj.GetName())
	if c.config.OnPatch != nil {
		if err := c.config.OnPatch(obj); err != nil {
			return err
		}
	}
	return c.Client.Patch(ctx, obj, patch, opts...)
}

func (c *RecordingClient) Delete(
	ctx context.Context,
	obj client.Object,
	opts ...client.DeleteOption,
) error {
	c.record("delete", obj, obj.GetName())
	if c.config.OnDelete != nil {
		if err := c.config.OnDelete(obj); err != nil {
			return err
		}
	}
	return c.Client.Delete(ctx, obj, opts...)
}

// Helper functions for common failure scenarios

// FailOnObjectName returns an error if the object name matches.
func FailOnObjectName(name string, err error) func(client.Object) error {
	return func(obj client.Object) error {
		accessor, metaErr := meta.Accessor(obj)
		if metaErr != nil {
			panic(fmt.Sprintf("meta.Accessor failed: %v", metaErr))
		}
		if accessor.GetName() == name {
			return err
		}
		return nil
	}
}

// FailOnKeyName returns an error if the key name matches.
func FailOnKeyName(name string, err error) func(client.ObjectKey) error {
	return func(key client.ObjectKey) error {
		if key.Name == name {
			return err
		}
		return nil
	}
}

// FailOnKind returns an error for objects of the given kind.
func FailOnKind(kind string, err error) func(client.Object) error {
	return func(obj client.Object) error {
		if kindOf(obj) == kind {
			return err
		}
		return nil
	}
}

// FailObjAfterNCalls returns an Object failure function that fails after N successful calls.
// Use for OnCreate, OnUpdate, OnDelete, OnPatch.
func FailObjAfterNCalls(n int, err error) func(client.Object) error {
	count := 0
	return func(client.Object) error {
		count++
		if count > n {
			return err
		}
		return nil
	}
}

// Common errors for testing
var (
	ErrInjected       = fmt.Errorf("injected test error")
	ErrNetworkTimeout = fmt.Errorf("network timeout")
)
