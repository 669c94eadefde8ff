// Package testutil provides test utilities for the operator: a fake client
// wrapper that injects failures and records the order of API calls, and
// envtest helpers for integration tests.
//
// Example:
//
//	base := fake.NewClientBuilder().WithScheme(scheme).Build()
//	c := testutil.NewFakeClientWithFailures(base, &testutil.FailureConfig{
//	    OnCreate: testutil.FailOnKind("ConfigMap", testutil.ErrInjected),
//	})
//	// ... exercise code using c ...
//	for _, call := range c.Calls() {
//	    t.Log(call)
//	}
package testutil
