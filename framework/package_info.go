// Package framework contains the domain-independent part of the contract test harness.
//
// The general model is:
//
// 1. The harness talks to a service under test over HTTP. Before any test runs, TestHarness
// polls the service's health resource until it answers, and reads its informational root
// resource.
//
// 2. There is a general notion of a test context, similar to Go's *testing.T, which allows
// pieces of test logic to be associated with a test identifier, grouped into subtests and
// steps, and to accumulate success/failure results. Context implements require.TestingT.
//
// 3. Observers (TestLogger, StepReporter) receive every test, step, attachment and metadata
// event. The console output and the Allure results are both produced by observers, so
// reporting never participates in assertions.
//
// Domain-specific packages provide the actual tests and a richer test API on top of Context.
package framework
