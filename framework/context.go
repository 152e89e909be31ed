package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// SkippedByFilter is the reason given to TestLogger.TestSkipped for tests that the filter excluded.
const SkippedByFilter = "excluded by filter parameters"

type environment struct {
	results    Results
	testLogger TestLogger
	reporter   StepReporter
	filter     Filter
}

// Context is the runner's equivalent of *testing.T. It implements require.TestingT, so the
// assert and require packages can be used with it directly.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	defers      []func()
}

// Run executes a top-level test action and returns the accumulated results of every subtest
// started with Context.Run.
//
// If testLogger also implements StepReporter, it receives step, attachment and metadata
// events as well.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
		reporter:   nullStepReporter{},
	}
	if r, ok := testLogger.(StepReporter); ok {
		env.reporter = r
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.recordPanic(r)
		}
		c.runDefers()
		if len(c.id.Path) == 0 {
			return
		}
		result := TestResult{
			TestID:     c.id,
			Errors:     c.errors,
			Skipped:    c.skipped,
			SkipReason: c.skipReason,
			Duration:   time.Since(started),
		}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

func (c *Context) recordPanic(r interface{}) {
	if c.skipped {
		return
	}
	c.failed = true
	var addError error
	if _, ok := r.(*Context); ok {
		if len(c.errors) == 0 {
			addError = errors.New("test failed with no failure message")
		}
	} else {
		addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
	}
	if addError != nil {
		c.errors = append(c.errors, addError)
		c.env.testLogger.TestError(c.id, addError)
	}
}

// Deferred functions run in reverse order even if the test fails. A cleanup function that
// fails an assertion marks the test failed but does not stop the remaining cleanups.
func (c *Context) runDefers() {
	for i := len(c.defers) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if r := recover(); r != nil {
					wasSkipped := c.skipped
					c.skipped = false
					c.recordPanic(r)
					c.skipped = wasSkipped
				}
			}()
			c.defers[i]()
		}()
	}
	c.defers = nil
}

func (c *Context) ID() TestID {
	return c.id
}

// Run starts a subtest. The subtest is skipped if the filter excludes it.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, SkippedByFilter)
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

// Step runs action as a named step of the current test. Step reporters are told when the step
// starts and finishes. A failure inside the step, including FailNow, is not intercepted: it
// unwinds the test exactly as it would have outside a step.
func (c *Context) Step(name string, action func()) {
	c.env.reporter.StepStarted(c.id, name)
	errorsBefore := len(c.errors)
	completed := false
	defer func() {
		c.env.reporter.StepFinished(c.id, name, !completed || len(c.errors) > errorsBefore)
	}()
	action()
	completed = true
}

// Attach records a named blob against the current step, or the test if no step is active.
func (c *Context) Attach(name, contentType string, data []byte) {
	c.env.reporter.Attachment(c.id, Attachment{Name: name, ContentType: contentType, Data: data})
}

// Label records a metadata label such as "feature" or "severity" for the current test.
func (c *Context) Label(name, value string) {
	c.env.reporter.Metadata(c.id, Metadata{Kind: MetadataLabel, Name: name, Value: value})
}

// Link records a link (documentation, issue tracker, etc.) for the current test.
func (c *Context) Link(name, url, linkType string) {
	c.env.reporter.Metadata(c.id, Metadata{Kind: MetadataLink, Name: name, Value: url, Type: linkType})
}

// Describe sets the long-form description of the current test.
func (c *Context) Describe(description string) {
	c.env.reporter.Metadata(c.id, Metadata{Kind: MetadataDescription, Value: description})
}

// Defer schedules a function to run when the test finishes, whether it passed or not.
func (c *Context) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
