package framework

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	kind string
	id   string
	name string
	flag bool
}

type recordingTestLogger struct {
	events []recordedEvent
}

func (r *recordingTestLogger) add(kind string, id TestID, name string, flag bool) {
	r.events = append(r.events, recordedEvent{kind: kind, id: id.String(), name: name, flag: flag})
}

func (r *recordingTestLogger) TestStarted(id TestID)                { r.add("started", id, "", false) }
func (r *recordingTestLogger) TestError(id TestID, err error)       { r.add("error", id, err.Error(), false) }
func (r *recordingTestLogger) TestSkipped(id TestID, reason string) { r.add("skipped", id, reason, false) }
func (r *recordingTestLogger) TestFinished(id TestID, failed bool, _ CapturedOutput) {
	r.add("finished", id, "", failed)
}
func (r *recordingTestLogger) StepStarted(id TestID, name string) { r.add("step", id, name, false) }
func (r *recordingTestLogger) StepFinished(id TestID, name string, failed bool) {
	r.add("stepEnd", id, name, failed)
}
func (r *recordingTestLogger) Attachment(id TestID, a Attachment) { r.add("attach", id, a.Name, false) }
func (r *recordingTestLogger) Metadata(id TestID, m Metadata)     { r.add("meta", id, m.Name, false) }

func (r *recordingTestLogger) ofKind(kind string) []recordedEvent {
	var out []recordedEvent
	for _, e := range r.events {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestPassingAndFailingSubtests(t *testing.T) {
	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("group", func(c *Context) {
			c.Run("passes", func(c *Context) {
				require.True(c, true)
			})
			c.Run("fails", func(c *Context) {
				require.Equal(c, 1, 2)
				c.Errorf("not reached")
			})
		})
	})

	assert.False(t, results.OK())
	require.Len(t, results.Tests, 3)
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "group/fails", results.Failures[0].TestID.String())
	require.Len(t, results.Failures[0].Errors, 1)
	assert.Equal(t, []recordedEvent{
		{kind: "finished", id: "group/passes"},
		{kind: "finished", id: "group/fails", flag: true},
		{kind: "finished", id: "group"},
	}, logger.ofKind("finished"))
}

func TestUnexpectedPanicIsRecordedAsFailure(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("panics", func(c *Context) {
			panic(errors.New("boom"))
		})
	})
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "boom")
}

func TestSkipWithReason(t *testing.T) {
	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("skipped", func(c *Context) {
			c.SkipWithReason("not today")
		})
	})
	assert.True(t, results.OK())
	assert.Equal(t, 1, results.SkippedCount())
	assert.Equal(t, []recordedEvent{{kind: "skipped", id: "skipped", name: "not today"}}, logger.ofKind("skipped"))
}

func TestDefersRunInReverseOrderAfterFailure(t *testing.T) {
	var order []string
	results := Run(nil, nil, func(c *Context) {
		c.Run("cleanup", func(c *Context) {
			c.Defer(func() { order = append(order, "first") })
			c.Defer(func() { order = append(order, "second") })
			c.FailNow()
		})
	})
	assert.Equal(t, []string{"second", "first"}, order)
	require.Len(t, results.Failures, 1)
}

func TestFailingDeferMarksTestFailedAndOthersStillRun(t *testing.T) {
	ran := false
	results := Run(nil, nil, func(c *Context) {
		c.Run("cleanup", func(c *Context) {
			c.Defer(func() { ran = true })
			c.Defer(func() { require.Fail(c, "cleanup failed") })
		})
	})
	assert.True(t, ran)
	require.Len(t, results.Failures, 1)
}

func TestStepNotifiesReporterAndPropagatesFailure(t *testing.T) {
	logger := &recordingTestLogger{}
	afterStep := false
	Run(nil, logger, func(c *Context) {
		c.Run("t", func(c *Context) {
			c.Step("ok step", func() {
				c.Attach("data", "application/json", []byte("{}"))
			})
			c.Step("bad step", func() {
				c.FailNow()
			})
			afterStep = true
		})
	})
	assert.False(t, afterStep)
	assert.Equal(t, []recordedEvent{
		{kind: "step", id: "t", name: "ok step"},
		{kind: "attach", id: "t", name: "data"},
		{kind: "stepEnd", id: "t", name: "ok step"},
		{kind: "step", id: "t", name: "bad step"},
		{kind: "stepEnd", id: "t", name: "bad step", flag: true},
	}, filterKinds(logger.events, "step", "stepEnd", "attach"))
}

func TestStepWithNonFatalErrorIsMarkedFailed(t *testing.T) {
	logger := &recordingTestLogger{}
	Run(nil, logger, func(c *Context) {
		c.Run("t", func(c *Context) {
			c.Step("soft", func() {
				assert.Equal(c, "a", "b")
			})
		})
	})
	ends := logger.ofKind("stepEnd")
	require.Len(t, ends, 1)
	assert.True(t, ends[0].flag)
}

func TestMultiTestLoggerOnlySendsStepsToReporters(t *testing.T) {
	reporter := &recordingTestLogger{}
	plain := &plainLogger{}
	Run(nil, MultiTestLogger(plain, reporter), func(c *Context) {
		c.Run("t", func(c *Context) {
			c.Step("s", func() {})
			c.Label("feature", "sites")
		})
	})
	assert.Equal(t, 1, plain.started)
	assert.Len(t, reporter.ofKind("step"), 1)
	assert.Len(t, reporter.ofKind("meta"), 1)
}

type plainLogger struct{ started int }

func (p *plainLogger) TestStarted(TestID)                        { p.started++ }
func (p *plainLogger) TestError(TestID, error)                   {}
func (p *plainLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (p *plainLogger) TestSkipped(TestID, string)                {}

func filterKinds(events []recordedEvent, kinds ...string) []recordedEvent {
	var out []recordedEvent
	for _, e := range events {
		for _, k := range kinds {
			if e.kind == k {
				out = append(out, e)
			}
		}
	}
	return out
}

func TestReformatErrorDropsTrace(t *testing.T) {
	err := errors.New("\n\tError Trace:\tfoo.go:12\n\t            \t\tbar.go:3\n\tError:      \tNot equal: \n\t            \texpected: 1\n\tMessages:   \thello")
	assert.Equal(t, "Error:      \tNot equal: \n            \texpected: 1\nMessages:   \thello", reformatError(err).Error())
}
