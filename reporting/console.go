package reporting

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/pointr-qa/facility-contract-tests/framework"
)

var (
	testNameColor = color.New(color.Bold)
	failureColor  = color.New(color.FgRed)
	skipColor     = color.New(color.FgYellow)
	stepColor     = color.New(color.FgCyan)
	passColor     = color.New(color.FgGreen)
	debugColor    = color.New(color.Faint)
)

// Console prints test progress in a human-readable form. Color is used only when the process
// is attached to a terminal.
type Console struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	ShowSteps            bool
	lock                 sync.Mutex
}

func (c *Console) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Console) TestStarted(id framework.TestID) {
	c.lock.Lock()
	defer c.lock.Unlock()
	testNameColor.Fprintf(c.out(), "[%s]\n", id)
}

func (c *Console) TestError(id framework.TestID, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, line := range strings.Split(err.Error(), "\n") {
		failureColor.Fprintf(c.out(), "  %s\n", line)
	}
}

func (c *Console) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if failed {
		failureColor.Fprintf(c.out(), "  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		var buf strings.Builder
		debugOutput.Dump(&buf, "    DEBUG ")
		debugColor.Fprint(c.out(), buf.String())
	}
}

func (c *Console) TestSkipped(id framework.TestID, reason string) {
	if reason == framework.SkippedByFilter {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if reason == "" {
		skipColor.Fprintf(c.out(), "  SKIPPED: %s\n", id)
	} else {
		skipColor.Fprintf(c.out(), "  SKIPPED: %s (%s)\n", id, reason)
	}
}

func (c *Console) StepStarted(id framework.TestID, name string) {
	if !c.ShowSteps {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	stepColor.Fprintf(c.out(), "  > %s\n", name)
}

func (c *Console) StepFinished(id framework.TestID, name string, failed bool) {
	if !c.ShowSteps {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if failed {
		failureColor.Fprintf(c.out(), "  x %s\n", name)
	} else {
		passColor.Fprintf(c.out(), "  ✓ %s\n", name)
	}
}

func (c *Console) Attachment(framework.TestID, framework.Attachment) {}

func (c *Console) Metadata(framework.TestID, framework.Metadata) {}
