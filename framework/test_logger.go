package framework

// TestLogger is notified of the lifecycle of every test.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

// StepReporter is notified of the finer-grained structure of a test: its steps, attachments
// and descriptive metadata. Reporters only observe; nothing they do can change a test's
// outcome, so implementations must deal with their own failures.
type StepReporter interface {
	StepStarted(id TestID, name string)
	StepFinished(id TestID, name string, failed bool)
	Attachment(id TestID, a Attachment)
	Metadata(id TestID, m Metadata)
}

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type MetadataKind string

const (
	MetadataLabel       MetadataKind = "label"
	MetadataLink        MetadataKind = "link"
	MetadataDescription MetadataKind = "description"
)

type Metadata struct {
	Kind  MetadataKind
	Name  string
	Value string
	// Type is only used for links, e.g. "issue" or "tms".
	Type string
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                        {}
func (n nullTestLogger) TestError(TestID, error)                   {}
func (n nullTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                {}

type nullStepReporter struct{}

func (n nullStepReporter) StepStarted(TestID, string)       {}
func (n nullStepReporter) StepFinished(TestID, string, bool) {}
func (n nullStepReporter) Attachment(TestID, Attachment)    {}
func (n nullStepReporter) Metadata(TestID, Metadata)        {}

type multiTestLogger []TestLogger

// MultiTestLogger fans every event out to all of the given loggers, in order. Step events go
// only to the loggers that implement StepReporter.
func MultiTestLogger(loggers ...TestLogger) TestLogger {
	return multiTestLogger(loggers)
}

func (m multiTestLogger) TestStarted(id TestID) {
	for _, l := range m {
		l.TestStarted(id)
	}
}

func (m multiTestLogger) TestError(id TestID, err error) {
	for _, l := range m {
		l.TestError(id, err)
	}
}

func (m multiTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	for _, l := range m {
		l.TestFinished(id, failed, debugOutput)
	}
}

func (m multiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m {
		l.TestSkipped(id, reason)
	}
}

func (m multiTestLogger) StepStarted(id TestID, name string) {
	m.eachReporter(func(r StepReporter) { r.StepStarted(id, name) })
}

func (m multiTestLogger) StepFinished(id TestID, name string, failed bool) {
	m.eachReporter(func(r StepReporter) { r.StepFinished(id, name, failed) })
}

func (m multiTestLogger) Attachment(id TestID, a Attachment) {
	m.eachReporter(func(r StepReporter) { r.Attachment(id, a) })
}

func (m multiTestLogger) Metadata(id TestID, md Metadata) {
	m.eachReporter(func(r StepReporter) { r.Metadata(id, md) })
}

func (m multiTestLogger) eachReporter(fn func(StepReporter)) {
	for _, l := range m {
		if r, ok := l.(StepReporter); ok {
			fn(r)
		}
	}
}
