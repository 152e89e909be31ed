package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/pointr-qa/facility-contract-tests/facilityapi"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Recorder is the part of a test context that StepLogger reports into. *framework.Context
// implements it.
type Recorder interface {
	Step(name string, action func())
	Attach(name, contentType string, data []byte)
	Label(name, value string)
	Link(name, url, linkType string)
	Describe(description string)
}

// Screenshotter is anything that can capture an image of what it is showing, such as a
// browser page.
type Screenshotter interface {
	Screenshot() ([]byte, error)
}

type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelDebug Level = "DEBUG"
)

var levelColors = map[Level]*color.Color{
	LevelInfo:  color.New(color.FgBlue),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
	LevelDebug: color.New(color.Faint),
}

// APICall is a request/response pair in the shape the report shows it.
type APICall struct {
	Method       string
	URL          string
	Status       int
	ResponseTime time.Duration
	Request      interface{}
	Response     interface{}
}

// TestMetadata holds the report labels of a test. Empty fields are left out, except that
// Severity defaults to "normal" and Owner to "QA Team".
type TestMetadata struct {
	Epic     string
	Feature  string
	Story    string
	Severity string
	Owner    string
	Tags     []string
}

// StepLogger writes the same events both to the console and, as steps and attachments, to a
// test's report. None of its methods can fail a test.
type StepLogger struct {
	rec Recorder
	out io.Writer
	now func() time.Time
}

func NewStepLogger(rec Recorder, out io.Writer) *StepLogger {
	if out == nil {
		out = io.Discard
	}
	return &StepLogger{rec: rec, out: out, now: time.Now}
}

func (l *StepLogger) timestamp() string {
	return l.now().UTC().Format(consoleTimeFormat)
}

// LogStep prints a message and records it as a step; data, if any, is attached to the step
// as JSON.
func (l *StepLogger) LogStep(message string, level Level, data interface{}) {
	c, ok := levelColors[level]
	if !ok {
		c = levelColors[LevelInfo]
	}
	c.Fprintf(l.out, "[%s] [%s] %s\n", l.timestamp(), level, message)
	l.rec.Step(fmt.Sprintf("Log [%s]: %s", level, message), func() {
		if data != nil {
			l.attachJSON("Additional Data", data)
		}
	})
}

// LogAPICall prints a one-line summary of a call and records a step with the summary, request
// and response attached.
func (l *StepLogger) LogAPICall(call APICall) {
	mark, c := "✅", passColor
	if call.Status < 200 || call.Status >= 300 {
		mark, c = "❌", failureColor
	}
	c.Fprintf(l.out, "%s %s %s - %d (%dms)\n", mark, call.Method, call.URL, call.Status, call.ResponseTime.Milliseconds())

	l.rec.Step(fmt.Sprintf("API Call: %s %s", call.Method, call.URL), func() {
		l.attachJSON("API Call Summary", map[string]interface{}{
			"method":       call.Method,
			"url":          call.URL,
			"status":       call.Status,
			"responseTime": fmt.Sprintf("%dms", call.ResponseTime.Milliseconds()),
			"timestamp":    l.timestamp(),
		})
		if call.Request != nil {
			l.attachJSON("Request Body", call.Request)
		}
		if call.Response != nil {
			l.attachJSON("Response Body", call.Response)
		}
	})
}

// CallCompleted lets a StepLogger observe a facilityapi.Client directly.
func (l *StepLogger) CallCompleted(call facilityapi.Call) {
	l.LogAPICall(APICall{
		Method:       call.Method,
		URL:          call.URL,
		Status:       call.Status,
		ResponseTime: call.Duration,
		Request:      jsonOrText(call.RequestBody),
		Response:     jsonOrText(call.ResponseBody),
	})
	if call.Err != nil {
		l.LogStep(fmt.Sprintf("%s %s failed: %s", call.Method, call.URL, call.Err), LevelError, nil)
	}
}

// LogAssertion prints and records the outcome of a comparison that the caller has already
// made. It does not itself assert anything.
func (l *StepLogger) LogAssertion(expected, actual interface{}, assertionType string, success bool) {
	mark, verdict, c := "✅", "PASS", passColor
	if !success {
		mark, verdict, c = "❌", "FAIL", failureColor
	}
	c.Fprintf(l.out, "%s %s Assertion: Expected %s %s, Actual: %s\n",
		mark, verdict, assertionType, compactJSON(expected), compactJSON(actual))

	l.rec.Step(fmt.Sprintf("Assertion: %s", assertionType), func() {
		l.attachJSON("Assertion Details", map[string]interface{}{
			"expected":  expected,
			"actual":    actual,
			"type":      assertionType,
			"success":   success,
			"timestamp": l.timestamp(),
		})
	})
}

// StepWithConsole runs action as a step and brackets it with console lines. The completion
// line is printed only if action returns normally.
func (l *StepLogger) StepWithConsole(name string, action func(), addTimestamp bool) {
	fullName := name
	if addTimestamp {
		fullName = fmt.Sprintf("%s [%s]", name, l.timestamp())
	}
	stepColor.Fprintf(l.out, "🔄 %s\n", fullName)
	l.rec.Step(fullName, action)
	passColor.Fprintf(l.out, "✅ %s completed\n", name)
}

// DetailedStep runs action as a step that also gets start and end attachments.
func (l *StepLogger) DetailedStep(name string, action func(), addTimestamp bool) {
	fullName := name
	if addTimestamp {
		fullName = fmt.Sprintf("%s [%s]", name, l.timestamp())
	}
	l.rec.Step(fullName, func() {
		started := l.now()
		l.rec.Attach("Step Start", "text/plain", []byte(fmt.Sprintf("Starting: %s at %s", name, l.timestamp())))
		action()
		l.rec.Attach("Step End", "text/plain",
			[]byte(fmt.Sprintf("Completed: %s in %dms", name, l.now().Sub(started).Milliseconds())))
	})
}

// AddAPIRequestResponse attaches a request and response with the status and endpoint they
// belong to.
func (l *StepLogger) AddAPIRequestResponse(request, response interface{}, status int, endpoint string) {
	l.attachJSON(fmt.Sprintf("API Request - %s", endpoint), map[string]interface{}{
		"endpoint":  endpoint,
		"request":   request,
		"timestamp": l.timestamp(),
	})
	l.attachJSON(fmt.Sprintf("API Response - %d", status), map[string]interface{}{
		"status":    status,
		"response":  response,
		"timestamp": l.timestamp(),
	})
}

var callDetailsTemplate = template.Must(template.New("call").Parse(`<div class="api-call">
  <h3>{{.Method}} {{.URL}}</h3>
  <p><strong>Status:</strong> <span class="{{.StatusClass}}">{{.Status}}</span></p>
  <p><strong>Response Time:</strong> {{.Millis}}ms</p>
  <h4>Request</h4>
  <pre>{{.Request}}</pre>
  <h4>Response</h4>
  <pre>{{.Response}}</pre>
</div>
`))

// AddAPICallDetails attaches an HTML rendering of a call.
func (l *StepLogger) AddAPICallDetails(call APICall) {
	statusClass := "success"
	if call.Status >= 400 {
		statusClass = "error"
	}
	var buf bytes.Buffer
	err := callDetailsTemplate.Execute(&buf, map[string]interface{}{
		"Method":      call.Method,
		"URL":         call.URL,
		"Status":      call.Status,
		"StatusClass": statusClass,
		"Millis":      call.ResponseTime.Milliseconds(),
		"Request":     prettyJSON(call.Request),
		"Response":    prettyJSON(call.Response),
	})
	if err != nil {
		return
	}
	l.rec.Attach(fmt.Sprintf("API Call Details: %s %s", call.Method, call.URL), "text/html", buf.Bytes())
}

// SetTestMetadata records labels for a test. It is meant to be called once, at the start.
func (l *StepLogger) SetTestMetadata(m TestMetadata) {
	for _, label := range [][2]string{{"epic", m.Epic}, {"feature", m.Feature}, {"story", m.Story}} {
		if label[1] != "" {
			l.rec.Label(label[0], label[1])
		}
	}
	severity, owner := m.Severity, m.Owner
	if severity == "" {
		severity = "normal"
	}
	if owner == "" {
		owner = "QA Team"
	}
	l.rec.Label("severity", severity)
	l.rec.Label("owner", owner)
	for _, tag := range m.Tags {
		l.rec.Label("tag", tag)
	}
}

// AddTestInfo records a description, a documentation link and an issue link; empty values
// are ignored.
func (l *StepLogger) AddTestInfo(description, documentationURL, issueID, issueTitle string) {
	if description != "" {
		l.rec.Describe(description)
	}
	if documentationURL != "" {
		l.rec.Link("Documentation", documentationURL, "link")
	}
	if issueID != "" {
		name := issueID
		if issueTitle != "" {
			name = issueID + ": " + issueTitle
		}
		l.rec.Link(name, issueID, "issue")
	}
}

// AddEnvironmentInfo attaches the target and the runtime the tests ran on.
func (l *StepLogger) AddEnvironmentInfo(baseURL, environment string) {
	if environment == "" {
		environment = "test"
	}
	l.attachJSON("Environment Information", map[string]interface{}{
		"baseUrl":     baseURL,
		"environment": environment,
		"goVersion":   runtime.Version(),
		"platform":    runtime.GOOS + "/" + runtime.GOARCH,
		"timestamp":   l.timestamp(),
	})
}

// AddPerformanceMetrics attaches the duration of an operation, with any extra measurements.
func (l *StepLogger) AddPerformanceMetrics(operation string, duration time.Duration, extra map[string]interface{}) {
	metrics := map[string]interface{}{
		"operation":  operation,
		"durationMs": duration.Milliseconds(),
		"timestamp":  l.timestamp(),
	}
	for k, v := range extra {
		metrics[k] = v
	}
	l.attachJSON(fmt.Sprintf("Performance Metrics - %s", operation), metrics)
}

// AddErrorScreenshot attaches a screenshot of page, if one can be taken. Failing to take it
// is only reported on the console.
func (l *StepLogger) AddErrorScreenshot(page Screenshotter, message string) {
	if page == nil {
		return
	}
	data, err := page.Screenshot()
	if err != nil {
		failureColor.Fprintf(l.out, "could not take screenshot: %s\n", err)
		return
	}
	name := "Error Screenshot"
	if message != "" {
		name = fmt.Sprintf("Error Screenshot - %s", message)
	}
	l.rec.Attach(name, "image/png", data)
}

func (l *StepLogger) attachJSON(name string, v interface{}) {
	l.rec.Attach(name, "application/json", []byte(prettyJSON(v)))
}

func prettyJSON(v interface{}) string {
	if v == nil {
		return "null"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}

func compactJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// jsonOrText decodes a body for display: JSON bodies as values, anything else as a string.
func jsonOrText(body []byte) interface{} {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return strings.TrimSpace(string(body))
}
