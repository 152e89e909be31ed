package reporting

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointr-qa/facility-contract-tests/facilityapi"
)

type recordedAttachment struct {
	step        string
	name        string
	contentType string
	data        []byte
}

type fakeRecorder struct {
	steps       []string
	open        []string
	attachments []recordedAttachment
	labels      [][2]string
	links       [][3]string
	description string
}

func (r *fakeRecorder) Step(name string, action func()) {
	r.steps = append(r.steps, name)
	r.open = append(r.open, name)
	defer func() { r.open = r.open[:len(r.open)-1] }()
	action()
}

func (r *fakeRecorder) Attach(name, contentType string, data []byte) {
	step := ""
	if len(r.open) > 0 {
		step = r.open[len(r.open)-1]
	}
	r.attachments = append(r.attachments, recordedAttachment{step, name, contentType, data})
}

func (r *fakeRecorder) Label(name, value string) { r.labels = append(r.labels, [2]string{name, value}) }

func (r *fakeRecorder) Link(name, url, linkType string) {
	r.links = append(r.links, [3]string{name, url, linkType})
}

func (r *fakeRecorder) Describe(description string) { r.description = description }

func (r *fakeRecorder) attachment(t *testing.T, name string) recordedAttachment {
	for _, a := range r.attachments {
		if a.name == name {
			return a
		}
	}
	require.Fail(t, "no attachment named "+name)
	return recordedAttachment{}
}

func newTestStepLogger(t *testing.T) (*StepLogger, *fakeRecorder, *bytes.Buffer) {
	withoutColor(t)
	rec := &fakeRecorder{}
	var buf bytes.Buffer
	l := NewStepLogger(rec, &buf)
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return l, rec, &buf
}

func TestLogStep(t *testing.T) {
	l, rec, buf := newTestStepLogger(t)
	l.LogStep("creating site", LevelInfo, map[string]string{"name": "Hospital A"})
	l.LogStep("no data", LevelWarn, nil)

	assert.Equal(t, "[2024-05-01T12:00:00.000Z] [INFO] creating site\n[2024-05-01T12:00:00.000Z] [WARN] no data\n", buf.String())
	assert.Equal(t, []string{"Log [INFO]: creating site", "Log [WARN]: no data"}, rec.steps)
	require.Len(t, rec.attachments, 1)
	assert.Equal(t, "Log [INFO]: creating site", rec.attachments[0].step)
	assert.JSONEq(t, `{"name":"Hospital A"}`, string(rec.attachments[0].data))
}

func TestLogAPICall(t *testing.T) {
	l, rec, buf := newTestStepLogger(t)
	l.LogAPICall(APICall{Method: "POST", URL: "/sites", Status: 201, ResponseTime: 12 * time.Millisecond,
		Request: map[string]string{"name": "A"}, Response: map[string]string{"id": "1"}})
	l.LogAPICall(APICall{Method: "GET", URL: "/sites/x", Status: 404})

	assert.Equal(t, "✅ POST /sites - 201 (12ms)\n❌ GET /sites/x - 404 (0ms)\n", buf.String())
	assert.Equal(t, []string{"API Call: POST /sites", "API Call: GET /sites/x"}, rec.steps)

	summary := rec.attachment(t, "API Call Summary")
	assert.JSONEq(t, `{"method":"POST","url":"/sites","status":201,"responseTime":"12ms","timestamp":"2024-05-01T12:00:00.000Z"}`,
		string(summary.data))
	assert.JSONEq(t, `{"name":"A"}`, string(rec.attachment(t, "Request Body").data))
	assert.JSONEq(t, `{"id":"1"}`, string(rec.attachment(t, "Response Body").data))
	assert.Len(t, rec.attachments, 4)
}

func TestStepLoggerObservesClientCalls(t *testing.T) {
	l, rec, _ := newTestStepLogger(t)
	var observer facilityapi.CallObserver = l
	observer.CallCompleted(facilityapi.Call{Method: "DELETE", URL: "/sites/1", Status: 204})
	observer.CallCompleted(facilityapi.Call{Method: "GET", URL: "/health", Err: errors.New("connection refused")})

	assert.Equal(t, []string{
		"API Call: DELETE /sites/1",
		"API Call: GET /health",
		"Log [ERROR]: GET /health failed: connection refused",
	}, rec.steps)
}

func TestLogAssertion(t *testing.T) {
	l, rec, buf := newTestStepLogger(t)
	l.LogAssertion(404, 404, "toBe", true)
	l.LogAssertion("a", "b", "toEqual", false)

	assert.Equal(t, "✅ PASS Assertion: Expected toBe 404, Actual: 404\n❌ FAIL Assertion: Expected toEqual \"a\", Actual: \"b\"\n", buf.String())
	var details map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.attachments[1].data, &details))
	assert.Equal(t, false, details["success"])
	assert.Equal(t, "toEqual", details["type"])
}

func TestStepWithConsole(t *testing.T) {
	l, rec, buf := newTestStepLogger(t)
	ran := false
	l.StepWithConsole("Create site", func() { ran = true }, true)

	assert.True(t, ran)
	assert.Equal(t, []string{"Create site [2024-05-01T12:00:00.000Z]"}, rec.steps)
	assert.Equal(t, "🔄 Create site [2024-05-01T12:00:00.000Z]\n✅ Create site completed\n", buf.String())
}

func TestStepWithConsoleDoesNotReportCompletionOnFailure(t *testing.T) {
	l, _, buf := newTestStepLogger(t)
	assert.Panics(t, func() {
		l.StepWithConsole("Explode", func() { panic("failed") }, false)
	})
	assert.Equal(t, "🔄 Explode\n", buf.String())
}

func TestDetailedStep(t *testing.T) {
	l, rec, _ := newTestStepLogger(t)
	l.DetailedStep("Verify", func() {}, false)

	assert.Equal(t, []string{"Verify"}, rec.steps)
	require.Len(t, rec.attachments, 2)
	assert.Equal(t, "Step Start", rec.attachments[0].name)
	assert.Equal(t, "Starting: Verify at 2024-05-01T12:00:00.000Z", string(rec.attachments[0].data))
	assert.Equal(t, "Completed: Verify in 0ms", string(rec.attachments[1].data))
}

func TestAddAPIRequestResponse(t *testing.T) {
	l, rec, _ := newTestStepLogger(t)
	l.AddAPIRequestResponse(map[string]string{"name": "A"}, map[string]string{"id": "1"}, 201, "/sites")

	assert.JSONEq(t, `{"endpoint":"/sites","request":{"name":"A"},"timestamp":"2024-05-01T12:00:00.000Z"}`,
		string(rec.attachment(t, "API Request - /sites").data))
	assert.JSONEq(t, `{"status":201,"response":{"id":"1"},"timestamp":"2024-05-01T12:00:00.000Z"}`,
		string(rec.attachment(t, "API Response - 201").data))
}

func TestAddAPICallDetailsEscapesHTML(t *testing.T) {
	l, rec, _ := newTestStepLogger(t)
	l.AddAPICallDetails(APICall{Method: "POST", URL: "/sites", Status: 400,
		Request: map[string]string{"name": "<script>"}})

	a := rec.attachment(t, "API Call Details: POST /sites")
	assert.Equal(t, "text/html", a.contentType)
	assert.Contains(t, string(a.data), `<span class="error">400</span>`)
	assert.NotContains(t, string(a.data), "<script>")
}

func TestSetTestMetadata(t *testing.T) {
	l, rec, _ := newTestStepLogger(t)
	l.SetTestMetadata(TestMetadata{Epic: "Facility Management", Feature: "Sites", Tags: []string{"smoke", "crud"}})

	assert.Equal(t, [][2]string{
		{"epic", "Facility Management"},
		{"feature", "Sites"},
		{"severity", "normal"},
		{"owner", "QA Team"},
		{"tag", "smoke"},
		{"tag", "crud"},
	}, rec.labels)
}

func TestAddTestInfo(t *testing.T) {
	l, rec, _ := newTestStepLogger(t)
	l.AddTestInfo("Checks site creation", "https://docs.example.com", "PROJ-1", "Site creation")
	l.AddTestInfo("", "", "", "")

	assert.Equal(t, "Checks site creation", rec.description)
	assert.Equal(t, [][3]string{
		{"Documentation", "https://docs.example.com", "link"},
		{"PROJ-1: Site creation", "PROJ-1", "issue"},
	}, rec.links)
}

func TestAddEnvironmentInfoAndPerformanceMetrics(t *testing.T) {
	l, rec, _ := newTestStepLogger(t)
	l.AddEnvironmentInfo("http://localhost:3000", "")
	l.AddPerformanceMetrics("create site", 150*time.Millisecond, map[string]interface{}{"items": 3})

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.attachment(t, "Environment Information").data, &env))
	assert.Equal(t, "http://localhost:3000", env["baseUrl"])
	assert.Equal(t, "test", env["environment"])

	assert.JSONEq(t, `{"operation":"create site","durationMs":150,"items":3,"timestamp":"2024-05-01T12:00:00.000Z"}`,
		string(rec.attachment(t, "Performance Metrics - create site").data))
}

type fakeScreen struct {
	data []byte
	err  error
}

func (f fakeScreen) Screenshot() ([]byte, error) { return f.data, f.err }

func TestAddErrorScreenshot(t *testing.T) {
	l, rec, buf := newTestStepLogger(t)
	l.AddErrorScreenshot(fakeScreen{data: []byte("png")}, "home page")
	l.AddErrorScreenshot(fakeScreen{err: errors.New("no browser")}, "")
	l.AddErrorScreenshot(nil, "")

	require.Len(t, rec.attachments, 1)
	assert.Equal(t, "Error Screenshot - home page", rec.attachments[0].name)
	assert.Equal(t, "image/png", rec.attachments[0].contentType)
	assert.Contains(t, buf.String(), "no browser")
}
