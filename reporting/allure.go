package reporting

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pointr-qa/facility-contract-tests/framework"
)

// FrameworkName is reported as the "framework" label of every result.
const FrameworkName = "facility-contract-tests"

var extensionsByContentType = map[string]string{
	"application/json": "json",
	"text/html":        "html",
	"text/plain":       "txt",
	"text/csv":         "csv",
	"image/png":        "png",
	"image/jpeg":       "jpg",
}

// AllureWriter is a framework.TestLogger and framework.StepReporter that writes Allure 2
// result files into a directory. Tests that contain subtests are written as containers, and
// tests excluded by the filter are not written at all.
type AllureWriter struct {
	dir    string
	host   string
	labels []allureLabel
	now    func() time.Time
	tests  map[string]*allureTest
	lock   sync.Mutex
}

type allureTest struct {
	result    allureResult
	children  []string
	errors    []string
	steps     []*allureStep
	container bool
}

// NewAllureWriter creates dir if necessary. Labels given as name/value pairs are added to
// every result, e.g. "epic", "Facility Management".
func NewAllureWriter(dir string, labels ...string) (*AllureWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating Allure results directory: %w", err)
	}
	host, _ := os.Hostname()
	w := &AllureWriter{
		dir:   dir,
		host:  host,
		now:   time.Now,
		tests: make(map[string]*allureTest),
	}
	for i := 0; i+1 < len(labels); i += 2 {
		w.labels = append(w.labels, allureLabel{Name: labels[i], Value: labels[i+1]})
	}
	return w, nil
}

func (w *AllureWriter) Dir() string {
	return w.dir
}

func (w *AllureWriter) millis() int64 {
	return w.now().UnixMilli()
}

func (w *AllureWriter) TestStarted(id framework.TestID) {
	w.lock.Lock()
	defer w.lock.Unlock()

	t := &allureTest{result: allureResult{
		UUID:      uuid.NewString(),
		HistoryID: historyID(id),
		FullName:  id.String(),
		Name:      id.Name(),
		Stage:     stageFinished,
		Start:     w.millis(),
		Labels:    w.defaultLabels(id),
	}}
	if parent, ok := w.tests[parentKey(id)]; ok {
		parent.container = true
		parent.children = append(parent.children, t.result.UUID)
	}
	w.tests[id.String()] = t
}

func (w *AllureWriter) defaultLabels(id framework.TestID) []allureLabel {
	labels := []allureLabel{
		{Name: "language", Value: "go"},
		{Name: "framework", Value: FrameworkName},
	}
	if w.host != "" {
		labels = append(labels, allureLabel{Name: "host", Value: w.host})
	}
	if len(id.Path) > 1 {
		labels = append(labels, allureLabel{Name: "suite", Value: id.Path[0]})
	}
	if len(id.Path) > 2 {
		labels = append(labels, allureLabel{Name: "subSuite", Value: strings.Join(id.Path[1:len(id.Path)-1], " / ")})
	}
	return append(labels, w.labels...)
}

func (w *AllureWriter) TestError(id framework.TestID, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if t, ok := w.tests[id.String()]; ok {
		t.errors = append(t.errors, err.Error())
	}
}

func (w *AllureWriter) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
	w.lock.Lock()
	defer w.lock.Unlock()

	t, ok := w.tests[id.String()]
	if !ok {
		return
	}
	delete(w.tests, id.String())
	stop := w.millis()

	if t.container {
		w.writeJSON(t.result.UUID+"-container.json", allureContainer{
			UUID:     t.result.UUID,
			Name:     t.result.Name,
			Children: t.children,
			Start:    t.result.Start,
			Stop:     stop,
		})
		if !failed {
			return
		}
		// failures in the group's own code would otherwise not show up anywhere
		t.result.UUID = uuid.NewString()
	}

	t.result.Stop = stop
	t.result.Status = statusPassed
	if failed {
		t.result.Status = statusFailed
		t.result.StatusDetails = statusDetails(t.errors)
	}
	if len(debugOutput) > 0 {
		var buf strings.Builder
		debugOutput.Dump(&buf, "")
		t.result.Attachments = append(t.result.Attachments, w.writeAttachment("Debug output", "text/plain", []byte(buf.String())))
	}
	w.writeResult(t)
}

func (w *AllureWriter) TestSkipped(id framework.TestID, reason string) {
	w.lock.Lock()
	defer w.lock.Unlock()

	t, ok := w.tests[id.String()]
	if !ok {
		return
	}
	delete(w.tests, id.String())
	if reason == framework.SkippedByFilter {
		if parent, ok := w.tests[parentKey(id)]; ok {
			parent.children = without(parent.children, t.result.UUID)
			parent.container = len(parent.children) > 0
		}
		return
	}
	t.result.Stop = w.millis()
	t.result.Status = statusSkipped
	t.result.StatusDetails = allureStatusDetails{Message: reason}
	w.writeResult(t)
}

func (w *AllureWriter) StepStarted(id framework.TestID, name string) {
	w.lock.Lock()
	defer w.lock.Unlock()

	t, ok := w.tests[id.String()]
	if !ok {
		return
	}
	step := &allureStep{Name: name, Stage: "running", Start: w.millis()}
	if len(t.steps) == 0 {
		t.result.Steps = append(t.result.Steps, step)
	} else {
		top := t.steps[len(t.steps)-1]
		top.Steps = append(top.Steps, step)
	}
	t.steps = append(t.steps, step)
}

func (w *AllureWriter) StepFinished(id framework.TestID, name string, failed bool) {
	w.lock.Lock()
	defer w.lock.Unlock()

	t, ok := w.tests[id.String()]
	if !ok || len(t.steps) == 0 {
		return
	}
	step := t.steps[len(t.steps)-1]
	t.steps = t.steps[:len(t.steps)-1]
	step.Stop = w.millis()
	step.Stage = stageFinished
	step.Status = statusPassed
	if failed {
		step.Status = statusFailed
	}
}

func (w *AllureWriter) Attachment(id framework.TestID, a framework.Attachment) {
	w.lock.Lock()
	defer w.lock.Unlock()

	t, ok := w.tests[id.String()]
	if !ok {
		return
	}
	att := w.writeAttachment(a.Name, a.ContentType, a.Data)
	if len(t.steps) == 0 {
		t.result.Attachments = append(t.result.Attachments, att)
	} else {
		top := t.steps[len(t.steps)-1]
		top.Attachments = append(top.Attachments, att)
	}
}

func (w *AllureWriter) Metadata(id framework.TestID, m framework.Metadata) {
	w.lock.Lock()
	defer w.lock.Unlock()

	t, ok := w.tests[id.String()]
	if !ok {
		return
	}
	switch m.Kind {
	case framework.MetadataLabel:
		t.result.Labels = append(t.result.Labels, allureLabel{Name: m.Name, Value: m.Value})
	case framework.MetadataLink:
		t.result.Links = append(t.result.Links, allureLink{Name: m.Name, URL: m.Value, Type: m.Type})
	case framework.MetadataDescription:
		t.result.Description = m.Value
	}
}

// WriteEnvironment writes environment.properties, which Allure shows on the report overview.
func (w *AllureWriter) WriteEnvironment(props map[string]string) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buf strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s=%s\n", k, props[k])
	}
	return os.WriteFile(filepath.Join(w.dir, "environment.properties"), []byte(buf.String()), 0o644)
}

func (w *AllureWriter) WriteExecutor(info ExecutorInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.dir, "executor.json"), data, 0o644)
}

func (w *AllureWriter) writeResult(t *allureTest) {
	t.result.Stage = stageFinished
	// steps left open by a failure that unwound the test
	for _, step := range t.steps {
		step.Stage = stageFinished
		step.Status = statusFailed
		step.Stop = t.result.Stop
	}
	w.writeJSON(t.result.UUID+"-result.json", t.result)
}

func (w *AllureWriter) writeAttachment(name, contentType string, data []byte) allureAttachment {
	ext, ok := extensionsByContentType[strings.TrimSpace(strings.Split(contentType, ";")[0])]
	if !ok {
		ext = "bin"
	}
	source := fmt.Sprintf("%s-attachment.%s", uuid.NewString(), ext)
	if err := os.WriteFile(filepath.Join(w.dir, source), data, 0o644); err != nil {
		slog.Warn("could not write Allure attachment", "name", name, "error", err)
	}
	return allureAttachment{Name: name, Source: source, Type: contentType}
}

func (w *AllureWriter) writeJSON(fileName string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err == nil {
		err = os.WriteFile(filepath.Join(w.dir, fileName), data, 0o644)
	}
	if err != nil {
		slog.Warn("could not write Allure result", "file", fileName, "error", err)
	}
}

func statusDetails(errors []string) allureStatusDetails {
	if len(errors) == 0 {
		return allureStatusDetails{Message: "test failed"}
	}
	return allureStatusDetails{
		Message: strings.SplitN(errors[0], "\n", 2)[0],
		Trace:   strings.Join(errors, "\n\n"),
	}
}

func historyID(id framework.TestID) string {
	sum := md5.Sum([]byte(id.String())) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

func parentKey(id framework.TestID) string {
	if len(id.Path) == 0 {
		return ""
	}
	return framework.TestID{Path: id.Path[:len(id.Path)-1]}.String()
}

func without(ids []string, id string) []string {
	ret := ids[:0]
	for _, x := range ids {
		if x != id {
			ret = append(ret, x)
		}
	}
	return ret
}
