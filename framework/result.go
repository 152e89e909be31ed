package framework

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID     TestID
	Errors     []error
	Skipped    bool
	SkipReason string
	Duration   time.Duration
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Merge appends the results of another run, for instance the same suite run in another browser.
func (r Results) Merge(other Results) Results {
	return Results{
		Tests:    append(append([]TestResult(nil), r.Tests...), other.Tests...),
		Failures: append(append([]TestResult(nil), r.Failures...), other.Failures...),
	}
}

func (r Results) SkippedCount() int {
	n := 0
	for _, t := range r.Tests {
		if t.Skipped {
			n++
		}
	}
	return n
}

type TestID struct {
	Path []string
}

// Plus returns the ID of a subtest. The receiver is never modified.
func (t TestID) Plus(name string) TestID {
	return TestID{Path: append(append([]string(nil), t.Path...), name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Name is the last element of the path.
func (t TestID) Name() string {
	if len(t.Path) == 0 {
		return ""
	}
	return t.Path[len(t.Path)-1]
}

var testifyLabelLine = regexp.MustCompile(`^\t([A-Za-z][A-Za-z ]*):`)

// reformatError drops the "Error Trace" block from testify messages; the file locations
// point into this harness rather than anything useful to the reader.
func reformatError(err error) error {
	lines := strings.Split(strings.TrimLeft(err.Error(), "\n"), "\n")
	out := make([]string, 0, len(lines))
	inTrace := false
	for _, line := range lines {
		if m := testifyLabelLine.FindStringSubmatch(line); m != nil {
			inTrace = m[1] == "Error Trace"
			if inTrace {
				continue
			}
		} else if inTrace {
			continue
		}
		out = append(out, strings.TrimLeft(line, "\t"))
	}
	return fmt.Errorf("%s", strings.Join(out, "\n"))
}
