package framework

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

// PrintResults writes a summary of a test run: one row per failed test with its first error,
// followed by the pass/fail/skip totals.
func PrintResults(out io.Writer, results Results) {
	var total time.Duration
	for _, t := range results.Tests {
		total += t.Duration
	}
	skipped := results.SkippedCount()
	passed := len(results.Tests) - len(results.Failures) - skipped

	if len(results.Failures) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.AppendHeader(table.Row{"Failed test", "First error"})
		for _, f := range results.Failures {
			var firstError string
			if len(f.Errors) > 0 {
				firstError = firstLine(f.Errors[0].Error())
			}
			t.AppendRow(table.Row{f.TestID.String(), firstError})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		fmt.Fprintln(out)
	}

	summary := fmt.Sprintf("%d passed, %d failed, %d skipped (%s)",
		passed, len(results.Failures), skipped, total.Round(time.Millisecond))
	if results.OK() {
		fmt.Fprintln(out, color.GreenString("All tests passed: %s", summary))
	} else {
		fmt.Fprintln(out, color.RedString("FAILED: %s", summary))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
