package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters selects tests the way "go test -run" does: each pattern is split on "/" and the
// parts are matched against the corresponding levels of the test ID. A parent test is selected
// if its own levels match, so that its subtests get a chance to run.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.anyMatchPrefix(id)) &&
		!r.MustNotMatch.anyMatchFull(id)
}

type RegexList struct {
	patterns []levelPattern
}

type levelPattern struct {
	source string
	levels []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.source+`"`)
	}
	return strings.Join(ss, " or ")
}

// Type is part of pflag.Value, which lets a RegexList be bound directly to a command line flag.
func (r *RegexList) Type() string {
	return "regex"
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	p := levelPattern{source: value}
	for _, part := range strings.Split(value, "/") {
		rx, err := regexp.Compile(part)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		p.levels = append(p.levels, rx)
	}
	r.patterns = append(r.patterns, p)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

// AnyMatch reports whether any pattern matches the whole of a "/"-separated test name.
func (r RegexList) AnyMatch(s string) bool {
	return r.anyMatchFull(TestID{Path: strings.Split(s, "/")})
}

func (r RegexList) anyMatchPrefix(id TestID) bool {
	for _, p := range r.patterns {
		if p.matches(id, false) {
			return true
		}
	}
	return false
}

func (r RegexList) anyMatchFull(id TestID) bool {
	for _, p := range r.patterns {
		if p.matches(id, true) {
			return true
		}
	}
	return false
}

func (p levelPattern) matches(id TestID, requireAllLevels bool) bool {
	if requireAllLevels && len(id.Path) < len(p.levels) {
		return false
	}
	for i, rx := range p.levels {
		if i >= len(id.Path) {
			break
		}
		if !rx.MatchString(id.Path[i]) {
			return false
		}
	}
	return true
}

// PrintFilterDescription tells the user which tests will be skipped because of filters.
func PrintFilterDescription(out io.Writer, filters RegexFilters) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(out)
	}
}
