package main

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"

	"github.com/pointr-qa/facility-contract-tests/framework"
)

type globalParams struct {
	configFile string
	logFile    string
	logLevel   string
	verbose    bool
}

func (g *globalParams) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&g.configFile, "config", "facility-tests.json5", "JSON5 configuration file; a .local sibling overrides it")
	flags.StringVar(&g.logFile, "log-file", "", "also write logs as JSON to this file, rotated by size")
	flags.StringVar(&g.logLevel, "log-level", "info", "debug, info, warn or error")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "log at debug level")
}

// testRunParams are the flags shared by the commands that run a test suite.
type testRunParams struct {
	filters    framework.RegexFilters
	resultsDir string
	debug      bool
	debugAll   bool
}

func (p *testRunParams) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Var(&p.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	flags.Var(&p.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	flags.StringVar(&p.resultsDir, "results-dir", "", "directory for Allure results (default from config)")
	flags.BoolVar(&p.debug, "debug", false, "enable debug logging for failed tests")
	flags.BoolVar(&p.debugAll, "debug-all", false, "enable debug logging for all tests")
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// rerunPattern selects exactly one test: each level of the ID is anchored and quoted.
func rerunPattern(id framework.TestID) string {
	levels := make([]string, len(id.Path))
	for i, name := range id.Path {
		levels[i] = "^" + regexp.QuoteMeta(name) + "$"
	}
	return strings.Join(levels, "/")
}

// rerunCommand is a command line that runs only the given test again with debug output.
func rerunCommand(subcommand string, id framework.TestID, extraArgs ...string) string {
	var b commandBuilder
	b.add(filepath.Base(os.Args[0]), subcommand)
	b.add(extraArgs...)
	b.add("--run", rerunPattern(id), "--debug")
	return b.String()
}
