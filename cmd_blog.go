package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pointr-qa/facility-contract-tests/blogtests"
	"github.com/pointr-qa/facility-contract-tests/browser"
	"github.com/pointr-qa/facility-contract-tests/config"
	"github.com/pointr-qa/facility-contract-tests/framework"
	"github.com/pointr-qa/facility-contract-tests/reporting"
)

type blogParams struct {
	testRunParams
	browsers  []string
	blogURL   string
	outputDir string
	headless  bool
}

func newBlogCommand(a *app) *cobra.Command {
	var p blogParams
	cmd := &cobra.Command{
		Use:   "blog [--browser NAME]...",
		Short: "Scrape the public blog in each browser and report its most frequent words.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if flags.Changed("browser") {
				cfg.Blog.Browsers = p.browsers
			}
			if flags.Changed("blog-url") {
				cfg.Blog.URL = p.blogURL
			}
			if flags.Changed("output-dir") {
				cfg.Blog.OutputDir = p.outputDir
			}
			if flags.Changed("headless") {
				cfg.Blog.Headless = &p.headless
			}
			if p.resultsDir != "" {
				cfg.ResultsDir = p.resultsDir
			}
			return runBlogTests(cmd.OutOrStdout(), cfg, p)
		},
	}
	p.register(cmd)
	flags := cmd.Flags()
	flags.StringArrayVar(&p.browsers, "browser", nil,
		fmt.Sprintf("browser to run in, repeatable: %s (default from config)", strings.Join(browser.Names, ", ")))
	flags.StringVar(&p.blogURL, "blog-url", "", "blog listing URL (default from config)")
	flags.StringVar(&p.outputDir, "output-dir", "", "directory for the top_words_<browser>.txt files")
	flags.BoolVar(&p.headless, "headless", true, "run browsers without a window")
	return cmd
}

func runBlogTests(out io.Writer, cfg config.Config, p blogParams) error {
	framework.PrintFilterDescription(out, p.filters)

	allure, err := reporting.NewAllureWriter(cfg.ResultsDir, "epic", "Blog", "tag", cfg.Environment)
	if err != nil {
		return err
	}
	writeRunInfo(allure, cfg, "")

	console := &reporting.Console{
		Out:                  out,
		DebugOutputOnFailure: p.debug || p.debugAll,
		DebugOutputOnSuccess: p.debugAll,
	}
	results := blogtests.RunTestSuite(
		blogtests.SuiteParams{
			BlogURL:  cfg.Blog.URL,
			Browsers: cfg.Blog.Browsers,
			Browser: browser.Options{
				Headless: cfg.Blog.IsHeadless(),
				Timeout:  cfg.RequestTimeoutDuration(),
			},
			OutputDir: cfg.Blog.OutputDir,
			Console:   out,
		},
		p.filters.AsFilter,
		framework.MultiTestLogger(console, allure),
	)

	fmt.Fprintln(out)
	framework.PrintResults(out, results)
	if !results.OK() {
		printRerunHints(out, "blog", results, "--blog-url", cfg.Blog.URL)
		return errTestsFailed
	}
	return nil
}
