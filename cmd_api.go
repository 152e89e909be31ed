package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pointr-qa/facility-contract-tests/apitests"
	"github.com/pointr-qa/facility-contract-tests/config"
	"github.com/pointr-qa/facility-contract-tests/datafactory"
	"github.com/pointr-qa/facility-contract-tests/framework"
	"github.com/pointr-qa/facility-contract-tests/logging"
	"github.com/pointr-qa/facility-contract-tests/reporting"
	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

type apiParams struct {
	testRunParams
	serviceURL string
	seed       int64
}

func newAPICommand(a *app) *cobra.Command {
	var p apiParams
	cmd := &cobra.Command{
		Use:   "api [--url URL] [--run REGEX] [--skip REGEX]",
		Short: "Run the contract tests against a facility API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("url") {
				cfg.BaseURL = p.serviceURL
			}
			if p.resultsDir != "" {
				cfg.ResultsDir = p.resultsDir
			}
			return runAPITests(cmd.Context(), cmd.OutOrStdout(), cfg, p)
		},
	}
	p.register(cmd)
	cmd.Flags().StringVar(&p.serviceURL, "url", "", "facility API base URL (default from config)")
	cmd.Flags().Int64Var(&p.seed, "seed", 0, "seed for the random choices in generated test data")
	return cmd
}

func runAPITests(_ context.Context, out io.Writer, cfg config.Config, p apiParams) error {
	harness, err := framework.NewTestHarness(
		framework.ServiceStatusParams{
			BaseURL:    cfg.BaseURL,
			HealthPath: servicedef.PathHealth,
			InfoPath:   servicedef.PathRoot,
			Timeout:    cfg.StatusTimeoutDuration(),
		},
		logging.PrintfLogger{Level: slog.LevelDebug},
		out,
	)
	if err != nil {
		return fmt.Errorf("facility API error: %w", err)
	}

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, p.filters)
	fmt.Fprintln(out, "Running test suite")

	allure, err := reporting.NewAllureWriter(cfg.ResultsDir, "epic", "API Testing", "tag", cfg.Environment)
	if err != nil {
		return err
	}
	writeRunInfo(allure, cfg, harness.ServiceInfo().JSONString())

	console := &reporting.Console{
		Out:                  out,
		DebugOutputOnFailure: p.debug || p.debugAll,
		DebugOutputOnSuccess: p.debugAll,
	}
	data := datafactory.New(p.seed)
	slog.Info("generating test data", "runTag", data.RunTag())

	results := apitests.RunTestSuite(
		apitests.SuiteParams{
			BaseURL:        harness.ServiceBaseURL(),
			Data:           data,
			RequestTimeout: cfg.RequestTimeoutDuration(),
			Console:        out,
			DebugHTTP:      p.debug || p.debugAll,
		},
		p.filters.AsFilter,
		framework.MultiTestLogger(console, allure),
	)

	fmt.Fprintln(out)
	framework.PrintResults(out, results)
	fmt.Fprintf(out, "Allure results written to %s\n", allure.Dir())
	if !results.OK() {
		printRerunHints(out, "api", results, "--url", cfg.BaseURL)
		return errTestsFailed
	}
	return nil
}

func writeRunInfo(allure *reporting.AllureWriter, cfg config.Config, serviceInfo string) {
	env := map[string]string{
		"baseUrl":     cfg.BaseURL,
		"environment": cfg.Environment,
		"goVersion":   runtime.Version(),
		"platform":    runtime.GOOS + "/" + runtime.GOARCH,
	}
	if serviceInfo != "" && serviceInfo != "null" {
		env["serviceInfo"] = serviceInfo
	}
	if err := allure.WriteEnvironment(env); err != nil {
		slog.Warn("could not write Allure environment", "error", err)
	}
	executor := reporting.ExecutorInfo{
		Name:      reporting.FrameworkName,
		Type:      "local",
		BuildName: os.Getenv("BUILD_NAME"),
		BuildURL:  os.Getenv("BUILD_URL"),
	}
	if os.Getenv("CI") != "" {
		executor.Type = "ci"
	}
	if err := allure.WriteExecutor(executor); err != nil {
		slog.Warn("could not write Allure executor", "error", err)
	}
}

func printRerunHints(out io.Writer, subcommand string, results framework.Results, extraArgs ...string) {
	fmt.Fprintln(out, "To run a failed test again with debug output:")
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  %s\n", rerunCommand(subcommand, f.TestID, extraArgs...))
	}
}
