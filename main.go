package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pointr-qa/facility-contract-tests/config"
	"github.com/pointr-qa/facility-contract-tests/logging"
)

// errTestsFailed is returned by the test commands so that main exits with status 1 without
// printing anything more than the results table.
var errTestsFailed = errors.New("some tests failed")

type app struct {
	cfg     config.Config
	options globalParams
	closer  io.Closer
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "facility-contract-tests",
		Short:         "Contract tests for the facility management API, and blog scraping checks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}
	a.options.register(root)

	root.AddCommand(newAPICommand(a), newBlogCommand(a), newMockCommand(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.options.configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = a.options.logFile
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.options.logLevel
	}
	_, closer, err := logging.Setup(logging.Options{
		Level:   cfg.Log.Level,
		Verbose: a.options.verbose,
		File:    cfg.Log.File,
	}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.closer = closer
	return nil
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
