package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pointr-qa/facility-contract-tests/mockapi"
	"github.com/pointr-qa/facility-contract-tests/mockapi/store"
)

type mockParams struct {
	port   int
	store  string
	noSeed bool
}

func newMockCommand(a *app) *cobra.Command {
	var p mockParams
	cmd := &cobra.Command{
		Use:   "mock [--port 8081] [--store memory|sqlite:PATH]",
		Short: "Serve an in-process facility API for local runs of the contract tests.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mock := a.cfg.Mock
			flags := cmd.Flags()
			if flags.Changed("port") {
				mock.Port = p.port
			}
			if flags.Changed("store") {
				mock.Store = p.store
			}
			seed := mock.SeedEnabled() && !p.noSeed

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runMock(ctx, mock.Port, mock.Store, seed)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&p.port, "port", 8081, "port to listen on")
	flags.StringVar(&p.store, "store", "memory", `"memory", or "sqlite:PATH" for a SQLite database file`)
	flags.BoolVar(&p.noSeed, "no-seed", false, "start with no sites, buildings or levels")
	return cmd
}

func openStore(location string) (store.Store, error) {
	if location == "" || location == "memory" {
		return store.NewMemoryStore(), nil
	}
	if path, ok := strings.CutPrefix(location, "sqlite:"); ok && path != "" {
		return store.OpenSQLite(path)
	}
	return nil, fmt.Errorf("unknown store %q: expected \"memory\" or \"sqlite:PATH\"", location)
}

func runMock(ctx context.Context, port int, storeSpec string, seed bool) error {
	s, err := openStore(storeSpec)
	if err != nil {
		return err
	}
	defer s.Close()

	if seed {
		if err := mockapi.Seed(ctx, s); err != nil {
			return fmt.Errorf("seeding store: %w", err)
		}
		slog.Info("seeded mock store", "store", storeSpec)
	}
	return mockapi.NewServer(s).Run(ctx, fmt.Sprintf(":%d", port))
}
