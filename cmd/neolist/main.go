// Package main is the entry point for the neolist CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"neolist/internal/auth"
	"neolist/internal/backend/firestore"
	"neolist/internal/cli"
	"neolist/internal/commands"
	"neolist/internal/config"
	"neolist/internal/logging"
	"neolist/internal/suggest"
	"neolist/internal/syncer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newDeps)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// newDeps wires the Google identity, the Firestore store and the
// suggestion service for one invocation.
func newDeps(ctx context.Context, cfg *config.Config) (syncer.Deps, error) {
	logger := logging.New(os.Stderr, cfg.Debug, cfg.Quiet)
	identity := auth.NewGoogle(cfg, logger, os.Stderr)

	// The token is read per request, so a store built before login works
	// once login has saved one.
	st, err := firestore.New(ctx, cfg, identity.Source(ctx), logger)
	if err != nil {
		return syncer.Deps{}, err
	}
	suggester, err := suggest.FromEnv(ctx, logger)
	if err != nil {
		return syncer.Deps{}, err
	}
	return syncer.Deps{
		Store:     st,
		Identity:  identity,
		Suggester: suggester,
		Logger:    logger,
	}, nil
}
