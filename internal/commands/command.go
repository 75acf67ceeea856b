// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"neolist/internal/config"
	"neolist/internal/syncer"
)

// Need says what a command requires before it runs.
type Need int

const (
	// NeedNothing commands run on the config alone (help, version, theme).
	NeedNothing Need = iota

	// NeedDeps commands get a running controller that has not adopted any
	// identity yet (login, logout).
	NeedDeps

	// NeedSession commands get a controller signed in and holding the
	// user's first snapshot.
	NeedSession
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Needs reports what the dispatcher must set up before Run.
	Needs() Need

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, settings).
	// ctl is nil if Needs() returns NeedNothing.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int
}
