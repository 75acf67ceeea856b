// Package cli parses the command line and runs the selected command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"neolist/internal/commands"
	"neolist/internal/config"
	"neolist/internal/exitcode"
	"neolist/internal/syncer"
)

// ReadyTimeout bounds the wait for the signed-in user's first snapshot.
const ReadyTimeout = 15 * time.Second

// Factory builds the controller dependencies from config.
// Used to inject the store and identity during dispatch.
type Factory func(ctx context.Context, cfg *config.Config) (syncer.Deps, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  Factory
}

// NewDispatcher creates a new dispatcher with the given registry and factory.
func NewDispatcher(registry *commands.Registry, factory Factory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args runs list.
	if len(args) == 0 {
		args = []string{"list"}
	}

	// Flags require a command.
	name := args[0]
	if strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}
	return d.dispatch(ctx, cmd, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	// Common flags
	var (
		configDir string
		quiet     bool
		debug     bool
	)
	fs.StringVar(&configDir, "config", "", "configuration directory")
	fs.BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	fs.BoolVar(&debug, "debug", false, "log debug output to stderr")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n", cmd.Usage())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.ConfigError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	if cmd.Needs() == commands.NeedNothing {
		return cmd.Run(ctx, cfg, nil, fs.Args(), out, errOut)
	}

	if d.factory == nil {
		fmt.Fprintf(errOut, "error: no backend configured\n")
		return exitcode.BackendError
	}
	deps, err := d.factory(ctx, cfg)
	if err != nil {
		return commands.Report(errOut, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	ctl := syncer.New(deps)
	go ctl.Run(runCtx)
	defer func() {
		cancel()
		<-ctl.Done()
	}()

	if cmd.Needs() == commands.NeedSession {
		if ctl.Resume() == "" {
			return commands.Report(errOut, syncer.ErrUnauthenticated)
		}
		readyCtx, cancelReady := context.WithTimeout(ctx, ReadyTimeout)
		_, err := ctl.WaitReady(readyCtx)
		cancelReady()
		if err != nil {
			return commands.Report(errOut, err)
		}
	}

	return cmd.Run(ctx, cfg, ctl, fs.Args(), out, errOut)
}
