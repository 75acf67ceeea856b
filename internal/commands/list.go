package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"neolist/internal/config"
	"neolist/internal/exitcode"
	"neolist/internal/output"
	"neolist/internal/syncer"
)

func init() {
	Register(&ListCmd{})
	Register(&ShowCmd{})
}

// ListCmd implements the list command, also run by `neolist` with no args.
type ListCmd struct {
	details bool
}

// SetDetails turns on notes and sub-tasks (for testing).
func (c *ListCmd) SetDetails(details bool) {
	c.details = details
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks, most recently updated first" }
func (c *ListCmd) Usage() string     { return "neolist list [--items]" }
func (c *ListCmd) Needs() Need       { return NeedSession }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.details, "items", "i", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return Report(errOut, usageErrorf("unexpected argument: %s", args[0]))
	}
	snap := ctl.Snapshot()
	if len(snap.Tasks) == 0 {
		notice(cfg, out, "no tasks found")
		return exitcode.Success
	}
	output.New(out, cfg.Theme()).Tasks(snap.Tasks, c.details)
	return exitcode.Success
}

// ShowCmd prints one task with its notes and sub-tasks.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show a task with notes and sub-tasks" }
func (c *ShowCmd) Usage() string     { return "neolist show <n>" }
func (c *ShowCmd) Needs() Need       { return NeedSession }

func (c *ShowCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return Report(errOut, err)
	}
	task, err := lookupTask(ctl.Snapshot(), TaskRef{Task: ref.Task})
	if err != nil {
		return Report(errOut, err)
	}
	output.New(out, cfg.Theme()).Details(ref.Task, task)
	return exitcode.Success
}
