package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"neolist/internal/config"
	"neolist/internal/syncer"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "neolist rm <n>" }
func (c *RmCmd) Needs() Need       { return NeedSession }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	task, err := resolveTask(ctl, args)
	if err != nil {
		return Report(errOut, err)
	}
	return finish(cfg, out, errOut, ctl.DeleteTask(ctx, task.ID))
}
