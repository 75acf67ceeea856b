package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"neolist/internal/config"
	"neolist/internal/syncer"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd marks a sub-task completed. Unlike check toggle it never reopens
// one that is already done.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a sub-task completed" }
func (c *DoneCmd) Usage() string     { return "neolist done <n.m>" }
func (c *DoneCmd) Needs() Need       { return NeedSession }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	task, item, err := resolveItem(ctl, args)
	if err != nil {
		return Report(errOut, err)
	}
	if item.Completed {
		return finish(cfg, out, errOut, syncer.ErrNoChange)
	}
	_, err = ctl.ToggleItem(ctx, task.ID, item.ID)
	return finish(cfg, out, errOut, err)
}
