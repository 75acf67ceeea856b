package commands

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"neolist/internal/config"
	"neolist/internal/syncer"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "neolist add <title...>" }
func (c *AddCmd) Needs() Need       { return NeedSession }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	_, err := ctl.AddTask(ctx, strings.Join(args, " "))
	return finish(cfg, out, errOut, err)
}
