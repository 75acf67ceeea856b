package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"neolist/internal/config"
	"neolist/internal/exitcode"
	"neolist/internal/syncer"
)

func init() {
	Register(&SuggestCmd{})
}

// SuggestCmd asks the suggestion service for sub-tasks and appends them.
type SuggestCmd struct{}

func (c *SuggestCmd) Name() string      { return "suggest" }
func (c *SuggestCmd) Aliases() []string { return nil }
func (c *SuggestCmd) Synopsis() string  { return "Suggest sub-tasks from a task's title" }
func (c *SuggestCmd) Usage() string     { return "neolist suggest <n>" }
func (c *SuggestCmd) Needs() Need       { return NeedSession }

func (c *SuggestCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *SuggestCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	task, err := resolveTask(ctl, args)
	if err != nil {
		return Report(errOut, err)
	}
	_, added, err := ctl.SuggestItems(ctx, task.ID)
	if err != nil {
		return Report(errOut, err)
	}
	switch added {
	case 0:
		notice(cfg, out, "no suggestions")
	case 1:
		notice(cfg, out, "added 1 sub-task")
	default:
		notice(cfg, out, fmt.Sprintf("added %d sub-tasks", added))
	}
	return exitcode.Success
}
