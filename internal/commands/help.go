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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "neolist help" }
func (c *HelpCmd) Needs() Need       { return NeedNothing }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  neolist                                 List tasks, most recently updated first
  neolist list [--items]                  List tasks; --items adds notes and sub-tasks
  neolist show <n>                        Show a task with notes and sub-tasks
  neolist add <title...>                  Create a task
  neolist rm <n>                          Delete a task
  neolist title <n> <title...>            Change a task's title
  neolist notes [--stdin] <n> [text...]   Set notes; no text clears them
  neolist check add <n> <text...>         Add a sub-task
  neolist check edit <n.m> [text...]      Change a sub-task; no text deletes it
  neolist check toggle <n.m>              Flip a sub-task's completion
  neolist check rm <n.m>                  Delete a sub-task
  neolist done <n.m>                      Mark a sub-task completed
  neolist suggest <n>                     Suggest sub-tasks from the title
  neolist watch [--items]                 Follow tasks as they change
  neolist theme [light|dark|toggle]       Show or set the theme
  neolist login
  neolist logout
  neolist help
  neolist version

Tasks are numbered as list prints them; <n.m> is sub-task m of task n.

Common flags:
  --config <dir>   Override config directory
  --quiet, -q      Suppress informational output
  --debug          Print debug logs to stderr

Suggestions need GEMINI_API_KEY (or API_KEY) in the environment.
`
