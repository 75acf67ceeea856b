package commands

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"neolist/internal/config"
	"neolist/internal/syncer"
	"neolist/internal/todo"
)

func init() {
	Register(&CheckCmd{})
}

// CheckCmd edits a task's checklist. The first argument picks the action.
type CheckCmd struct{}

func (c *CheckCmd) Name() string      { return "check" }
func (c *CheckCmd) Aliases() []string { return []string{"sub"} }
func (c *CheckCmd) Synopsis() string  { return "Edit a task's sub-tasks" }
func (c *CheckCmd) Usage() string {
	return "neolist check add <n> <text...> | edit <n.m> [text...] | toggle <n.m> | rm <n.m>"
}
func (c *CheckCmd) Needs() Need { return NeedSession }

func (c *CheckCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *CheckCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return Report(errOut, usageErrorf("action required: add, edit, toggle or rm"))
	}
	action, args := args[0], args[1:]

	var err error
	switch action {
	case "add":
		err = checkAdd(ctx, ctl, args)
	case "edit":
		err = withItem(ctl, args, func(task todo.Task, item todo.ChecklistItem) error {
			_, err := ctl.EditItem(ctx, task.ID, item.ID, strings.Join(args[1:], " "))
			return err
		})
	case "toggle":
		err = withItem(ctl, args, func(task todo.Task, item todo.ChecklistItem) error {
			_, err := ctl.ToggleItem(ctx, task.ID, item.ID)
			return err
		})
	case "rm":
		err = withItem(ctl, args, func(task todo.Task, item todo.ChecklistItem) error {
			_, err := ctl.DeleteItem(ctx, task.ID, item.ID)
			return err
		})
	default:
		err = usageErrorf("unknown action: %s", action)
	}
	return finish(cfg, out, errOut, err)
}

func checkAdd(ctx context.Context, ctl *syncer.Controller, args []string) error {
	task, err := resolveTask(ctl, args)
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")
	if strings.TrimSpace(text) == "" {
		return usageErrorf("sub-task text required")
	}
	_, err = ctl.AddItem(ctx, task.ID, text)
	return err
}

func withItem(ctl *syncer.Controller, args []string, fn func(todo.Task, todo.ChecklistItem) error) error {
	task, item, err := resolveItem(ctl, args)
	if err != nil {
		return err
	}
	return fn(task, item)
}
