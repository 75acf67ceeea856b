package commands

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"neolist/internal/config"
	"neolist/internal/syncer"
)

func init() {
	Register(&TitleCmd{})
	Register(&NotesCmd{})
}

// TitleCmd renames a task.
type TitleCmd struct{}

func (c *TitleCmd) Name() string      { return "title" }
func (c *TitleCmd) Aliases() []string { return []string{"rename"} }
func (c *TitleCmd) Synopsis() string  { return "Change a task's title" }
func (c *TitleCmd) Usage() string     { return "neolist title <n> <title...>" }
func (c *TitleCmd) Needs() Need       { return NeedSession }

func (c *TitleCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *TitleCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	task, err := resolveTask(ctl, args)
	if err != nil {
		return Report(errOut, err)
	}
	_, err = ctl.UpdateTitle(ctx, task.ID, strings.Join(args[1:], " "))
	return finish(cfg, out, errOut, err)
}

// NotesCmd replaces a task's notes. Without text the notes are cleared.
type NotesCmd struct {
	stdin bool
	in    io.Reader
}

// SetInput makes --stdin read from r (for testing).
func (c *NotesCmd) SetInput(r io.Reader) {
	c.in = r
	c.stdin = true
}

func (c *NotesCmd) Name() string      { return "notes" }
func (c *NotesCmd) Aliases() []string { return nil }
func (c *NotesCmd) Synopsis() string  { return "Set or clear a task's notes" }
func (c *NotesCmd) Usage() string     { return "neolist notes [--stdin] <n> [text...]" }
func (c *NotesCmd) Needs() Need       { return NeedSession }

func (c *NotesCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.stdin, "stdin", false, "")
}

func (c *NotesCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	task, err := resolveTask(ctl, args)
	if err != nil {
		return Report(errOut, err)
	}

	notes := strings.Join(args[1:], " ")
	if c.stdin {
		if len(args) > 1 {
			return Report(errOut, usageErrorf("--stdin cannot be combined with text"))
		}
		data, err := io.ReadAll(c.input())
		if err != nil {
			return Report(errOut, usageErrorf("failed to read notes: %v", err))
		}
		notes = strings.TrimRight(string(data), "\n")
	}

	_, err = ctl.UpdateNotes(ctx, task.ID, notes)
	return finish(cfg, out, errOut, err)
}

func (c *NotesCmd) input() io.Reader {
	if c.in != nil {
		return c.in
	}
	return os.Stdin
}
