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
	Register(&WatchCmd{})
}

// WatchCmd prints the collection every time the store pushes a change,
// until interrupted.
type WatchCmd struct {
	details bool
}

func (c *WatchCmd) Name() string      { return "watch" }
func (c *WatchCmd) Aliases() []string { return nil }
func (c *WatchCmd) Synopsis() string  { return "Follow tasks as they change" }
func (c *WatchCmd) Usage() string     { return "neolist watch [--items]" }
func (c *WatchCmd) Needs() Need       { return NeedSession }

func (c *WatchCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&c.details, "items", "i", false, "")
}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	p := output.New(out, cfg.Theme())
	updates, stop := ctl.Watch()
	defer stop()

	var last uint64
	first := true
	for {
		select {
		case <-ctx.Done():
			return exitcode.Success
		case snap := <-updates:
			if snap.Seq == last {
				continue
			}
			last = snap.Seq
			if snap.Err != nil {
				// The last good collection stays on screen.
				Report(errOut, snap.Err)
				continue
			}
			if !snap.Ready {
				continue
			}
			if !first {
				p.Separator()
			}
			first = false
			if len(snap.Tasks) == 0 {
				notice(cfg, out, "no tasks found")
				continue
			}
			p.Tasks(snap.Tasks, c.details)
		}
	}
}
