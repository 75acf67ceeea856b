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
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Sign out and remove stored credentials" }
func (c *LogoutCmd) Usage() string     { return "neolist logout [common flags]" }
func (c *LogoutCmd) Needs() Need       { return NeedDeps }

func (c *LogoutCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	if ctl.Identity().UserID() == "" && !cfg.HasToken() {
		notice(cfg, out, "not logged in")
		return exitcode.Success
	}

	// Leaves oauth_client.json and config.yaml in place.
	ctl.SignOut()
	if cfg.HasToken() {
		fmt.Fprintln(errOut, "error: failed to remove token")
		return exitcode.AuthError
	}
	notice(cfg, out, "ok")
	return exitcode.Success
}
