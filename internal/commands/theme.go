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
	Register(&ThemeCmd{})
}

// ThemeCmd prints or sets the display theme.
type ThemeCmd struct{}

func (c *ThemeCmd) Name() string      { return "theme" }
func (c *ThemeCmd) Aliases() []string { return nil }
func (c *ThemeCmd) Synopsis() string  { return "Show or set the theme (light, dark, toggle)" }
func (c *ThemeCmd) Usage() string     { return "neolist theme [light|dark|toggle]" }
func (c *ThemeCmd) Needs() Need       { return NeedNothing }

func (c *ThemeCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ThemeCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	switch len(args) {
	case 0:
		fmt.Fprintln(out, cfg.Theme())
		return exitcode.Success
	case 1:
	default:
		return Report(errOut, usageErrorf("unexpected argument: %s", args[1]))
	}

	theme := args[0]
	if theme == "toggle" {
		theme = config.ThemeDark
		if cfg.Theme() == config.ThemeDark {
			theme = config.ThemeLight
		}
	}
	if err := cfg.SetTheme(theme); err != nil {
		return Report(errOut, usageErrorf("%v", err))
	}
	if err := cfg.Save(); err != nil {
		fmt.Fprintf(errOut, "error: failed to save settings: %v\n", err)
		return exitcode.ConfigError
	}
	notice(cfg, out, theme)
	return exitcode.Success
}
