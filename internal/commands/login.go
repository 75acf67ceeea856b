package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"neolist/internal/auth"
	"neolist/internal/config"
	"neolist/internal/exitcode"
	"neolist/internal/syncer"
)

func init() {
	Register(&LoginCmd{})
}

// LoginReadyTimeout bounds the wait for the first snapshot after sign-in.
const LoginReadyTimeout = 15 * time.Second

// validator is implemented by identities that can check their stored
// credentials against the provider.
type validator interface {
	Valid(ctx context.Context) bool
}

// sessionHolder is implemented by identities that remember who signed in.
type sessionHolder interface {
	Session() (auth.Session, bool)
}

// LoginCmd implements the login command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in with Google" }
func (c *LoginCmd) Usage() string     { return "neolist login [common flags]" }
func (c *LoginCmd) Needs() Need       { return NeedDeps }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, ctl *syncer.Controller, args []string, out, errOut io.Writer) int {
	identity := ctl.Identity()
	if identity.UserID() != "" {
		v, ok := identity.(validator)
		if !ok || v.Valid(ctx) {
			notice(cfg, out, "already logged in"+signedInAs(identity))
			return exitcode.Success
		}
	}

	if _, err := ctl.SignIn(ctx); err != nil {
		if errors.Is(err, auth.ErrNoClient) {
			printClientHelp(cfg, errOut)
			return exitcode.AuthError
		}
		return Report(errOut, err)
	}

	// The new user's tasks must load before login counts as done.
	readyCtx, cancel := context.WithTimeout(ctx, LoginReadyTimeout)
	defer cancel()
	if _, err := ctl.WaitReady(readyCtx); err != nil {
		return Report(errOut, err)
	}

	notice(cfg, out, "logged in"+signedInAs(identity))
	return exitcode.Success
}

// signedInAs returns " as <email>" when the identity knows the signed-in email.
func signedInAs(identity auth.Identity) string {
	if h, ok := identity.(sessionHolder); ok {
		if s, ok := h.Session(); ok && s.Email != "" {
			return " as " + s.Email
		}
	}
	return ""
}

func printClientHelp(cfg *config.Config, errOut io.Writer) {
	fmt.Fprintf(errOut, "error: %s not found in %s\n\n", config.OAuthClientFile, cfg.Dir)
	fmt.Fprintln(errOut, "To sign in, you need OAuth credentials for a Google Cloud project with Firestore:")
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(errOut, "2. Create a project (or select an existing one)")
	fmt.Fprintln(errOut, "3. Create a Firestore database in Native mode:")
	fmt.Fprintln(errOut, "   https://console.cloud.google.com/firestore")
	fmt.Fprintln(errOut, "4. Create OAuth 2.0 credentials:")
	fmt.Fprintln(errOut, "   - Click 'Create Credentials' > 'OAuth client ID'")
	fmt.Fprintln(errOut, "   - Choose 'Desktop app' as application type")
	fmt.Fprintln(errOut, "   - Download the JSON file")
	fmt.Fprintln(errOut, "5. Save it as:")
	fmt.Fprintf(errOut, "   %s/%s\n", cfg.Dir, config.OAuthClientFile)
	fmt.Fprintf(errOut, "6. Set the project ID in %s/%s:\n", cfg.Dir, config.SettingsFile)
	fmt.Fprintln(errOut, "   project: my-project-id")
	fmt.Fprintln(errOut, "")
	fmt.Fprintf(errOut, "Then run '%s login' again.\n", config.AppName)
}
