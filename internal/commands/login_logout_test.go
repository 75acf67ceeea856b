package commands_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"neolist/internal/auth"
	"neolist/internal/commands"
	"neolist/internal/config"
	"neolist/internal/exitcode"
	"neolist/internal/syncer"
	"neolist/internal/testutil"
)

const oauthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

// googleController runs a controller whose identity reads cfg.Dir.
func googleController(t *testing.T, cfg *config.Config) *syncer.Controller {
	t.Helper()
	ctl := syncer.New(syncer.Deps{
		Store:    testutil.NewFakeStore(),
		Identity: auth.NewGoogle(cfg, nil, io.Discard),
	})
	ctx, cancel := context.WithCancel(context.Background())
	go ctl.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-ctl.Done()
	})
	return ctl
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// TestLoginCommand_NoOAuthClient verifies login fails without oauth_client.json
func TestLoginCommand_NoOAuthClient(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	ctl := googleController(t, cfg)

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LoginCmd{}).Run(context.Background(), cfg, ctl, nil, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if outBuf.String() != "" {
		t.Errorf("expected no stdout, got %q", outBuf.String())
	}
	if !strings.Contains(errBuf.String(), "oauth_client.json not found") {
		t.Errorf("expected setup instructions, got %q", errBuf.String())
	}
}

// TestLoginCommand_NoRefreshToken verifies login proceeds when the saved
// token cannot be refreshed.
func TestLoginCommand_NoRefreshToken(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "oauth_client.json", oauthClient)
	writeFile(t, dir, "token.json", `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`)
	writeFile(t, dir, "session.json", `{"user_id":"u1","email":"me@example.com"}`)
	cfg := &config.Config{Dir: dir}
	ctl := googleController(t, cfg)

	// Cancelled so the callback is never awaited.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LoginCmd{}).Run(ctx, cfg, ctl, nil, &outBuf, &errBuf)

	if strings.HasPrefix(outBuf.String(), "already logged in") {
		t.Error("should not say 'already logged in' with token missing refresh_token")
	}
	if code == exitcode.Success {
		t.Error("expected the abandoned sign-in to fail")
	}
}

// TestLoginCommand_AlreadyLoggedIn uses an identity that cannot validate
// itself, so a present user is trusted.
func TestLoginCommand_AlreadyLoggedIn(t *testing.T) {
	identity := testutil.NewFakeIdentity("u1")
	ctl := syncer.New(syncer.Deps{Store: testutil.NewFakeStore(), Identity: identity})
	cfg := &config.Config{Dir: t.TempDir()}

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LoginCmd{}).Run(context.Background(), cfg, ctl, nil, &outBuf, &errBuf)

	if code != exitcode.Success || outBuf.String() != "already logged in\n" {
		t.Errorf("got %d %q %q", code, outBuf.String(), errBuf.String())
	}
}

func TestLoginCommand_SignsIn(t *testing.T) {
	identity := testutil.NewFakeIdentity("")
	identity.SignInUser = "u7"
	ctl := syncer.New(syncer.Deps{Store: testutil.NewFakeStore(), Identity: identity})
	ctx, cancel := context.WithCancel(context.Background())
	go ctl.Run(ctx)
	defer func() {
		cancel()
		<-ctl.Done()
	}()

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LoginCmd{}).Run(ctx, &config.Config{Dir: t.TempDir()}, ctl, nil, &outBuf, &errBuf)

	if code != exitcode.Success || outBuf.String() != "logged in\n" {
		t.Errorf("got %d %q %q", code, outBuf.String(), errBuf.String())
	}
	if ctl.UserID() != "u7" {
		t.Errorf("expected controller on u7, got %q", ctl.UserID())
	}
}

// TestLogoutCommand_OnlyRemovesCredentials verifies logout keeps
// oauth_client.json and config.yaml.
func TestLogoutCommand_OnlyRemovesCredentials(t *testing.T) {
	dir := t.TempDir()
	oauthPath := writeFile(t, dir, "oauth_client.json", oauthClient)
	settingsPath := writeFile(t, dir, "config.yaml", "project: demo\n")
	tokenPath := writeFile(t, dir, "token.json", `{"access_token":"test","refresh_token":"test"}`)
	sessionPath := writeFile(t, dir, "session.json", `{"user_id":"u1"}`)
	cfg := &config.Config{Dir: dir}
	ctl := googleController(t, cfg)

	var outBuf, errBuf bytes.Buffer
	code := (&commands.LogoutCmd{}).Run(context.Background(), cfg, ctl, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, errBuf.String())
	}
	if outBuf.String() != "ok\n" {
		t.Errorf("expected 'ok', got %q", outBuf.String())
	}
	for _, gone := range []string{tokenPath, sessionPath} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Errorf("%s should be deleted", filepath.Base(gone))
		}
	}
	for _, kept := range []string{oauthPath, settingsPath} {
		if _, err := os.Stat(kept); err != nil {
			t.Errorf("%s should still exist", filepath.Base(kept))
		}
	}
}

// TestLogoutCommand_NotLoggedIn verifies logout succeeds when not logged in
func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	for _, quiet := range []bool{false, true} {
		cfg := &config.Config{Dir: t.TempDir(), Quiet: quiet}
		ctl := googleController(t, cfg)

		var outBuf, errBuf bytes.Buffer
		code := (&commands.LogoutCmd{}).Run(context.Background(), cfg, ctl, nil, &outBuf, &errBuf)

		if code != exitcode.Success {
			t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
		}
		want := "not logged in\n"
		if quiet {
			want = ""
		}
		if outBuf.String() != want {
			t.Errorf("quiet=%v: expected %q, got %q", quiet, want, outBuf.String())
		}
	}
}
