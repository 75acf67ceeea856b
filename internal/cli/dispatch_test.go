package cli_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"neolist/internal/cli"
	"neolist/internal/commands"
	"neolist/internal/config"
	"neolist/internal/exitcode"
	"neolist/internal/store"
	"neolist/internal/syncer"
	"neolist/internal/testutil"
	"neolist/internal/todo"
)

// testFactory returns a factory over the given fakes.
func testFactory(st *testutil.FakeStore, user string) cli.Factory {
	return func(ctx context.Context, cfg *config.Config) (syncer.Deps, error) {
		return syncer.Deps{Store: st, Identity: testutil.NewFakeIdentity(user)}, nil
	}
}

func run(t *testing.T, factory cli.Factory, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	code, _, stderr := run(t, testFactory(testutil.NewFakeStore(), "u1"), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	code, _, stderr := run(t, testFactory(testutil.NewFakeStore(), "u1"), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	code, stdout, stderr := run(t, nil, "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !bytes.Contains([]byte(stdout), []byte("Usage:")) {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	code, stdout, stderr := run(t, nil, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "neolist 0.1.0\n" {
		t.Errorf("expected 'neolist 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	code, _, stderr := run(t, nil, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: --unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_MissingFlagValue(t *testing.T) {
	code, _, stderr := run(t, nil, "help", "--config")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: --config\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsLists(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Put("u1", todo.Task{ID: "a", Title: "Water plants", CreatedAt: 1, UpdatedAt: 1})

	code, stdout, stderr := run(t, testFactory(st, "u1"))

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "   1  Water plants\n" {
		t.Errorf("unexpected list output %q", stdout)
	}
}

func TestDispatcher_AddWithQuiet(t *testing.T) {
	st := testutil.NewFakeStore()

	code, stdout, stderr := run(t, testFactory(st, "u1"), "add", "-q", "Call", "mom")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "" {
		t.Errorf("expected quiet stdout, got %q", stdout)
	}
	tasks := st.Tasks("u1")
	if len(tasks) != 1 || tasks[0].Title != "Call mom" {
		t.Errorf("unexpected store contents %+v", tasks)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	st := testutil.NewFakeStore()

	code, _, stderr := run(t, testFactory(st, ""), "list")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: not logged in (run: neolist login)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if calls := st.Calls(); len(calls) != 0 {
		t.Errorf("expected no store calls, got %v", calls)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config) (syncer.Deps, error) {
		return syncer.Deps{}, errors.New("dial failed")
	}

	code, _, stderr := run(t, factory, "list")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: dial failed\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_UnavailableStore(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config) (syncer.Deps, error) {
		return syncer.Deps{}, store.ErrUnavailable
	}

	code, _, _ := run(t, factory, "add", "x")

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
}

func TestDispatcher_SettingsParseError(t *testing.T) {
	dir := t.TempDir()
	if err := writeSettings(dir, "theme: [\n"); err != nil {
		t.Fatal(err)
	}

	code, _, stderr := run(t, nil, "theme", "--config", dir)

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.ConfigError, code, stderr)
	}
}

func writeSettings(dir, content string) error {
	return os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(content), 0600)
}

func signInFactory(st *testutil.FakeStore, user string) cli.Factory {
	return func(ctx context.Context, cfg *config.Config) (syncer.Deps, error) {
		identity := testutil.NewFakeIdentity("")
		identity.SignInUser = user
		return syncer.Deps{Store: st, Identity: identity}, nil
	}
}

func TestDispatcher_LoginSubscribes(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Put("u7", todo.Task{ID: "a", Title: "Water plants", CreatedAt: 1, UpdatedAt: 1})

	code, stdout, stderr := run(t, signInFactory(st, "u7"), "login")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "logged in\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	calls := st.Calls()
	if len(calls) == 0 || calls[0] != "subscribe u7" {
		t.Errorf("expected a subscription for the new user, got %v", calls)
	}
	if n := st.ActiveSubscriptions(); n != 0 {
		t.Errorf("expected subscription closed on exit, got %d open", n)
	}
}

func TestDispatcher_LoginReportsUnusableStore(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Unconfigured = true

	code, stdout, stderr := run(t, signInFactory(st, "u7"), "login")

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if !bytes.Contains([]byte(stderr), []byte("task store is not configured")) {
		t.Errorf("unexpected stderr %q", stderr)
	}
}
